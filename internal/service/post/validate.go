package post

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"

	"memoria/internal/domain"
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

type validator struct {
	content  *bluemonday.Policy
	strict   *bluemonday.Policy
	maxImage int64
	maxVideo int64
}

func newValidator(maxImage, maxVideo int64) *validator {
	return &validator{
		content:  bluemonday.UGCPolicy(),
		strict:   bluemonday.StrictPolicy(),
		maxImage: maxImage,
		maxVideo: maxVideo,
	}
}

// text trims the title and sanitizes the rich-text content. Both must be
// non-empty afterwards.
func (v *validator) text(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", domain.ValidationError("title is required")
	}

	content = strings.TrimSpace(v.content.Sanitize(content))
	if strings.TrimSpace(v.strict.Sanitize(content)) == "" && !embedsMedia(content) {
		return "", "", domain.ValidationError("content is required")
	}
	return title, content, nil
}

// embedsMedia reports whether sanitized markup still carries an image or a
// video, which counts as content even without any text.
func embedsMedia(sanitized string) bool {
	lower := strings.ToLower(sanitized)
	return strings.Contains(lower, "<img") || strings.Contains(lower, "<video")
}

func (v *validator) uploads(set *domain.UploadSet) error {
	for i := range set.Images {
		if err := v.upload(domain.MediaImage, &set.Images[i]); err != nil {
			return err
		}
	}
	for i := range set.Videos {
		if err := v.upload(domain.MediaVideo, &set.Videos[i]); err != nil {
			return err
		}
	}
	return nil
}

// upload checks size and type. The sniffed header is pushed back in front
// of the content so nothing is lost for the later write.
func (v *validator) upload(kind domain.MediaKind, u *domain.Upload) error {
	if u.Content == nil {
		return domain.ValidationError(fmt.Sprintf("%s %q has no content", kind, u.FileName))
	}

	limit := v.maxImage
	if kind == domain.MediaVideo {
		limit = v.maxVideo
	}
	if limit > 0 && u.Size > limit {
		return domain.ValidationError(fmt.Sprintf("%s %q exceeds the %d byte limit", kind, u.FileName, limit))
	}

	prefix := string(kind) + "/"
	if u.MimeType != "" && !strings.HasPrefix(u.MimeType, prefix) {
		return domain.ValidationError(fmt.Sprintf("%s %q has type %s", kind, u.FileName, u.MimeType))
	}

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(u.Content, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return domain.ValidationError(fmt.Sprintf("failed to read %s %q", kind, u.FileName))
	}
	header = header[:n]
	u.Content = io.MultiReader(bytes.NewReader(header), u.Content)

	detected := mimetype.Detect(header).String()
	if contradicts(kind, detected) {
		return domain.ValidationError(fmt.Sprintf("%s %q looks like %s", kind, u.FileName, detected))
	}
	if u.MimeType == "" && strings.HasPrefix(detected, prefix) {
		u.MimeType = detected
	}
	return nil
}

// contradicts reports whether a sniffed type names a different kind of
// media. Generic types like text/plain say nothing and are accepted.
func contradicts(kind domain.MediaKind, detected string) bool {
	switch {
	case strings.HasPrefix(detected, "image/"):
		return kind != domain.MediaImage
	case strings.HasPrefix(detected, "video/"):
		return kind != domain.MediaVideo
	case strings.HasPrefix(detected, "audio/"):
		// some containers sniff as audio
		return kind != domain.MediaVideo
	}
	return false
}
