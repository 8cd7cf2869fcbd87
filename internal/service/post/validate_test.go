package post

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoria/internal/domain"
)

func TestValidator_UploadKeepsContent(t *testing.T) {
	v := newValidator(1<<20, 1<<20)
	body := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 5000)...)
	u := domain.Upload{FileName: "a.png", Size: int64(len(body)), Content: bytes.NewReader(body)}

	require.NoError(t, v.upload(domain.MediaImage, &u))
	assert.Equal(t, "image/png", u.MimeType)

	read, err := io.ReadAll(u.Content)
	require.NoError(t, err)
	assert.Equal(t, body, read)
}

func TestContradicts(t *testing.T) {
	assert.False(t, contradicts(domain.MediaImage, "image/jpeg"))
	assert.False(t, contradicts(domain.MediaImage, "text/plain; charset=utf-8"))
	assert.False(t, contradicts(domain.MediaVideo, "application/octet-stream"))
	assert.False(t, contradicts(domain.MediaVideo, "audio/mp4"))
	assert.True(t, contradicts(domain.MediaImage, "video/mp4"))
	assert.True(t, contradicts(domain.MediaImage, "audio/mpeg"))
	assert.True(t, contradicts(domain.MediaVideo, "image/gif"))
}

func TestValidator_Text(t *testing.T) {
	v := newValidator(0, 0)

	title, content, err := v.text("  Hello ", `<p onclick="x()">Hi</p>`)
	require.NoError(t, err)
	assert.Equal(t, "Hello", title)
	assert.Equal(t, "<p>Hi</p>", content)

	_, content, err = v.text("Picnic", `<p><img src="https://example.com/a.png" alt=""></p>`)
	require.NoError(t, err)
	assert.Contains(t, content, `<img src="https://example.com/a.png"`)

	_, _, err = v.text("Hello", "<br/>")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.True(t, strings.Contains(err.Error(), "content"))
}

func TestRunSteps_RunsEveryStep(t *testing.T) {
	var ran []string
	steps := []step{
		{"first", func(context.Context) error { ran = append(ran, "first"); return errors.New("boom") }},
		{"second", func(context.Context) error { ran = append(ran, "second"); return nil }},
		{"third", func(context.Context) error { ran = append(ran, "third"); return errors.New("bang") }},
	}

	err := runSteps(context.Background(), "edit", uuid.New(), steps)

	assert.Equal(t, []string{"first", "second", "third"}, ran)
	require.Error(t, err)
	assert.Len(t, unjoin(err), 2)
	assert.Contains(t, err.Error(), "first: boom")
	assert.Contains(t, err.Error(), "third: bang")
}
