package alert

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v3"

	"memoria/internal/config"
)

// Report describes a rollback that could not fully undo a failed write.
type Report struct {
	Operation string
	PostID    uuid.UUID
	Cause     string
	Failures  []string
}

type Service interface {
	CompensationFailed(ctx context.Context, report Report) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

// NewService returns an alerter that mails ALERT_EMAIL. Without an API key
// or recipient it only logs.
func NewService(cfg *config.Config) Service {
	if cfg.ResendAPIKey == "" || cfg.AlertEmail == "" {
		return noop{}
	}
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}
}

var reportTemplate = template.Must(template.New("report").Parse(`<h2>Rollback incomplete</h2>
<p>Operation <b>{{.Operation}}</b> on post <code>{{.PostID}}</code> failed and could not be fully reverted.</p>
<p>Original failure: {{.Cause}}</p>
<ul>{{range .Failures}}<li>{{.}}</li>{{end}}</ul>
<p>Manual cleanup of the database or the uploads directory may be required.</p>`))

func (s *service) CompensationFailed(ctx context.Context, report Report) error {
	var body bytes.Buffer
	if err := reportTemplate.Execute(&body, report); err != nil {
		return fmt.Errorf("failed to execute alert template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Memoria <%s>", s.config.FromEmail),
		To:      []string{s.config.AlertEmail},
		Html:    body.String(),
		Subject: fmt.Sprintf("[memoria] %s rollback incomplete for post %s", report.Operation, report.PostID),
	}

	_, err := s.client.Emails.Send(params)
	return err
}

type noop struct{}

func (noop) CompensationFailed(ctx context.Context, report Report) error {
	log.Printf("[alert] %s rollback incomplete for post %s: %d step(s) failed", report.Operation, report.PostID, len(report.Failures))
	return nil
}
