package mailer

import (
	"bytes"
	"context"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"kindergarten_backend/internals/configs"
	"kindergarten_backend/internals/logger"
)

// Message body is markdown; HTML is rendered from it and the markdown doubles
// as the text/plain part.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// raw HTML di markdown di-escape (WithUnsafe tidak diset)
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FromEnv: SENDGRID_API_KEY → sendgrid, SMTP_HOST → smtp, selain itu log saja.
func FromEnv() Mailer {
	from := configs.GetEnv("MAIL_FROM", "noreply@localhost")
	name := configs.GetEnv("MAIL_FROM_NAME", configs.AppName)

	if key := configs.GetEnv("SENDGRID_API_KEY"); key != "" {
		logger.GetLogger().Info("mailer: sendgrid")
		return NewSendGrid(key, name, from)
	}
	if host := configs.GetEnv("SMTP_HOST"); host != "" {
		logger.GetLogger().Info("mailer: smtp", zap.String("host", host))
		return NewSMTP(host, configs.GetInt("SMTP_PORT", 587),
			configs.GetEnv("SMTP_USER"), configs.GetEnv("SMTP_PASSWORD"), name, from)
	}
	logger.GetLogger().Info("mailer: log only")
	return LogMailer{}
}

// LogMailer writes mails to the log (development).
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.FromContext(ctx).Info("mail (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
