package mailer

import (
	"context"

	"gopkg.in/gomail.v2"
)

type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, user, pass, fromName, fromEmail string) *SMTP {
	d := gomail.NewDialer(host, port, user, pass)
	from := fromEmail
	if fromName != "" {
		from = fromName + " <" + fromEmail + ">"
	}
	return &SMTP{dialer: d, from: from}
}

func (s *SMTP) build(msg Message) (*gomail.Message, error) {
	html, err := RenderHTML(msg.Body)
	if err != nil {
		return nil, err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	m.AddAlternative("text/html", html)
	return m, nil
}

// Send: gomail has no context support; ctx is only checked before dialing.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	return s.dialer.DialAndSend(m)
}
