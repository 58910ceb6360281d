package push

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"kindergarten_backend/internals/configs"
	"kindergarten_backend/internals/logger"
)

// ErrNotConfigured is returned by the noop sender.
var ErrNotConfigured = errors.New("push notifications not configured")

// FCM multicast limit
const maxTokensPerBatch = 500

type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

type TokenError struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

// Result is stored as-is in notifications.response.
type Result struct {
	SuccessCount int          `json:"successCount"`
	FailureCount int          `json:"failureCount"`
	Errors       []TokenError `json:"errors,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, tokens []string, n Notification) (*Result, error)
}

// FromEnv: FIREBASE_CREDENTIALS_FILE atau FIREBASE_CONFIG (json); kalau tidak ada → Noop.
func FromEnv(ctx context.Context) Sender {
	var opts []option.ClientOption
	if path := configs.GetEnv("FIREBASE_CREDENTIALS_FILE"); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	} else if raw := configs.GetEnv("FIREBASE_CONFIG"); raw != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(raw)))
	} else {
		logger.GetLogger().Info("push: firebase not configured, notifications will be logged only")
		return Noop{}
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		logger.GetLogger().Error("push: firebase init failed", zap.Error(err))
		return Noop{}
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		logger.GetLogger().Error("push: messaging client failed", zap.Error(err))
		return Noop{}
	}
	logger.GetLogger().Info("push: firebase messaging ready")
	return &FCM{client: client}
}

type multicaster interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type FCM struct {
	client multicaster
}

func (f *FCM) Send(ctx context.Context, tokens []string, n Notification) (*Result, error) {
	res := &Result{}
	for _, batch := range chunk(tokens, maxTokensPerBatch) {
		br, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       batch,
			Notification: &messaging.Notification{Title: n.Title, Body: n.Body},
			Data:         n.Data,
		})
		if err != nil {
			return res, err
		}
		res.SuccessCount += br.SuccessCount
		res.FailureCount += br.FailureCount
		for i, r := range br.Responses {
			if r != nil && !r.Success && r.Error != nil && i < len(batch) {
				res.Errors = append(res.Errors, TokenError{Token: batch[i], Error: r.Error.Error()})
			}
		}
	}
	return res, nil
}

func chunk(in []string, size int) [][]string {
	var out [][]string
	for len(in) > size {
		out = append(out, in[:size])
		in = in[size:]
	}
	if len(in) > 0 {
		out = append(out, in)
	}
	return out
}

// Noop logs and reports ErrNotConfigured.
type Noop struct{}

func (Noop) Send(ctx context.Context, tokens []string, n Notification) (*Result, error) {
	logger.FromContext(ctx).Warn("push skipped (firebase not configured)",
		zap.String("title", n.Title), zap.Int("tokens", len(tokens)))
	return nil, ErrNotConfigured
}
