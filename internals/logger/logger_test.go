package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { log = prev; zap.ReplaceGlobals(prev) })

	require.NoError(t, InitLogger(&LogConfig{Level: "debug", Environment: "test", ServiceName: "kindergarten"}))
	assert.NotNil(t, GetLogger())
	assert.Same(t, GetLogger(), zap.L())
}

func TestContextRoundTrip(t *testing.T) {
	l := zap.NewExample()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, GetLogger(), FromContext(context.Background()))
}
