package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{name: "unset", raw: "", want: time.Hour},
		{name: "days", raw: "7d", want: 7 * 24 * time.Hour},
		{name: "go duration", raw: "90m", want: 90 * time.Minute},
		{name: "bad days", raw: "xd", want: time.Hour},
		{name: "garbage", raw: "soon", want: time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_TTL", tt.raw)
			assert.Equal(t, tt.want, GetDuration("TEST_TTL", time.Hour))
		})
	}
}

func TestGetList(t *testing.T) {
	t.Setenv("TEST_LIST", " http://a.test , ,http://b.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, GetList("TEST_LIST"))

	t.Setenv("TEST_LIST", "")
	assert.Nil(t, GetList("TEST_LIST"))
}

func TestValidate(t *testing.T) {
	prevEnv, prevSecret := AppEnv, JWTSecret
	t.Cleanup(func() { AppEnv, JWTSecret = prevEnv, prevSecret })

	t.Run("production without secret", func(t *testing.T) {
		AppEnv, JWTSecret = "production", ""
		assert.ErrorIs(t, Validate(), ErrMissingJWTSecret)
	})

	t.Run("development generates secret", func(t *testing.T) {
		AppEnv, JWTSecret = "development", ""
		require.NoError(t, Validate())
		assert.Len(t, JWTSecret, 64)
	})

	t.Run("explicit secret kept", func(t *testing.T) {
		AppEnv, JWTSecret = "production", "s3cret"
		require.NoError(t, Validate())
		assert.Equal(t, "s3cret", JWTSecret)
	})
}
