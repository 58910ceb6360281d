package logger

import (
	"fmt"

	"github.com/rollbar/rollbar-go"
	"go.uber.org/zap"
)

var rollbarEnabled bool

// InitRollbar wires error reporting. An empty token leaves reporting disabled.
func InitRollbar(token, env, host, version string) {
	if token == "" {
		rollbar.SetEnabled(false)
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(version)
	rollbar.SetEnabled(true)
	rollbarEnabled = true
	GetLogger().Info("rollbar reporting enabled", zap.String("environment", env))
}

// Report sends err to rollbar (when enabled) with extra request data.
func Report(err error, extras map[string]interface{}) {
	if err == nil || !rollbarEnabled {
		return
	}
	if extras == nil {
		rollbar.Error(err)
		return
	}
	rollbar.Error(err, extras)
}

// ReportPanic reports a recovered panic value as critical.
func ReportPanic(v interface{}, extras map[string]interface{}) {
	if !rollbarEnabled {
		return
	}
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	rollbar.Critical(err, extras)
}

func CloseRollbar() {
	if rollbarEnabled {
		rollbar.Close()
	}
}
