// Package zaplog builds the zap logger that backs kratos log.Logger.
package zaplog

import (
	"strings"

	kzap "github.com/go-kratos/kratos/contrib/log/zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build returns a production JSON zap logger at the given level. Unknown
// levels fall back to info.
func Build(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(strings.ToLower(strings.TrimSpace(level))); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "json"
	// kratos supplies ts and caller as key/value pairs.
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.CallerKey = ""
	cfg.DisableCaller = true
	return cfg.Build()
}

// New wraps Build in the kratos zap adapter.
func New(level string) (*kzap.Logger, error) {
	zl, err := Build(level)
	if err != nil {
		return nil, err
	}
	return kzap.NewLogger(zl), nil
}
