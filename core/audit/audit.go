// Package audit provides the append-only action log sink.
//
// Destructive administrative actions (backup, restore) are recorded with the
// actor identity and timestamp. The sink is a dedicated zap logger writing
// JSON lines to its own file, kept separate from application logging so the
// trail survives log-level changes.
package audit

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds configuration for the audit log.
type Config struct {
	// Path is the file the audit trail is appended to.
	Path string `mapstructure:"path" default:"rims-actions.log"`
}

// Logger records administrative actions.
type Logger struct {
	l *zap.Logger
}

// New creates an audit logger appending to the configured file.
func New(cfg Config) (*Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "json"
	zcfg.OutputPaths = []string{cfg.Path}
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.DisableStacktrace = true
	zcfg.DisableCaller = true

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{l: l}, nil
}

// NewNop returns an audit logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{l: zap.NewNop()}
}

// Record appends one action entry with the actor identity. The timestamp is
// added by the encoder.
func (a *Logger) Record(actor, action string, fields ...zap.Field) {
	all := append([]zap.Field{zap.String("actor", actor)}, fields...)
	a.l.Info(action, all...)
}

// Sync flushes buffered entries.
func (a *Logger) Sync() error {
	return a.l.Sync()
}
