// Package logging builds the process's zap.Logger, grounded on
// spigell-hh-responder's zap usage, replacing the teacher's bare
// log.Printf with structured fields on every state transition.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap.Logger unless debug is set, in which
// case it builds a development logger with a console encoder.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	return zap.NewProduction()
}

// WithBatch returns a child logger carrying batch_id, for the
// Worker/Watchdog/Controller to attach to every log line touching a
// batch.
func WithBatch(l *zap.Logger, batchID string) *zap.Logger {
	return l.With(zap.String("batch_id", batchID))
}

// WithItem returns a child logger carrying batch_id and item_id.
func WithItem(l *zap.Logger, batchID, itemID string) *zap.Logger {
	return l.With(zap.String("batch_id", batchID), zap.String("item_id", itemID))
}
