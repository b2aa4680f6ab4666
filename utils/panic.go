package utils

import (
	"runtime/debug"

	"go.uber.org/zap"
)

// PanicRecovery logs a recovered panic with its stack. Meant to be
// deferred at goroutine entry points.
func PanicRecovery(log *zap.Logger) {
	if r := recover(); r != nil {
		log.With(zap.String("stack", string(debug.Stack()))).Error("recovered panic")
	}
}
