// Package obslog is the substrate's logging seam: a package-level logger any
// caller can replace, defaulting to a no-op so importing this module never
// forces logging configuration onto a host.
package obslog

import "go.uber.org/zap"

var logger *zap.SugaredLogger = zap.NewNop().Sugar()

// SetLogger installs l as the package-level logger. Passing nil restores the
// no-op default.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l
}

// Infof logs at info level: expert spawn/consolidate/cull events, pruning
// and neurogenesis summaries.
func Infof(template string, args ...interface{}) {
	logger.Infof(template, args...)
}

// Warnf logs at warn level: GPU validation failures, cooldown violations,
// anything recoverable that an operator should notice.
func Warnf(template string, args ...interface{}) {
	logger.Warnf(template, args...)
}

// Errorf logs at error level: persistence failures, malformed images.
func Errorf(template string, args ...interface{}) {
	logger.Errorf(template, args...)
}
