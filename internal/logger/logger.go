package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.RWMutex
	instance *zap.SugaredLogger
	nop      = zap.NewNop().Sugar()
)

// Init routes all logging to the file at logPath. Before Init (and after a
// failed Init) every logging function is a no-op, so library code can log
// unconditionally.
func Init(logPath string) error {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	instance = l.Sugar()
	mu.Unlock()
	return nil
}

func Close() error {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return nil
	}
	return instance.Sync()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return nop
	}
	return instance
}

func Log(format string, args ...interface{}) {
	get().Infof(format, args...)
}

func LogError(operation, subject string, err error) {
	get().Errorw("operation failed", "operation", operation, "subject", subject, "error", err)
}

func LogFileOpen(path string) {
	get().Debugw("file open", "path", path)
}

func LogFileWrite(path string) {
	get().Debugw("file write", "path", path)
}
