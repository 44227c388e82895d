package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls where log entries go and how verbose they are.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// OutputPaths are zap sink URLs or file paths. Empty means stderr.
	OutputPaths []string
}

// Logger wraps the zap logger with additional functionality
type Logger struct {
	*zap.Logger
}

// NewLogger creates a new logger instance with production configuration
func NewLogger(cfg Config) (*Logger, error) {
	config := zap.NewProductionConfig()

	config.OutputPaths = cfg.OutputPaths
	if len(config.OutputPaths) == 0 {
		config.OutputPaths = []string{"stderr"}
	}

	config.ErrorOutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, err
		}
	}

	config.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}
