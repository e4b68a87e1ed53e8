package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

func Init() {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if os.Getenv("APP_ENV") == "development" {
			cfg = zap.NewDevelopmentConfig()
		}
		l, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			l = zap.NewNop()
		}
		sugar = l.Sugar()
	})
}

// normalize lets call sites pass either key-value pairs or a single error
// after the message.
func normalize(args []any) []any {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			return []any{"error", err}
		}
	}
	if len(args)%2 != 0 {
		return append(args, "(missing)")
	}
	return args
}

func Info(msg string, args ...any) {
	Init()
	sugar.Infow(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	Init()
	sugar.Warnw(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	Init()
	sugar.Errorw(msg, normalize(args)...)
}

func Fatal(msg string, args ...any) {
	Init()
	sugar.Fatalw(msg, normalize(args)...)
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
