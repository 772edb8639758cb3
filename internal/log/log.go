package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	l       *zap.Logger
	restore func()
)

func init() {
	zl, err := newLogger(zapcore.InfoLevel, "console")
	if err != nil {
		panic(err)
	}
	install(zl)
}

// Configure replaces the process logger. level is a zap level name, encoding is "console" or "json".
func Configure(level, encoding string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	zl, err := newLogger(lvl, encoding)
	if err != nil {
		return err
	}
	install(zl)

	return nil
}

func install(zl *zap.Logger) {
	if restore != nil {
		restore()
	}
	l = zl
	zap.ReplaceGlobals(zl)

	undo, err := zap.RedirectStdLogAt(zl, zapcore.InfoLevel)
	if err != nil {
		panic(err)
	}
	restore = undo
}

func newLogger(level zapcore.Level, encoding string) (*zap.Logger, error) {
	encoder, err := getEncoder(encoding)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewTee(
		zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= level && lvl < zapcore.ErrorLevel
			}),
		),
		zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stderr),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= level && lvl >= zapcore.ErrorLevel
			}),
		),
	)

	// skip the package-level wrappers below
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

func getEncoder(encoding string) (zapcore.Encoder, error) {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey: "message",

		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.ISO8601TimeEncoder,

		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	switch encoding {
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig), nil
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf("unknown log encoding %q", encoding)
	}
}

// L returns the underlying logger for callers that need a *zap.Logger.
func L() *zap.Logger { return l.WithOptions(zap.AddCallerSkip(-1)) }

func Debug(msg string, fields ...zap.Field) { l.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { l.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { l.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { l.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { l.Fatal(msg, fields...) }

func Sync() error {
	return l.Sync()
}
