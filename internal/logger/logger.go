package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a tagged logger. Every record carries the tag as the zap logger
// name so output from the api client, the relay server and the CLI can be
// told apart.
type Logger struct {
	sugar *zap.SugaredLogger
	tag   string
}

var (
	base    *zap.Logger
	logFile *os.File
	mu      sync.RWMutex
	once    sync.Once
)

// InitLogger configures the process-wide base logger. dev switches to a
// colored console encoder at debug level; logPath, when set, adds a
// timestamped log file in that directory.
func InitLogger(dev bool, logPath string) error {
	var initErr error
	once.Do(func() {
		var encoder zapcore.Encoder
		level := zap.InfoLevel
		if dev {
			cfg := zap.NewDevelopmentEncoderConfig()
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = zapcore.NewConsoleEncoder(cfg)
			level = zap.DebugLevel
		} else {
			encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		}

		cores := []zapcore.Core{
			zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
		}

		if logPath != "" {
			timestamp := time.Now().Format("20060102_150405")
			fileName := fmt.Sprintf("koalagpt_log_%s.log", timestamp)
			filePath := filepath.Join(logPath, fileName)

			file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				initErr = fmt.Errorf("failed to open log file: %w", err)
				return
			}
			logFile = file
			fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(file), zap.DebugLevel))
		}

		mu.Lock()
		base = zap.New(zapcore.NewTee(cores...))
		mu.Unlock()
	})
	return initErr
}

// NewLogger returns a logger tagged with tag. Before InitLogger has run it
// discards everything.
func NewLogger(tag string) *Logger {
	mu.RLock()
	z := base
	mu.RUnlock()
	if z == nil {
		z = zap.NewNop()
	}
	return New(z, tag)
}

// New wraps an explicit zap logger.
func New(z *zap.Logger, tag string) *Logger {
	return &Logger{sugar: z.Named(tag).Sugar(), tag: tag}
}

func (l *Logger) Tag() string {
	return l.tag
}

func (l *Logger) Debug(v ...interface{}) {
	l.sugar.Debugln(v...)
}

func (l *Logger) Info(v ...interface{}) {
	l.sugar.Infoln(v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.sugar.Warnln(v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.sugar.Errorln(v...)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(v ...interface{}) {
	l.sugar.Fatalln(v...)
}

func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// With returns a child logger that adds the given key/value pairs to every
// record.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...), tag: l.tag}
}

// Close flushes buffered records and closes the log file, if any.
func Close() {
	mu.RLock()
	z := base
	mu.RUnlock()
	if z != nil {
		_ = z.Sync()
	}
	if logFile != nil {
		logFile.Close()
	}
}
