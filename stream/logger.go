package stream

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logLevels = map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}

	defaultLevel  zap.AtomicLevel
	DefaultLogger *zap.Logger
)

func init() {
	fd := os.Stdout.Fd()
	var config zap.Config
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stdout"}
	defaultLevel = config.Level

	var err error
	if DefaultLogger, err = config.Build(); err != nil {
		panic(err)
	}
}

// SetLogLevel changes the level of DefaultLogger and every logger derived from it.
func SetLogLevel(level string) {
	defaultLevel.SetLevel(LogLevel(level))
}

func LogLevel(name string) zapcore.Level {
	if lvl, ok := logLevels[strings.ToLower(name)]; ok {
		return lvl
	}
	return zapcore.InfoLevel
}
