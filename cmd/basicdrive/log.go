package main

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logSink is a zapcore.WriteSyncer that hands every log line to the TUI.
// When the TUI falls behind, older lines are dropped.
type logSink struct {
	lines chan string
}

func newLogSink(size int) *logSink {
	return &logSink{lines: make(chan string, size)}
}

func (s *logSink) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	select {
	case s.lines <- line:
	default:
		select {
		case <-s.lines:
		default:
		}
		select {
		case s.lines <- line:
		default:
		}
	}
	return len(p), nil
}

func (s *logSink) Sync() error {
	return nil
}

// Lines returns a channel that receives formatted log lines.
func (s *logSink) Lines() <-chan string {
	return s.lines
}

// newLogger logs to sink and, if logFile is set, to a rotating JSON file.
func newLogger(sink zapcore.WriteSyncer, verbose bool, logFile string) (*zap.Logger, func()) {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	boxCfg := zap.NewDevelopmentEncoderConfig()
	boxCfg.TimeKey = ""
	boxCfg.CallerKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(boxCfg), sink, level),
	}

	var file *lumberjack.Logger
	if logFile != "" {
		file = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			Compress:   true,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
}
