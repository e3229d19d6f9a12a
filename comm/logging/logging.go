package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

var defaultLogger *zap.SugaredLogger

func init() {
	level := InfoLevel
	if lv := os.Getenv("STOMPD_LOG_LEVEL"); lv != "" {
		_ = level.Set(lv)
	}
	path := os.Getenv("STOMPD_LOG_PATH")
	if path == "" {
		path = "logs/stompd.log"
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	})
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileWriter, level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level),
	)
	defaultLogger = zap.New(core, zap.AddCaller()).Sugar()
}

// GetDefaultLogger returns the process-wide sugared logger. Packages grab it
// once at import time:
//
//	var log = logging.GetDefaultLogger()
func GetDefaultLogger() *zap.SugaredLogger {
	return defaultLogger
}
