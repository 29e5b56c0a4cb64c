package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局日志实例，Init 之前为 no-op
var Log = zap.NewNop()

// Init 初始化全局 zap 日志
func Init(level string, development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync 刷新缓冲区
func Sync() { _ = Log.Sync() }

func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { Log.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { Log.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }
