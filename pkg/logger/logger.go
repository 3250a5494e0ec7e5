package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	envLocal      = "local"
	envProduction = "production"
)

// New builds a zap logger for the given environment. Local gets a
// human-readable console logger at debug level; production writes JSON
// to stdout and a rotated log file.
func New(env string) *zap.Logger {
	switch env {
	case envLocal:
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.AddSync(os.Stdout),
			zapcore.DebugLevel,
		)
		return zap.New(core, zap.AddCaller())
	default:
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		fileWriter := &lumberjack.Logger{
			Filename:   "./logs/app.log",
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
		}
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), zapcore.AddSync(fileWriter)),
			zapcore.InfoLevel,
		)
		return zap.New(core)
	}
}
