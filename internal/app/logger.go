package app

import (
	"os"

	"github.com/retouchshop/shopapi/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger installs the global zap logger. "production" mode logs JSON at
// info level, anything else uses the development console format. With a log
// file configured, JSON lines also go to a rotating file.
func InitLogger(cfg config.LogConfig) error {
	zapConfig := zap.NewDevelopmentConfig()
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	if !cfg.FileEnable || cfg.Filename == "" {
		logger, err := zapConfig.Build(zap.AddCaller())
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    64, // megabytes
		MaxBackups: 7,
		MaxAge:     7, // days
	}
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotating), zapConfig.Level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig.EncoderConfig), zapcore.AddSync(os.Stdout), zapConfig.Level),
	)
	zap.ReplaceGlobals(zap.New(core, zap.AddCaller()))
	return nil
}
