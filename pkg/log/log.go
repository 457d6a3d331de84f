// Package log 封装了 zap，为整个服务提供统一的结构化日志入口。
package log

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 未调用 Init 之前（例如单元测试中）使用空 logger。
var sugar = zap.NewNop().Sugar()

// Init 构建全局 logger。format 为 "console" 时输出带颜色的控制台格式，否则输出 JSON；
// outputPath 非空时同时写入 outputPath/mindmirror.log。
func Init(level, format, outputPath string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	sinks := []string{"stdout"}
	if outputPath != "" {
		if err := os.MkdirAll(outputPath, 0o755); err != nil {
			panic(fmt.Errorf("创建日志目录失败: %w", err))
		}
		sinks = append(sinks, filepath.Join(outputPath, "mindmirror.log"))
	}
	out, _, err := zap.Open(sinks...)
	if err != nil {
		panic(fmt.Errorf("打开日志输出失败: %w", err))
	}

	core := zapcore.NewCore(newEncoder(format), out, lvl)
	Use(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
}

func newEncoder(format string) zapcore.Encoder {
	if format == "console" {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// Use 替换全局 logger。下面的包级函数多包了一层，这里统一跳过一帧调用栈。
func Use(l *zap.Logger) {
	sugar = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

func Info(msg string) { sugar.Info(msg) }
func Infof(template string, args ...interface{}) { sugar.Infof(template, args...) }
func Infow(msg string, keysAndValues ...interface{}) { sugar.Infow(msg, keysAndValues...) }

func Warnf(template string, args ...interface{}) { sugar.Warnf(template, args...) }
func Warnw(msg string, keysAndValues ...interface{}) { sugar.Warnw(msg, keysAndValues...) }

// Error 以 "error" 字段附带 err。
func Error(msg string, err error) { sugar.Errorw(msg, "error", err) }
func Errorf(template string, args ...interface{}) { sugar.Errorf(template, args...) }
func Errorw(msg string, keysAndValues ...interface{}) { sugar.Errorw(msg, keysAndValues...) }

// Fatal 记录日志后退出进程。
func Fatal(msg string, err error) { sugar.Fatalw(msg, "error", err) }
func Fatalf(template string, args ...interface{}) { sugar.Fatalf(template, args...) }

// Sync 刷新缓冲的日志。
func Sync() {
	_ = sugar.Sync()
}
