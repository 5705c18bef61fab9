package xzap

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ModeConsole = "console" // 仅输出到终端
	ModeFile    = "file"    // 仅输出到文件
	ModeBoth    = "both"    // 同时输出
)

// LogConf 日志配置
type LogConf struct {
	ServiceName string `toml:"service_name" mapstructure:"service_name" json:"service_name"` // 服务名称, 会作为 service 字段写入每条日志
	Mode        string `toml:"mode" mapstructure:"mode" json:"mode"`                         // console / file / both
	Path        string `toml:"path" mapstructure:"path" json:"path"`                         // 日志目录
	Level       string `toml:"level" mapstructure:"level" json:"level"`                      // debug / info / warn / error
	Compress    bool   `toml:"compress" mapstructure:"compress" json:"compress"`             // 是否压缩历史日志
	KeepDays    int    `toml:"keep_days" mapstructure:"keep_days" json:"keep_days"`          // 日志保留天数
	MaxSizeMB   int    `toml:"max_size_mb" mapstructure:"max_size_mb" json:"max_size_mb"`    // 单个文件最大体积
}

// SetUp 根据配置初始化全局 zap logger
// 文件输出使用 JSON 编码并由 lumberjack 负责切割, 终端输出使用带颜色的 console 编码
func SetUp(c LogConf) (*zap.Logger, error) {
	level := zap.InfoLevel
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(c.Level))); err != nil {
			return nil, errors.Wrap(err, "failed on parse log level")
		}
	}

	pe := zap.NewProductionEncoderConfig()
	pe.EncodeTime = zapcore.ISO8601TimeEncoder
	pe.MessageKey = "message"
	pe.TimeKey = "time"
	fileEncoder := zapcore.NewJSONEncoder(pe)

	pe.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(pe)

	var cores []zapcore.Core
	mode := c.Mode
	if mode == "" {
		mode = ModeConsole
	}

	if mode == ModeFile || mode == ModeBoth {
		if c.Path == "" {
			return nil, errors.New("log path is required in file mode")
		}
		if err := os.MkdirAll(c.Path, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed on create log dir")
		}
		name := c.ServiceName
		if name == "" {
			name = "app"
		}
		writer := &lumberjack.Logger{
			Filename: filepath.Join(c.Path, name+".log"),
			MaxSize:  c.MaxSizeMB,
			MaxAge:   c.KeepDays,
			Compress: c.Compress,
		}
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), level))
	}
	if mode == ModeConsole || mode == ModeBoth {
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(colorable.NewColorableStdout()), level))
	}
	if len(cores) == 0 {
		return nil, errors.Errorf("unknown log mode %q", c.Mode)
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if c.ServiceName != "" {
		logger = logger.With(zap.String("service", c.ServiceName))
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}

// WithContext 返回携带链路信息的 logger
// ctx 中存在有效的 OpenTelemetry span 时附加 trace_id / span_id
func WithContext(ctx context.Context) *zap.Logger {
	logger := zap.L()
	if ctx == nil {
		return logger
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}

	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
