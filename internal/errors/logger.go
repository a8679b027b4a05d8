package errors

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mowind/multiaddress-go/internal/address"
	"github.com/sirupsen/logrus"
)

// Logger 结构化日志器接口
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// 键值对形式的结构化日志
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	WithContext(ctx context.Context) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	WithRequestID(requestID string) Logger
	WithOperation(operation string) Logger

	// LogConversion 记录一次地址转换的结果
	LogConversion(direction, input, output string, err error)
	LogOperation(operation string, startTime time.Time, err error)
	LogError(err error, context ...interface{})
	LogAppError(appErr *AppError, context ...interface{})

	SetLevel(level string) error
	SetFormatter(format string) error

	// GetUnderlying 获取底层 logrus 实例，供 gin 中间件和路由器使用
	GetUnderlying() *logrus.Logger
}

// Fields 日志字段
type Fields map[string]interface{}

// StructuredLogger 基于 logrus 的结构化日志器
type StructuredLogger struct {
	logger    *logrus.Logger
	requestID string
	operation string
	fields    Fields
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `json:"level" yaml:"level"`
	Format       string `json:"format" yaml:"format"`
	Output       string `json:"output" yaml:"output"`
	EnableCaller bool   `json:"enable_caller" yaml:"enable_caller"`
}

// DefaultLoggerConfig 默认日志配置
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
}

// NewLogger 创建新的结构化日志器
func NewLogger(config *LoggerConfig) (Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}

	logger := logrus.New()
	logger.SetReportCaller(config.EnableCaller)
	l := &StructuredLogger{
		logger: logger,
		fields: make(Fields),
	}

	if err := l.SetLevel(config.Level); err != nil {
		return nil, err
	}
	if err := l.SetFormatter(config.Format); err != nil {
		return nil, err
	}

	output, err := createOutput(config.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	logger.SetOutput(output)

	return l, nil
}

// NewLoggerFrom 包装已有的 logrus 实例
func NewLoggerFrom(logger *logrus.Logger) Logger {
	return &StructuredLogger{
		logger: logger,
		fields: make(Fields),
	}
}

// createFormatter 创建格式化器
func createFormatter(format string, enableCaller bool) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				if !enableCaller {
					return "", ""
				}
				filename := f.File
				if idx := strings.LastIndex(filename, "/"); idx >= 0 {
					filename = filename[idx+1:]
				}
				return f.Function, fmt.Sprintf("%s:%d", filename, f.Line)
			},
		}, nil
	case "text":
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

// createOutput 创建输出
func createOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		// #nosec G304 - 日志文件路径来自配置
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		return file, nil
	}
}

func (l *StructuredLogger) Debugf(format string, args ...interface{}) {
	l.entry().Debugf(format, args...)
}

func (l *StructuredLogger) Infof(format string, args ...interface{}) {
	l.entry().Infof(format, args...)
}

func (l *StructuredLogger) Warnf(format string, args ...interface{}) {
	l.entry().Warnf(format, args...)
}

func (l *StructuredLogger) Errorf(format string, args ...interface{}) {
	l.entry().Errorf(format, args...)
}

// entry 合并当前字段、请求ID和操作名
func (l *StructuredLogger) entry() *logrus.Entry {
	fields := make(logrus.Fields, len(l.fields)+2)
	for k, v := range l.fields {
		fields[k] = v
	}
	if l.requestID != "" {
		fields["request_id"] = l.requestID
	}
	if l.operation != "" {
		fields["operation"] = l.operation
	}
	return l.logger.WithFields(fields)
}

func (l *StructuredLogger) logWithFields(level logrus.Level, msg string, keysAndValues ...interface{}) {
	extra := make(logrus.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		extra[key] = keysAndValues[i+1]
	}
	l.entry().WithFields(extra).Log(level, msg)
}

func (l *StructuredLogger) Debugw(msg string, keysAndValues ...interface{}) {
	l.logWithFields(logrus.DebugLevel, msg, keysAndValues...)
}

func (l *StructuredLogger) Infow(msg string, keysAndValues ...interface{}) {
	l.logWithFields(logrus.InfoLevel, msg, keysAndValues...)
}

func (l *StructuredLogger) Warnw(msg string, keysAndValues ...interface{}) {
	l.logWithFields(logrus.WarnLevel, msg, keysAndValues...)
}

func (l *StructuredLogger) Errorw(msg string, keysAndValues ...interface{}) {
	l.logWithFields(logrus.ErrorLevel, msg, keysAndValues...)
}

// WithContext 从 context 中读取请求ID和操作名
func (l *StructuredLogger) WithContext(ctx context.Context) Logger {
	var logger Logger = l.clone()
	if requestID := GetRequestID(ctx); requestID != "" {
		logger = logger.WithRequestID(requestID)
	}
	if operation := GetOperation(ctx); operation != "" {
		logger = logger.WithOperation(operation)
	}
	return logger
}

func (l *StructuredLogger) WithField(key string, value interface{}) Logger {
	newLogger := l.clone()
	newLogger.fields[key] = value
	return newLogger
}

func (l *StructuredLogger) WithFields(fields Fields) Logger {
	newLogger := l.clone()
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

func (l *StructuredLogger) WithError(err error) Logger {
	newLogger := l.clone()
	if err == nil {
		return newLogger
	}
	if appErr, ok := err.(*AppError); ok {
		newLogger.fields["error_type"] = string(appErr.Type)
		newLogger.fields["error_code"] = appErr.Code
		if appErr.Details != "" {
			newLogger.fields["error_details"] = appErr.Details
		}
	} else {
		newLogger.fields["error"] = err.Error()
	}
	return newLogger
}

func (l *StructuredLogger) WithRequestID(requestID string) Logger {
	newLogger := l.clone()
	newLogger.requestID = requestID
	return newLogger
}

func (l *StructuredLogger) WithOperation(operation string) Logger {
	newLogger := l.clone()
	newLogger.operation = operation
	return newLogger
}

// LogConversion 成功时记 debug，失败时记 warn 并附带错误分类
func (l *StructuredLogger) LogConversion(direction, input, output string, err error) {
	if err != nil {
		appErr := ConvertError(err)
		fields := []interface{}{
			"direction", direction,
			"input", input,
			"error_type", string(appErr.Type),
			"error", err.Error(),
		}
		if kind := address.KindOf(err); kind != 0 {
			fields = append(fields, "kind", kind.String())
		}
		l.Warnw("Address conversion failed", fields...)
		return
	}
	l.Debugw("Address converted",
		"direction", direction,
		"input", input,
		"output", output,
	)
}

func (l *StructuredLogger) LogOperation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)

	if err != nil {
		l.Errorw("Operation failed",
			"operation", operation,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	l.Infow("Operation completed successfully",
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	)
}

func (l *StructuredLogger) LogError(err error, context ...interface{}) {
	if appErr, ok := err.(*AppError); ok {
		l.LogAppError(appErr, context...)
		return
	}

	fields := []interface{}{"error", err.Error()}
	fields = append(fields, pairs(context)...)
	l.Errorw("Application error occurred", fields...)
}

func (l *StructuredLogger) LogAppError(appErr *AppError, context ...interface{}) {
	fields := []interface{}{
		"error_type", string(appErr.Type),
		"error_code", appErr.Code,
		"error_message", appErr.Message,
	}
	if appErr.Details != "" {
		fields = append(fields, "error_details", appErr.Details)
	}
	for k, v := range appErr.Context {
		fields = append(fields, "context_"+k, v)
	}
	fields = append(fields, pairs(context)...)

	l.Errorw("Application error with context", fields...)
}

// pairs 丢弃键不是字符串的键值对
func pairs(kv []interface{}) []interface{} {
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv)-1; i += 2 {
		if key, ok := kv[i].(string); ok {
			out = append(out, key, kv[i+1])
		}
	}
	return out
}

func (l *StructuredLogger) SetLevel(level string) error {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", level, err)
	}
	l.logger.SetLevel(logLevel)
	return nil
}

func (l *StructuredLogger) SetFormatter(format string) error {
	formatter, err := createFormatter(format, l.logger.ReportCaller)
	if err != nil {
		return fmt.Errorf("failed to create formatter: %w", err)
	}
	l.logger.SetFormatter(formatter)
	return nil
}

// GetUnderlying 获取底层 logrus 实例
func (l *StructuredLogger) GetUnderlying() *logrus.Logger {
	return l.logger
}

// clone 克隆日志器，字段表独立
func (l *StructuredLogger) clone() *StructuredLogger {
	newFields := make(Fields, len(l.fields))
	for k, v := range l.fields {
		newFields[k] = v
	}

	return &StructuredLogger{
		logger:    l.logger,
		requestID: l.requestID,
		operation: l.operation,
		fields:    newFields,
	}
}
