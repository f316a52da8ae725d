package core


import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)


type LogLevel uint8


const (
	LOG_SILENT LogLevel = 0
	LOG_FATAL  LogLevel = 1
	LOG_ERROR  LogLevel = 2
	LOG_WARN   LogLevel = 3
	LOG_INFO   LogLevel = 4
	LOG_DEBUG  LogLevel = 5
	LOG_TRACE  LogLevel = 6
)


var logLevelNames = map[string]LogLevel{
	"silent": LOG_SILENT,
	"fatal":  LOG_FATAL,
	"error":  LOG_ERROR,
	"warn":   LOG_WARN,
	"info":   LOG_INFO,
	"debug":  LOG_DEBUG,
	"trace":  LOG_TRACE,
}


// Parse a log level given by its name, as on the command line.
//
func ParseLogLevel(name string) (LogLevel, error) {
	var level LogLevel
	var ok bool

	level, ok = logLevelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return LOG_SILENT, fmt.Errorf("unknown log level '%s'", name)
	}

	return level, nil
}

// Return the zap level printing the same messages as this level.
// Trace messages are emitted at zap debug level.
//
func (this LogLevel) ZapLevel() zapcore.Level {
	switch this {
	case LOG_SILENT:
		return zapcore.FatalLevel + 1
	case LOG_FATAL:
		return zapcore.FatalLevel
	case LOG_ERROR:
		return zapcore.ErrorLevel
	case LOG_WARN:
		return zapcore.WarnLevel
	case LOG_INFO:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}


type Logger interface {
	// Log a message with a printf format for different log levels.
	//
	Fatalf(string, ...interface{})
	Errorf(string, ...interface{})
	Warnf(string, ...interface{})
	Infof(string, ...interface{})
	Debugf(string, ...interface{})
	Tracef(string, ...interface{})

	// Return a new logger with the given `name` appended to this logger
	// current name.
	//
	Extend(string) Logger
}


var globalLogger Logger = &noLogger{}


func SetLogger(logger Logger) {
	globalLogger = logger
}

func Warnf(format string, args ...interface{}) {
	globalLogger.Warnf(format, args...)
}

func Infof(format string, args ...interface{}) {
	globalLogger.Infof(format, args...)
}

func Debugf(format string, args ...interface{}) {
	globalLogger.Debugf(format, args...)
}

func Tracef(format string, args ...interface{}) {
	globalLogger.Tracef(format, args...)
}

func ExtendLogger(name string) Logger {
	return globalLogger.Extend(name)
}


type noLogger struct {
}

func NewNoLogger() Logger {
	return &noLogger{}
}

func (this *noLogger) Fatalf(string, ...interface{}) {}
func (this *noLogger) Errorf(string, ...interface{}) {}
func (this *noLogger) Warnf(string, ...interface{}) {}
func (this *noLogger) Infof(string, ...interface{}) {}
func (this *noLogger) Debugf(string, ...interface{}) {}
func (this *noLogger) Tracef(string, ...interface{}) {}
func (this *noLogger) Extend(string) Logger { return this }


// A logger writing through zap. The level filter lives in the zap core, the
// trace level is kept apart because zap has no level below debug.
//
type zapLogger struct {
	sugar *zap.SugaredLogger
	trace bool
}

func NewZapLogger(logger *zap.Logger, level LogLevel) Logger {
	return &zapLogger{
		sugar: logger.Sugar(),
		trace: level >= LOG_TRACE,
	}
}

// Fatal messages are written at error level and do not exit the process.
// Deciding to stop is left to the caller, as with the other levels.
//
func (this *zapLogger) Fatalf(format string, args ...interface{}) {
	this.sugar.Errorf("fatal: "+format, args...)
}

func (this *zapLogger) Errorf(format string, args ...interface{}) {
	this.sugar.Errorf(format, args...)
}

func (this *zapLogger) Warnf(format string, args ...interface{}) {
	this.sugar.Warnf(format, args...)
}

func (this *zapLogger) Infof(format string, args ...interface{}) {
	this.sugar.Infof(format, args...)
}

func (this *zapLogger) Debugf(format string, args ...interface{}) {
	this.sugar.Debugf(format, args...)
}

func (this *zapLogger) Tracef(format string, args ...interface{}) {
	if this.trace {
		this.sugar.Debugf(format, args...)
	}
}

func (this *zapLogger) Extend(name string) Logger {
	return &zapLogger{
		sugar: this.sugar.Named(name),
		trace: this.trace,
	}
}
