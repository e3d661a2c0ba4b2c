package realtime

import "go.uber.org/zap"

// Logger provides structured logging for push-channel events
type Logger struct {
	logger *zap.Logger
}

func NewLogger() *Logger {
	return &Logger{
		logger: zap.L().With(zap.String("component", "realtime")),
	}
}

func (l *Logger) Info(event string, connID ConnID, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("conn_id", string(connID)),
	}, fields...)
	l.logger.Info("realtime_event", allFields...)
}

// Anomaly logs a protocol anomaly: a malformed or unexpected inbound
// event that was dropped without terminating the connection.
func (l *Logger) Anomaly(event string, connID ConnID, reason string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("conn_id", string(connID)),
		zap.String("reason", reason),
	}, fields...)
	l.logger.Warn("realtime_anomaly", allFields...)
}

func (l *Logger) Error(event string, connID ConnID, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("conn_id", string(connID)),
		zap.Error(err),
	}, fields...)
	l.logger.Error("realtime_error", allFields...)
}
