package logx

import (
	"go.uber.org/zap"
)

// New: dev — человекочитаемый вывод с debug, иначе JSON с info.
func New(env string) (*zap.SugaredLogger, error) {
	conf := zap.NewProductionConfig()
	if env == "" || env == "dev" {
		conf = zap.NewDevelopmentConfig()
	}
	logger, err := conf.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Info пишет событие операции op с request id и произвольными парами ключ/значение.
func Info(l *zap.SugaredLogger, reqID, op, msg string, kv ...any) {
	l.Infow(msg, append([]any{"req_id", reqID, "op", op}, kv...)...)
}

func Error(l *zap.SugaredLogger, reqID, op, msg string, err error, kv ...any) {
	l.Errorw(msg, append([]any{"req_id", reqID, "op", op, "error", err}, kv...)...)
}
