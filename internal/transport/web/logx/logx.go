package logx

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New собирает базовый логгер приложения: prod: JSON, остальное: консоль.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" || env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

// Info пишет строку хендлера: req_id, op, сообщение и пары ключ/значение.
func Info(l *zap.Logger, reqID, op, msg string, kv ...any) {
	l.Info(msg, fields(reqID, op, nil, kv)...)
}

func Warn(l *zap.Logger, reqID, op, msg string, kv ...any) {
	l.Warn(msg, fields(reqID, op, nil, kv)...)
}

func Error(l *zap.Logger, reqID, op, msg string, err error, kv ...any) {
	l.Error(msg, fields(reqID, op, err, kv)...)
}

func fields(reqID, op string, err error, kv []any) []zap.Field {
	out := make([]zap.Field, 0, 3+len(kv)/2)
	out = append(out, zap.String("req_id", reqID), zap.String("op", op))
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			out = append(out, zap.String(key, "(missing)"))
			break
		}
		out = append(out, zap.Any(key, kv[i+1]))
	}
	return out
}
