package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/storefront/internal/logging"
)

// AsynqLogger adapts logging.Logger to asynq.Logger.
type AsynqLogger struct {
	l logging.Logger
}

func NewAsynqLogger(l logging.Logger) *AsynqLogger {
	return &AsynqLogger{l: l}
}

func (a *AsynqLogger) Debug(args ...interface{}) {
	a.l.Debug(context.Background(), fmt.Sprint(args...))
}

func (a *AsynqLogger) Info(args ...interface{}) {
	a.l.Info(context.Background(), fmt.Sprint(args...))
}

func (a *AsynqLogger) Warn(args ...interface{}) {
	a.l.Warn(context.Background(), fmt.Sprint(args...))
}

func (a *AsynqLogger) Error(args ...interface{}) {
	a.l.Error(context.Background(), fmt.Sprint(args...))
}

func (a *AsynqLogger) Fatal(args ...interface{}) {
	a.l.Error(context.Background(), fmt.Sprint(args...))
	os.Exit(1)
}
