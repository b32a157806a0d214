package sqlstore

import (
	"time"

	"go.uber.org/zap"
)

// eventReceiver forwards dbr instrumentation to zap.
type eventReceiver struct {
	logger *zap.Logger
}

func (r *eventReceiver) Event(eventName string) {}

func (r *eventReceiver) EventKv(eventName string, kvs map[string]string) {}

func (r *eventReceiver) EventErr(eventName string, err error) error {
	r.logger.Debug("dbr error", zap.String("event", eventName), zap.Error(err))
	return err
}

func (r *eventReceiver) EventErrKv(eventName string, err error, kvs map[string]string) error {
	r.logger.Debug("dbr error",
		zap.String("event", eventName),
		zap.String("sql", kvs["sql"]),
		zap.Error(err),
	)
	return err
}

func (r *eventReceiver) Timing(eventName string, nanoseconds int64) {}

func (r *eventReceiver) TimingKv(eventName string, nanoseconds int64, kvs map[string]string) {
	if ce := r.logger.Check(zap.DebugLevel, "query"); ce != nil {
		ce.Write(
			zap.String("event", eventName),
			zap.String("sql", kvs["sql"]),
			zap.Duration("took", time.Duration(nanoseconds)),
		)
	}
}
