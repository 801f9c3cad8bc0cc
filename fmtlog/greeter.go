package fmtlog

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"greeter"
)

func GreeterLoggingMiddleware(logger log.Logger) greeter.GreeterMiddleware {
	return func(next greeter.GreeterService) greeter.GreeterService {
		return &greeterLoggingMiddleware{
			next,
			logger,
		}
	}
}

type greeterLoggingMiddleware struct {
	next   greeter.GreeterService
	logger log.Logger
}

func (mw *greeterLoggingMiddleware) Save(ctx context.Context, dto greeter.GreeterDTO) (result *greeter.GreeterDTO, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, err, "method", "Save", "greeter", dto, "took", time.Since(begin), "err", err)
	}(time.Now())

	return mw.next.Save(ctx, dto)
}

func (mw *greeterLoggingMiddleware) FindAll(ctx context.Context) (result []*greeter.GreeterDTO, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, err, "method", "FindAll", "n", len(result), "took", time.Since(begin), "err", err)
	}(time.Now())

	return mw.next.FindAll(ctx)
}

func (mw *greeterLoggingMiddleware) FindOne(ctx context.Context, id int64) (result *greeter.GreeterDTO, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, err, "method", "FindOne", "id", id, "took", time.Since(begin), "err", err)
	}(time.Now())

	return mw.next.FindOne(ctx, id)
}

func (mw *greeterLoggingMiddleware) Delete(ctx context.Context, id int64) (err error) {
	defer func(begin time.Time) {
		mw.log(ctx, err, "method", "Delete", "id", id, "took", time.Since(begin), "err", err)
	}(time.Now())

	return mw.next.Delete(ctx, id)
}

// log writes keyvals at debug level, or at error level for internal errors.
// Expected outcomes such as ENOTFOUND stay at debug.
func (mw *greeterLoggingMiddleware) log(ctx context.Context, err error, keyvals ...interface{}) {
	logger := log.With(mw.logger, "request_id", greeter.RequestIDFromContext(ctx))
	if greeter.ErrorCode(err) == greeter.EINTERNAL {
		_ = level.Error(logger).Log(keyvals...)
		return
	}
	_ = level.Debug(logger).Log(keyvals...)
}
