// Package instrument provides service middleware recording request counts and
// latencies through go-kit metrics.
package instrument

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/metrics"

	"greeter"
)

// GreeterInstrumentingMiddleware counts calls by method & error code and
// observes their latency in seconds.
func GreeterInstrumentingMiddleware(requestCount metrics.Counter, requestLatency metrics.Histogram) greeter.GreeterMiddleware {
	return func(next greeter.GreeterService) greeter.GreeterService {
		return &greeterInstrumentingMiddleware{
			next:           next,
			requestCount:   requestCount,
			requestLatency: requestLatency,
		}
	}
}

type greeterInstrumentingMiddleware struct {
	next           greeter.GreeterService
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
}

func (mw *greeterInstrumentingMiddleware) Save(ctx context.Context, dto greeter.GreeterDTO) (_ *greeter.GreeterDTO, err error) {
	defer mw.observe("Save", time.Now(), &err)
	return mw.next.Save(ctx, dto)
}

func (mw *greeterInstrumentingMiddleware) FindAll(ctx context.Context) (_ []*greeter.GreeterDTO, err error) {
	defer mw.observe("FindAll", time.Now(), &err)
	return mw.next.FindAll(ctx)
}

func (mw *greeterInstrumentingMiddleware) FindOne(ctx context.Context, id int64) (_ *greeter.GreeterDTO, err error) {
	defer mw.observe("FindOne", time.Now(), &err)
	return mw.next.FindOne(ctx, id)
}

func (mw *greeterInstrumentingMiddleware) Delete(ctx context.Context, id int64) (err error) {
	defer mw.observe("Delete", time.Now(), &err)
	return mw.next.Delete(ctx, id)
}

func (mw *greeterInstrumentingMiddleware) observe(method string, begin time.Time, err *error) {
	lvs := []string{"method", method, "error", fmt.Sprint(*err != nil), "code", greeter.ErrorCode(*err)}
	mw.requestCount.With(lvs...).Add(1)
	mw.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
}
