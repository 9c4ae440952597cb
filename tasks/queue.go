package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/metrics"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultTaskTimeout = 15 * time.Second

// Submitter is implemented by Queue; callers depend on it so tests can run
// tasks inline.
type Submitter interface {
	Submit(name string, fn func(ctx context.Context) error) bool
}

var _ Submitter = (*Queue)(nil)

// Queue runs best-effort work off the request path. Tasks are never retried;
// a saturated pool drops new work instead of blocking the caller.
type Queue struct {
	pool    *ants.Pool
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func New(size int, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) (*Queue, error) {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queue{logger: logger, metrics: m, timeout: timeout}
	q.ctx, q.cancel = context.WithCancel(context.Background())

	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithExpiryDuration(time.Minute),
		ants.WithPanicHandler(func(p interface{}) {
			logger.Error("task pool panic", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create task pool")
	}
	q.pool = pool
	return q, nil
}

// Submit schedules fn and reports whether it was accepted.
func (q *Queue) Submit(name string, fn func(ctx context.Context) error) bool {
	err := q.pool.Submit(func() { q.run(name, fn) })
	if err != nil {
		q.count(name, "dropped")
		q.logger.Warn("task dropped", zap.String("task", name), zap.Error(err))
		return false
	}
	q.count(name, "submitted")
	return true
}

func (q *Queue) run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(q.ctx, q.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			q.count(name, "failed")
			q.logger.Error("task panicked", zap.String("task", name), zap.String("panic", fmt.Sprint(r)))
		}
	}()

	if err := fn(ctx); err != nil {
		q.count(name, "failed")
		q.logger.Warn("task failed", zap.String("task", name), zap.Error(err))
	}
}

func (q *Queue) count(name, outcome string) {
	if q.metrics == nil {
		return
	}
	switch outcome {
	case "submitted":
		q.metrics.TasksSubmitted.WithLabelValues(name).Inc()
	case "dropped":
		q.metrics.TasksDropped.WithLabelValues(name).Inc()
	case "failed":
		q.metrics.TasksFailed.WithLabelValues(name).Inc()
	}
}

// Running is the number of workers currently executing a task.
func (q *Queue) Running() int {
	return q.pool.Running()
}

// Shutdown waits up to timeout for in-flight tasks, then cancels their
// contexts.
func (q *Queue) Shutdown(timeout time.Duration) error {
	err := q.pool.ReleaseTimeout(timeout)
	q.cancel()
	return err
}
