package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
)

var ErrWorkerStopped = errors.New("worker stopped")

// Job is one unit of work bound to a chat.
type Job func(ctx context.Context) error

// Worker runs jobs on a fixed set of shards. Jobs with the same key always land on the
// same shard, so they run one at a time in submission order.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	Do(ctx context.Context, key string, job Job) error
}

type task struct {
	ctx  context.Context
	key  string
	job  Job
	done chan error
}

type worker struct {
	shards   []chan task
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
	stopped  chan struct{}
	log      *zap.Logger
}

func NewWorker(concurrency, queueSize int, log *zap.Logger) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	shards := make([]chan task, concurrency)
	for i := range shards {
		shards[i] = make(chan task, queueSize)
	}
	return &worker{
		shards:   shards,
		stopChan: make(chan struct{}),
		stopped:  make(chan struct{}),
		log:      logger.OrNop(log).Named("worker"),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting worker", zap.Int("shards", len(w.shards)))
	for i := range w.shards {
		w.wg.Add(1)
		go w.processJobs(ctx, i)
	}
}

// Stop implements Worker. Jobs still queued are abandoned and their callers get
// ErrWorkerStopped.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
		w.wg.Wait()
		close(w.stopped)
		w.log.Info("worker stopped")
	})
}

// Do implements Worker. It blocks until the job has run or ctx is done.
func (w *worker) Do(ctx context.Context, key string, job Job) error {
	t := task{ctx: ctx, key: key, job: job, done: make(chan error, 1)}

	select {
	case w.shards[w.shardFor(key)] <- t:
	case <-w.stopChan:
		return ErrWorkerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-w.stopped:
		return ErrWorkerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *worker) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(w.shards)))
}

func (w *worker) processJobs(ctx context.Context, shard int) {
	defer w.wg.Done()
	queue := w.shards[shard]

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case t := <-queue:
			t.done <- w.run(t)
		}
	}
}

func (w *worker) run(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("job panicked", zap.String("key", t.key), zap.Any("panic", r))
			err = fmt.Errorf("job for %s panicked: %v", t.key, r)
		}
	}()

	if t.ctx.Err() != nil {
		return t.ctx.Err()
	}
	return t.job(t.ctx)
}
