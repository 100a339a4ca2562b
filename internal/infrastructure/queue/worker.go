package queue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Handler processes one job. A returned error triggers the retry/back-off
// policy in BackoffFor; Handler implementations do not need to know about
// retries themselves.
type Handler func(ctx context.Context, job Job) error

const queueKey = "catalog_ingest:jobs"

type Worker struct {
	ID      int
	Redis   *redis.Client
	Handler Handler
	Wg      *sync.WaitGroup
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case <-ctx.Done():
				log.Printf("worker %d: stopping", w.ID)
				return
			default:
			}

			res, err := w.Redis.BRPop(ctx, 5*time.Second, queueKey).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("worker %d: BRPop failed: %v", w.ID, err)
				time.Sleep(time.Second)
				continue
			}

			job, err := DeserializeJob(res[1])
			if err != nil {
				log.Printf("worker %d: dropping unparseable job: %v", w.ID, err)
				continue
			}

			w.process(ctx, *job)
		}
	}()
}

func (w *Worker) process(ctx context.Context, job Job) {
	job.Attempt++
	log.Printf("worker %d: processing %s (attempt %d/%d)", w.ID, job.Type, job.Attempt, job.MaxAttempts)

	if err := w.Handler(ctx, job); err != nil {
		log.Printf("worker %d: job %s failed: %v", w.ID, job.Type, err)
		w.retry(ctx, job)
		return
	}
	log.Printf("worker %d: job %s succeeded", w.ID, job.Type)
}

func (w *Worker) retry(ctx context.Context, job Job) {
	seconds, ok := BackoffFor(job)
	if !ok {
		log.Printf("worker %d: job %s exhausted retries, giving up", w.ID, job.Type)
		return
	}

	encoded, err := SerializeJob(job)
	if err != nil {
		log.Printf("worker %d: could not serialize job for retry: %v", w.ID, err)
		return
	}

	go func() {
		time.Sleep(time.Duration(seconds) * time.Second)
		if err := w.Redis.LPush(ctx, queueKey, encoded).Err(); err != nil {
			log.Printf("worker %d: requeueing job failed: %v", w.ID, err)
		}
	}()
}

// Enqueue pushes job onto the work queue for any free worker to pick up.
func Enqueue(ctx context.Context, rdb *redis.Client, job Job) error {
	encoded, err := SerializeJob(job)
	if err != nil {
		return err
	}
	if err := rdb.LPush(ctx, queueKey, encoded).Err(); err != nil {
		return fmt.Errorf("enqueueing job: %w", err)
	}
	return nil
}

// Client adapts a *redis.Client to the usecases.Enqueuer interface so
// callers depend on a one-method capability instead of the whole queue
// package.
type Client struct {
	Redis *redis.Client
}

func (c *Client) Enqueue(ctx context.Context, job Job) error {
	return Enqueue(ctx, c.Redis, job)
}
