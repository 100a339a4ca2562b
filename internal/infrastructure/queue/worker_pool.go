package queue

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
)

type WorkerPool struct {
	Redis  *redis.Client
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewWorkerPool(workerCount int, rdb *redis.Client, handler Handler) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		Redis:  rdb,
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workerCount; i++ {
		worker := &Worker{
			ID:      i,
			Redis:   rdb,
			Handler: handler,
			Wg:      &pool.wg,
		}
		pool.wg.Add(1)
		worker.Start(pool.ctx)
	}

	return pool
}

func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
