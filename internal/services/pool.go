package services

import "sync"

// workerPool is a bounded pool of task goroutines shared by all of a
// Calculator's journeys. Workers are started lazily on the first
// Submit; Close drains the queue and waits for in-flight tasks, and
// is safe to call on every exit path, including before any Submit.
type workerPool struct {
	size  int
	tasks chan func()
	wg    sync.WaitGroup
	start sync.Once
}

func newWorkerPool(size int) *workerPool {
	if size < 1 {
		size = 1
	}
	return &workerPool{size: size}
}

func (p *workerPool) startWorkers() {
	p.tasks = make(chan func())
	p.wg.Add(p.size)
	for i := 0; i < p.size; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
}

// Submit hands a task to the pool, blocking while all workers are
// busy. Tasks must not Submit to the same pool.
func (p *workerPool) Submit(task func()) {
	p.start.Do(p.startWorkers)
	p.tasks <- task
}

// Close waits for all submitted tasks to finish and releases the
// workers. The pool cannot be reused afterwards.
func (p *workerPool) Close() {
	// Ensure the channel exists even when nothing was ever submitted,
	// so Close is unconditional at call sites.
	p.start.Do(p.startWorkers)
	close(p.tasks)
	p.wg.Wait()
}
