package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/dots/systems"
)

// parallelThreshold is the minimum population size to tick on the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// tickChunk represents a range of agents for a worker to advance.
type tickChunk struct {
	start, end int
	env        *systems.Environment
}

// tickPool advances disjoint ranges of agents on persistent workers.
// An agent tick only writes that agent's own state, so the outcome does not
// depend on how chunks are scheduled.
type tickPool struct {
	pop        *Population
	numWorkers int

	// Worker pool channels
	workChan chan tickChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newTickPool returns a pool for pop. workers <= 0 uses GOMAXPROCS.
func newTickPool(pop *Population, workers int) *tickPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &tickPool{pop: pop, numWorkers: workers}
}

// startWorkers launches persistent worker goroutines.
func (p *tickPool) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan tickChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *tickPool) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *tickPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.pop.tickRange(chunk.env, chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// tick advances every agent, in parallel when the population is large enough.
func (p *tickPool) tick(env *systems.Environment) {
	n := len(p.pop.agents)
	if n < parallelThreshold || p.numWorkers < 2 {
		p.pop.tickRange(env, 0, n)
		return
	}

	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	// Dispatch chunks to workers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- tickChunk{start: start, end: end, env: env}
		dispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
