package sim

import (
	"sync"

	"github.com/pthm-cable/fluid/systems"
)

// defaultParallelThreshold is the minimum particle count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const defaultParallelThreshold = 256

// pass identifies which solver phase a chunk belongs to.
type pass uint8

const (
	passDensity pass = iota
	passForces
	passIntegrate
)

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	start, end int
	pass       pass
}

// chunkFunc processes one chunk with a worker's scratch buffers.
type chunkFunc func(chunk workChunk, scratch *systems.Scratch) systems.SanitizeCounts

// workerPool runs solver passes over particle ranges with persistent workers.
// Each pass is a fan-out over disjoint ranges followed by a fan-in barrier.
type workerPool struct {
	run        chunkFunc
	numWorkers int
	threshold  int
	scratches  []systems.Scratch
	counts     []systems.SanitizeCounts // per-worker, reset every pass

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newWorkerPool(numWorkers, threshold int, run chunkFunc) *workerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}
	scratches := make([]systems.Scratch, numWorkers)
	for i := range scratches {
		scratches[i].Neighbors = make([]systems.Neighbor, 0, 64)
	}
	return &workerPool{
		run:        run,
		numWorkers: numWorkers,
		threshold:  threshold,
		scratches:  scratches,
		counts:     make([]systems.SanitizeCounts, numWorkers),
	}
}

// start launches persistent worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
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
func (p *workerPool) worker(workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			c := p.run(chunk, scratch)
			p.counts[workerID].Add(c)
			p.doneChan <- struct{}{}
		}
	}
}

// runPass processes particles [0, n) for one pass and returns once every
// particle is done. Small counts run inline on the calling goroutine.
func (p *workerPool) runPass(n int, ps pass) systems.SanitizeCounts {
	if n == 0 {
		return systems.SanitizeCounts{}
	}
	if n < p.threshold || p.numWorkers == 1 {
		return p.run(workChunk{start: 0, end: n, pass: ps}, &p.scratches[0])
	}

	if !p.running {
		p.start()
	}
	clear(p.counts)

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, pass: ps}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}

	var total systems.SanitizeCounts
	for _, c := range p.counts {
		total.Add(c)
	}
	return total
}
