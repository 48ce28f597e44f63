package demo

import "sync"

// pool runs row-parallel field updates on persistent goroutines. Each worker
// owns a fixed, round-robin share of the rows.
type pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	masks   [][]int
	work    func(rows []int)
	step    int
	pending int
	closed  bool
}

// assignRows distributes rows across workers in round robin fashion.
func assignRows(workers, rows int) [][]int {
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	masks := make([][]int, workers)
	for y := 0; y < rows; y++ {
		masks[y%workers] = append(masks[y%workers], y)
	}
	return masks
}

func newPool(workers, rows int) *pool {
	p := &pool{masks: assignRows(workers, rows)}
	p.cond = sync.NewCond(&p.mu)
	for i := range p.masks {
		go p.loop(i)
	}
	return p
}

func (p *pool) loop(index int) {
	last := 0
	p.mu.Lock()
	for {
		for p.step == last && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		last = p.step
		rows, work := p.masks[index], p.work
		p.mu.Unlock()

		if len(rows) > 0 {
			work(rows)
		}

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.cond.Broadcast()
		}
	}
}

// run executes work over every row and blocks until all workers finish.
func (p *pool) run(work func(rows []int)) {
	p.mu.Lock()
	p.work = work
	p.pending = len(p.masks)
	p.step++
	p.cond.Broadcast()
	for p.pending > 0 {
		p.cond.Wait()
	}
	p.work = nil
	p.mu.Unlock()
}

// close stops the workers.
func (p *pool) close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
}
