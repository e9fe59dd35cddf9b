package rworker

import "sync"

// Pool limits the number of concurrently running jobs with a rate channel.
// A Pool is safe for use by multiple goroutines.
type Pool struct {
	rate chan struct{}
}

func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{rate: make(chan struct{}, size)}
}

func (p *Pool) Size() int {
	return cap(p.rate)
}

// Job runs fn on its own goroutine once a pool slot is free. The first error
// is delivered to errCh, later ones are discarded.
func (p *Pool) Job(wg *sync.WaitGroup, fn func() error, errCh chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.rate <- struct{}{}
		if err := fn(); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
		<-p.rate
	}()
}
