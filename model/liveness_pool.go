package model

import "sync"

// bufferToPool returns a liveness buffer to the pool for reuse
func bufferToPool(buf []bool, pool *LivenessPool) {
	if pool == nil {
		return
	}

	pool.Put(buf)
}

// LivenessPool recycles the dense liveness buffers a step reads from and
// writes into, so a tick doesn't allocate two lattice-sized slices.
type LivenessPool struct {
	pool sync.Pool
}

func NewLivenessPool() *LivenessPool {
	return &LivenessPool{
		pool: sync.Pool{
			New: func() interface{} {
				return new([]bool)
			},
		},
	}
}

// Get retrieves a cleared buffer of length n
func (p *LivenessPool) Get(n int) []bool {
	bp := p.pool.Get().(*[]bool)
	buf := *bp
	if cap(buf) < n {
		return make([]bool, n)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

// Put returns a buffer to the pool
func (p *LivenessPool) Put(buf []bool) {
	if buf == nil {
		return
	}
	p.pool.Put(&buf)
}

// getBuffer takes a buffer from the pool when one is configured
func getBuffer(pool *LivenessPool, n int) []bool {
	if pool != nil {
		return pool.Get(n)
	}
	return make([]bool, n)
}
