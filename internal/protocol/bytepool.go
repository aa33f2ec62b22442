package protocol

import "sync"

// linePool hands out scratch buffers for reading tag lines (length
// prefixes, counts) off the wire before they're parsed into their
// final typed form. Payload bytes themselves (Bulk contents) are
// always freshly allocated, since those become part of the returned
// Value and must outlive the pool.
type linePool struct {
	pool sync.Pool
}

func newLinePool() *linePool {
	return &linePool{
		pool: sync.Pool{
			New: func() any {
				return make([]byte, 0, 64)
			},
		},
	}
}

func (p *linePool) get() []byte {
	return p.pool.Get().([]byte)[:0]
}

func (p *linePool) put(buf []byte) {
	if cap(buf) <= 4096 {
		p.pool.Put(buf)
	}
}
