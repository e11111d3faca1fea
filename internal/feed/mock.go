package feed

import (
	"bytes"
	"errors"
	"sync"
)

// TestablePort implements Porter over an in-memory buffer with blocking
// reads, for exercising the monitor loop without hardware.
type TestablePort struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	closed   bool
	readCond *sync.Cond
}

func NewTestablePort() *TestablePort {
	p := &TestablePort{}
	p.readCond = sync.NewCond(&p.mu)
	return p
}

// Read blocks until data is available or the port is closed.
func (p *TestablePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for !p.closed && p.buf.Len() == 0 {
		p.readCond.Wait()
	}
	if p.closed && p.buf.Len() == 0 {
		return 0, errors.New("port closed")
	}
	return p.buf.Read(b)
}

// Feed appends data for subsequent reads and wakes any blocked reader.
func (p *TestablePort) Feed(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf.Write(data)
	p.readCond.Broadcast()
}

func (p *TestablePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.readCond.Broadcast()
	return nil
}
