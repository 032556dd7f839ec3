package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Preview holds the most recent camera frame as JPEG for preview clients.
// The capture loop offers every frame; encoding only happens while at
// least one client is watching.
type Preview struct {
	mu       sync.Mutex
	cond     *sync.Cond
	watchers int
	jpeg     []byte
	seq      uint64
	closed   bool
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	p := &Preview{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Watching reports whether any client is waiting for frames.
func (p *Preview) Watching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watchers > 0
}

// Offer encodes frame and makes it the latest preview image. It is a no-op
// when nobody is watching.
func (p *Preview) Offer(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() || !p.Watching() {
		return nil
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	return p.Put(buf.GetBytes())
}

// Put stores an already encoded JPEG image.
func (p *Preview) Put(jpeg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jpeg = append(p.jpeg[:0:0], jpeg...)
	p.seq++
	p.cond.Broadcast()
	return nil
}

// Watch registers a client. The returned function unregisters it.
func (p *Preview) Watch() func() {
	p.mu.Lock()
	p.watchers++
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.watchers--
			p.cond.Broadcast()
			p.mu.Unlock()
		})
	}
}

// Next blocks until a frame newer than after is available and returns it
// with its sequence number. ok is false once the preview is closed or
// cancelled returns true.
func (p *Preview) Next(after uint64, cancelled func() bool) (jpeg []byte, seq uint64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.seq <= after && !p.closed {
		if cancelled() {
			return nil, 0, false
		}
		p.cond.Wait()
	}
	if p.closed {
		return nil, 0, false
	}
	return p.jpeg, p.seq, true
}

// Wake releases every blocked Next call so it can re-check cancellation.
func (p *Preview) Wake() {
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Close releases all waiting clients.
func (p *Preview) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
}
