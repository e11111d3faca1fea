package feed

import (
	"bufio"
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/banshee-data/pose.report/internal/monitoring"
)

// Feed multiplexes parsed frames from a single serial port to any number of
// subscribers.
type Feed struct {
	port         Porter
	subscribers  map[string]chan Frame
	subscriberMu sync.Mutex
	closing      bool
	closingMu    sync.Mutex
}

// NewFeed wraps an open port. Call Monitor to start delivering frames.
func NewFeed(port Porter) *Feed {
	return &Feed{
		port:        port,
		subscribers: make(map[string]chan Frame),
	}
}

// randomID generates a random channel ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

// Subscribe registers a new frame channel. The returned ID identifies the
// channel when unsubscribing.
func (f *Feed) Subscribe() (string, chan Frame) {
	id := randomID()
	ch := make(chan Frame, 16)
	f.subscriberMu.Lock()
	defer f.subscriberMu.Unlock()
	f.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (f *Feed) Unsubscribe(id string) {
	f.subscriberMu.Lock()
	defer f.subscriberMu.Unlock()
	if ch, ok := f.subscribers[id]; ok {
		close(ch)
		delete(f.subscribers, id)
	}
}

// Monitor reads lines from the port until the context is cancelled or the
// port closes, parsing each into a Frame and fanning it out to subscribers.
// Unparseable lines are logged and skipped; a slow subscriber drops frames
// rather than stalling the loop.
func (f *Feed) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(f.port)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// Blocking scan.Scan runs in its own goroutine so the outer loop can
	// still observe ctx cancellation.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			return err

		case line, ok := <-lineChan:
			if !ok {
				return scan.Err()
			}

			f.closingMu.Lock()
			if f.closing {
				f.closingMu.Unlock()
				return nil
			}
			f.closingMu.Unlock()

			frame, err := ParseFrame(line)
			if err != nil {
				monitoring.Logf("feed: dropping line: %v", err)
				continue
			}

			f.subscriberMu.Lock()
			for _, ch := range f.subscribers {
				select {
				case ch <- frame:
				default:
				}
			}
			f.subscriberMu.Unlock()
		}
	}
}

// Close closes all subscriber channels and the underlying port.
func (f *Feed) Close() error {
	f.closingMu.Lock()
	f.closing = true
	f.closingMu.Unlock()

	f.subscriberMu.Lock()
	defer f.subscriberMu.Unlock()
	for id, ch := range f.subscribers {
		close(ch)
		delete(f.subscribers, id)
	}
	return f.port.Close()
}
