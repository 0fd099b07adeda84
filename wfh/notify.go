/*
notify.go - Best-effort notification dispatch

PURPOSE:
  Lifecycle transitions trigger human-readable notifications. Delivery is
  strictly best-effort: a send happens after the authoritative state change
  commits, runs asynchronously, and its failure is logged and swallowed -
  it never fails or rolls back the transition that triggered it.

SEE ALSO:
  - service.go: The only producer of notifications
  - mail/smtp.go: SMTP-backed Notifier
*/
package wfh

import (
	"context"
	"log"
	"sync"
	"time"
)

// Notifier delivers one message to one recipient. Implementations may
// fail; the Dispatcher guarantees failures stay local.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 10 * time.Second

// Dispatcher fans lifecycle notifications out to a Notifier, one goroutine
// per send, funneling errors to the log and nowhere else.
type Dispatcher struct {
	Notifier Notifier
	wg       sync.WaitGroup
}

// NewDispatcher wraps a Notifier.
func NewDispatcher(n Notifier) *Dispatcher {
	return &Dispatcher{Notifier: n}
}

// Dispatch attempts delivery in the background and returns immediately.
func (d *Dispatcher) Dispatch(to, subject, body string) {
	if d == nil || d.Notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := d.Notifier.Send(ctx, to, subject, body); err != nil {
			log.Printf("[NOTIFY] send to %s failed: %v", to, err)
		}
	}()
}

// Wait blocks until all in-flight sends have been attempted. Used on
// shutdown and in tests; callers never wait for delivery to succeed.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}

// LogNotifier writes notifications to the log instead of delivering them.
// Used when no SMTP server is configured.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, to, subject, body string) error {
	log.Printf("[NOTIFY] to=%s subject=%q\n%s", to, subject, body)
	return nil
}
