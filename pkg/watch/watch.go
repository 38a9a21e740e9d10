// Package watch monitors a single transcript file and invokes a handler
// after writes settle. Editors typically rename-and-replace on save, so the
// watch is placed on the containing directory and filtered by file name.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/recaphq/recap-cli/pkg/logging"
)

// DefaultSettle is the quiet period after the last write before the handler
// runs. Editors and transcription tools write in bursts.
const DefaultSettle = 500 * time.Millisecond

// Handler is invoked after the watched file changes and the settle period
// elapses.
type Handler func(ctx context.Context)

// Watcher watches one file for changes.
type Watcher struct {
	path    string
	name    string
	settle  time.Duration
	handler Handler
	log     logging.Logger
	fsw     *fsnotify.Watcher
}

// New creates a Watcher for path. A zero settle uses DefaultSettle.
func New(path string, settle time.Duration, handler Handler, log logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:    abs,
		name:    filepath.Base(abs),
		settle:  settle,
		handler: handler,
		log:     log,
		fsw:     fsw,
	}, nil
}

// Run blocks, dispatching the handler on settled changes, until ctx is done.
// Cancellation is the normal way to stop watching and returns nil; other
// context errors, like a deadline, are reported.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var settleTimer *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != w.name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("transcript changed", logging.F("event", event.Op.String()))
			if settleTimer == nil {
				settleTimer = time.NewTimer(w.settle)
				settleC = settleTimer.C
			} else {
				if !settleTimer.Stop() {
					select {
					case <-settleC:
					default:
					}
				}
				settleTimer.Reset(w.settle)
			}

		case <-settleC:
			settleTimer = nil
			settleC = nil
			w.handler(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", logging.Err(err))
		}
	}
}
