package fs

import (
	"context"

	"github.com/aretw0/lifecycle"
)

type watchSource struct {
	events <-chan Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits watch events.
func NewSource(events <-chan Event) lifecycle.Source {
	return &watchSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *watchSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the watch channel closes.
func (s *watchSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
