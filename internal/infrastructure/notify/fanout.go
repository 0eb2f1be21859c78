// Package notify combines status notifiers
package notify

import (
	"context"
	"errors"

	"github.com/alchemorsel/reelchef/internal/ports/outbound"
)

// Fanout forwards each event to every notifier and joins their errors
type Fanout struct {
	notifiers []outbound.StatusNotifier
}

var _ outbound.StatusNotifier = (*Fanout)(nil)

// NewFanout skips nil notifiers
func NewFanout(notifiers ...outbound.StatusNotifier) *Fanout {
	f := &Fanout{}
	for _, n := range notifiers {
		if n != nil {
			f.notifiers = append(f.notifiers, n)
		}
	}
	return f
}

// Len returns the number of wrapped notifiers
func (f *Fanout) Len() int {
	return len(f.notifiers)
}

// Notify implements outbound.StatusNotifier. Every notifier is called even
// when an earlier one fails.
func (f *Fanout) Notify(ctx context.Context, event outbound.StatusEvent) error {
	var errs []error
	for _, n := range f.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
