package reconcile

import (
	"github.com/aretw0/introspection"
)

// ReconcilerState exposes internal state for observability.
type ReconcilerState struct {
	Linked     bool   `json:"linked"`
	Issued     uint64 `json:"issued"`
	Dispatched int64  `json:"dispatched"`
	InFlight   int64  `json:"in_flight"`
	Failed     int64  `json:"failed"`
	Reverted   int64  `json:"reverted"`
}

// State implements introspection.Introspectable.
func (r *Reconciler) State() any {
	return ReconcilerState{
		Linked:     r.account.AccountID() != "",
		Issued:     r.seq.Load(),
		Dispatched: r.dispatched.Load(),
		InFlight:   r.pending.Load(),
		Failed:     r.failed.Load(),
		Reverted:   r.reverted.Load(),
	}
}

// ComponentType implements introspection.Component.
func (r *Reconciler) ComponentType() string {
	return "reconciler"
}

var _ introspection.Introspectable = (*Reconciler)(nil)
var _ introspection.Component = (*Reconciler)(nil)
