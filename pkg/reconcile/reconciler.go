// Package reconcile propagates local mutations to the remote service.
//
// Every user operation is a Command: its local half is applied to the store at once and
// its remote half runs as a supervised background task. Completions come back as Results
// on a channel and are handled by whoever owns the store, through Run or Settle. The
// store is never touched from a remote task.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/store"
)

type completion struct {
	Result
	revert func(ctx context.Context, s *store.Store) error
}

// Reconciler applies commands locally and reconciles them with the remote service.
type Reconciler struct {
	store   *store.Store
	gw      core.Gateway
	account core.AccountSource
	opts    *options

	results  chan completion
	inflight sync.WaitGroup
	seq      atomic.Uint64

	dispatched atomic.Int64
	failed     atomic.Int64
	reverted   atomic.Int64
	pending    atomic.Int64
}

// New creates a Reconciler. A nil account source or gateway means local-only mode.
func New(s *store.Store, gw core.Gateway, account core.AccountSource, opts ...Option) *Reconciler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if account == nil {
		account = core.StaticAccount("")
	}
	return &Reconciler{
		store:   s,
		gw:      gw,
		account: account,
		opts:    o,
		results: make(chan completion, o.resultBuffer),
	}
}

// Store returns the store the reconciler mutates.
func (r *Reconciler) Store() *store.Store {
	return r.store
}

// Submit applies cmd.Local and, when the session is linked, dispatches cmd.Remote.
//
// A local failure other than a persistence fault stops the command. A persistence
// fault is returned to the caller but the remote call is still dispatched, since the
// in-memory mutation has already happened.
func (r *Reconciler) Submit(ctx context.Context, cmd Command) error {
	var localErr error
	if cmd.Local != nil {
		localErr = cmd.Local(ctx, r.store)
		if localErr != nil && !errors.Is(localErr, core.ErrPersistence) {
			return localErr
		}
	}

	seq := r.seq.Add(1)
	accountID := r.account.AccountID()
	if accountID == "" || cmd.Remote == nil || r.gw == nil {
		r.opts.logger.Debug("command applied locally", "seq", seq, "kind", cmd.Kind, "target", cmd.Target)
		return localErr
	}

	r.inflight.Add(1)
	r.pending.Add(1)
	r.dispatched.Add(1)
	r.opts.logger.Debug("dispatching remote call", "seq", seq, "kind", cmd.Kind, "target", cmd.Target)

	// The remote call outlives the caller: dispatched work is never cancelled.
	remoteCtx := context.WithoutCancel(ctx)
	lifecycle.Go(remoteCtx, func(ctx context.Context) error {
		defer r.inflight.Done()
		defer r.pending.Add(-1)

		callCtx, cancel := context.WithTimeout(ctx, r.opts.remoteTimeout)
		defer cancel()

		err := cmd.Remote(callCtx, r.gw, accountID)
		r.results <- completion{
			Result: Result{Seq: seq, Kind: cmd.Kind, Target: cmd.Target, Err: err},
			revert: cmd.Revert,
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		r.opts.logger.Error("remote task crashed", "seq", seq, "kind", cmd.Kind, "error", err)
	}))

	return localErr
}

// Run handles completions until ctx is done. It is meant for hosts embedding the engine
// in a long-lived process (a UI or a daemon) that keep issuing commands; the noteblocks
// CLI and platform.Client drain with Settle instead. Only one of Run and Settle may
// consume at a time.
func (r *Reconciler) Run(ctx context.Context) error {
	for {
		select {
		case c := <-r.results:
			r.handle(ctx, c)
		case <-ctx.Done():
			return nil
		}
	}
}

// Settle waits for every dispatched remote call to complete, handles the completions
// and returns them in arrival order. It must not race with Submit.
func (r *Reconciler) Settle(ctx context.Context) ([]Result, error) {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()

	var out []Result
	for {
		select {
		case c := <-r.results:
			out = append(out, r.handle(ctx, c))
		case <-done:
			for {
				select {
				case c := <-r.results:
					out = append(out, r.handle(ctx, c))
				default:
					return out, nil
				}
			}
		case <-ctx.Done():
			return out, fmt.Errorf("failed to settle remote calls: %w", ctx.Err())
		}
	}
}

// handle runs on the owner side; it is the only place a completion may touch the store.
func (r *Reconciler) handle(ctx context.Context, c completion) Result {
	res := c.Result
	if res.Err == nil {
		r.opts.logger.Debug("remote call succeeded", "seq", res.Seq, "kind", res.Kind, "target", res.Target)
		return res
	}

	r.failed.Add(1)
	if c.revert != nil {
		if err := c.revert(ctx, r.store); err != nil {
			res.RevertErr = err
			r.opts.logger.Error("failed to revert local change", "seq", res.Seq, "kind", res.Kind, "target", res.Target, "error", err)
		} else {
			res.Reverted = true
			r.reverted.Add(1)
		}
	}
	r.opts.logger.Warn("remote call failed",
		"seq", res.Seq, "kind", res.Kind, "target", res.Target, "reverted", res.Reverted, "error", res.Err)

	if r.opts.notice != nil {
		r.opts.notice(res)
	}
	return res
}
