package view

import (
	"context"
	"time"

	"github.com/dshills/diffview/internal/diff"
)

// run is the recompute loop. It blocks until a change signal arrives, waits
// for a quiet period, then recomputes and republishes the diff. A signal
// that arrives during recomputation is still pending afterwards, so the loop
// immediately re-enters the debounce wait; no update is lost.
//
// The loop is the model's only writer and the view's only recomputation
// site, so at most one recomputation is ever in flight.
func (v *DualView) run(ctx context.Context) {
	defer close(v.done)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-v.changes.C():
			if !ok {
				return
			}
		}

		if !v.waitQuiet(ctx) {
			return
		}
		v.recalculate(ctx)
	}
}

// waitQuiet waits until no change signal has arrived for the debounce
// duration. Every signal restarts the timer. When the timer expires at the
// same moment a signal arrives, the signal wins and the wait restarts, so a
// recomputation never runs against a snapshot older than the latest change.
// Returns false when the loop should exit.
func (v *DualView) waitQuiet(ctx context.Context) bool {
	timer := time.NewTimer(v.debounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false

		case _, ok := <-v.changes.C():
			if !ok {
				return false
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(v.debounce)

		case <-timer.C:
			select {
			case _, ok := <-v.changes.C():
				if !ok {
					return false
				}
				timer.Reset(v.debounce)
			default:
				return true
			}
		}
	}
}

// recalculate takes fresh snapshots of both documents, computes the diff,
// and publishes it. Computation failure leaves the model untouched; the
// loop keeps accepting signals.
func (v *DualView) recalculate(ctx context.Context) {
	v.log.Debug("start recalculating side-by-side diff")

	oldSnap := v.oldDoc.Snapshot()
	newSnap := v.newDoc.Snapshot()

	snap, err := diff.Compute(ctx, v.differ, oldSnap, newSnap)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		v.log.Error("diff recalculation failed: %v", err)
		return
	}

	v.model.Publish(snap)
	v.log.Debug("finish recalculating side-by-side diff")
}
