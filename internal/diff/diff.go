// Package diff computes and holds line-level differences between two
// document snapshots.
//
// Computation is delegated to a Differ function (the default uses
// diffmatchpatch line diffs). The Model type is the single shared, mutable
// container that presentation surfaces read; it is written only by whoever
// owns the recomputation.
package diff

import (
	"context"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/diffview/internal/document"
)

// Kind identifies what a hunk represents.
type Kind int

const (
	// KindEqual is a run of lines present in both snapshots.
	KindEqual Kind = iota

	// KindInsert is a run of lines present only in the new snapshot.
	KindInsert

	// KindDelete is a run of lines present only in the old snapshot.
	KindDelete

	// KindModify is a run of old lines replaced by a run of new lines.
	KindModify
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEqual:
		return "equal"
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindModify:
		return "modify"
	default:
		return "unknown"
	}
}

// Hunk is a contiguous run of lines sharing one kind of change.
type Hunk struct {
	// Kind is the kind of change.
	Kind Kind

	// OldStart is the 1-based line number in the old snapshot where the
	// hunk begins. For pure insertions it is the line the insertion
	// precedes.
	OldStart int

	// NewStart is the 1-based line number in the new snapshot where the
	// hunk begins. For pure deletions it is the line the deletion precedes.
	NewStart int

	// OldLines are the hunk's lines from the old snapshot
	// (empty for insertions). Lines keep their trailing newline.
	OldLines []string

	// NewLines are the hunk's lines from the new snapshot
	// (empty for deletions).
	NewLines []string
}

// Stats summarizes a computed diff.
type Stats struct {
	// Insertions is the number of lines added.
	Insertions int

	// Deletions is the number of lines removed.
	Deletions int
}

// Snapshot is an immutable computed difference between two document
// snapshots.
type Snapshot struct {
	hunks       []Hunk
	oldRevision document.Revision
	newRevision document.Revision
}

// NewSnapshot builds a diff snapshot from precomputed hunks.
func NewSnapshot(hunks []Hunk, oldRev, newRev document.Revision) *Snapshot {
	return &Snapshot{hunks: hunks, oldRevision: oldRev, newRevision: newRev}
}

// Hunks returns the ordered hunks. Callers must not modify the slice.
func (s *Snapshot) Hunks() []Hunk {
	return s.hunks
}

// OldRevision returns the old document revision the diff was computed from.
func (s *Snapshot) OldRevision() document.Revision {
	return s.oldRevision
}

// NewRevision returns the new document revision the diff was computed from.
func (s *Snapshot) NewRevision() document.Revision {
	return s.newRevision
}

// Stats returns insertion/deletion totals for the diff.
func (s *Snapshot) Stats() Stats {
	var stats Stats
	for _, h := range s.hunks {
		switch h.Kind {
		case KindInsert:
			stats.Insertions += len(h.NewLines)
		case KindDelete:
			stats.Deletions += len(h.OldLines)
		case KindModify:
			stats.Insertions += len(h.NewLines)
			stats.Deletions += len(h.OldLines)
		}
	}
	return stats
}

// HasChanges reports whether the diff contains any non-equal hunk.
func (s *Snapshot) HasChanges() bool {
	for _, h := range s.hunks {
		if h.Kind != KindEqual {
			return true
		}
	}
	return false
}

// Differ computes hunks between two texts. Implementations must be pure:
// no shared state, safe for concurrent invocation.
type Differ func(oldText, newText string) ([]Hunk, error)

// Lines is the default Differ. It performs a line-level diff and merges
// adjacent delete/insert runs into modify hunks.
func Lines(oldText, newText string) ([]Hunk, error) {
	dmp := diffmatchpatch.New()
	oldRunes, newRunes, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	// Each rune in a diff text indexes the original line in lineArray.
	decode := func(s string) []string {
		if s == "" {
			return nil
		}
		out := make([]string, 0, len(s))
		for _, r := range s {
			if idx := int(r); idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var (
		hunks   []Hunk
		dels    []string
		ins     []string
		oldLine = 1
		newLine = 1
	)

	flush := func() {
		if len(dels) == 0 && len(ins) == 0 {
			return
		}
		h := Hunk{OldStart: oldLine, NewStart: newLine, OldLines: dels, NewLines: ins}
		switch {
		case len(dels) > 0 && len(ins) > 0:
			h.Kind = KindModify
		case len(dels) > 0:
			h.Kind = KindDelete
		default:
			h.Kind = KindInsert
		}
		oldLine += len(dels)
		newLine += len(ins)
		hunks = append(hunks, h)
		dels, ins = nil, nil
	}

	for _, d := range diffs {
		lines := decode(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			if len(lines) == 0 {
				continue
			}
			hunks = append(hunks, Hunk{
				Kind:     KindEqual,
				OldStart: oldLine,
				NewStart: newLine,
				OldLines: lines,
				NewLines: lines,
			})
			oldLine += len(lines)
			newLine += len(lines)
		case diffmatchpatch.DiffDelete:
			dels = append(dels, lines...)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, lines...)
		}
	}
	flush()

	return hunks, nil
}

// Compute runs the differ on a pair of document snapshots.
//
// The differ runs on its own goroutine; Compute returns early with the
// context error when ctx is cancelled, and the abandoned computation's
// result is discarded. A nil differ selects Lines.
func Compute(ctx context.Context, differ Differ, oldSnap, newSnap *document.Snapshot) (*Snapshot, error) {
	if oldSnap == nil || newSnap == nil {
		return nil, ErrNilSnapshot
	}
	if differ == nil {
		differ = Lines
	}

	type result struct {
		hunks []Hunk
		err   error
	}

	resultCh := make(chan result, 1)
	go func() {
		hunks, err := differ(oldSnap.Text(), newSnap.Text())
		resultCh <- result{hunks: hunks, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("diffing snapshots: %w", res.err)
		}
		return NewSnapshot(res.hunks, oldSnap.Revision(), newSnap.Revision()), nil
	}
}
