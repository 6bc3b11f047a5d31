// Package view implements the side-by-side diff view.
//
// A DualView binds two documents ("old" on the left, "new" on the right) to
// a pair of read-only presentation surfaces that share one diff model. Edits
// to either document feed a single-slot change notifier; a background loop
// debounces bursts of notifications, recomputes the diff from fresh
// snapshots, and republishes it into the shared model.
//
// The view also routes host operations that must pick exactly one pane.
// Focus, search, and breadcrumbs follow the active pane; save and
// navigation always target the right (editable) surface, because the old
// document is read-only context while the new one is the edit target.
//
// Lifecycle: Open performs the initial diff computation before the view
// exists, so a registered view is always diff-ready. Close tears down the
// recompute loop cooperatively and waits for it to exit; the diff model is
// never mutated after Close returns.
package view
