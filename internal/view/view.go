package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/diffview/internal/diff"
	"github.com/dshills/diffview/internal/document"
	"github.com/dshills/diffview/internal/host"
	"github.com/dshills/diffview/internal/logging"
	"github.com/dshills/diffview/internal/watch"
)

// Pane identifies one of the two presentation surfaces.
type Pane int

const (
	// PaneLeft is the old document's surface.
	PaneLeft Pane = iota

	// PaneRight is the new document's surface.
	PaneRight
)

// String returns the pane name.
func (p Pane) String() string {
	switch p {
	case PaneLeft:
		return "left"
	case PaneRight:
		return "right"
	default:
		return "unknown"
	}
}

// DualView is a side-by-side diff view over an old and a new document.
type DualView struct {
	oldDoc *document.Document
	newDoc *document.Document
	left   *Surface
	right  *Surface
	model  *diff.Model

	changes  *watch.Notifier
	differ   diff.Differ
	debounce time.Duration
	log      *logging.Logger

	mu   sync.Mutex
	pane Pane
	ws   *host.Workspace
	subs []*document.Subscription

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Open constructs a dual view over oldDoc and newDoc and registers it with
// the workspace's active pane.
//
// Construction is two-phase: the initial diff is computed first (and may
// fail, in which case no view is created or registered), then the surfaces
// are built around the resulting model, the change subscriptions are wired,
// and the recompute loop is started. The ctx governs only the initial
// computation; the running view's lifetime is owned by Close.
func Open(ctx context.Context, oldDoc, newDoc *document.Document, ws *host.Workspace, opts ...Option) (*DualView, error) {
	if oldDoc == nil || newDoc == nil {
		return nil, ErrNilDocument
	}
	if ws == nil {
		return nil, ErrNilWorkspace
	}

	cfg := defaultViewConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	initial, err := diff.Compute(ctx, cfg.differ, oldDoc.Snapshot(), newDoc.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("computing initial diff: %w", err)
	}

	logger := cfg.logger.WithComponent("view")
	model := diff.NewModel(initial)

	v := &DualView{
		oldDoc:   oldDoc,
		newDoc:   newDoc,
		left:     newSurface(oldDoc, model, cfg.logger),
		right:    newSurface(newDoc, model, cfg.logger),
		model:    model,
		changes:  watch.NewNotifier(),
		differ:   cfg.differ,
		debounce: cfg.debounce,
		log:      logger,
		pane:     PaneLeft,
		done:     make(chan struct{}),
	}

	for _, doc := range []*document.Document{oldDoc, newDoc} {
		sub := doc.Subscribe(func(event document.Event) {
			switch event.Kind {
			case document.EventEdited, document.EventLanguageChanged, document.EventReparsed:
				v.changes.Notify()
			}
		})
		v.subs = append(v.subs, sub)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	go v.run(loopCtx)

	ws.ActivePane().AddItem(v, true)

	return v, nil
}

// Close tears down the view: document subscriptions are removed, the
// recompute loop is cancelled and awaited, and the surfaces release their
// model subscriptions. The model is not mutated after Close returns.
// Safe to call multiple times.
func (v *DualView) Close() {
	v.closeOnce.Do(func() {
		v.mu.Lock()
		subs := v.subs
		v.subs = nil
		v.mu.Unlock()

		for _, sub := range subs {
			sub.Unsubscribe()
		}
		v.cancel()
		v.changes.Close()
		<-v.done

		v.left.close()
		v.right.close()
		v.log.Debug("view closed")
	})
}

// Done returns a channel closed when the recompute loop has exited.
func (v *DualView) Done() <-chan struct{} {
	return v.done
}

// Model returns the shared diff model.
func (v *DualView) Model() *diff.Model {
	return v.model
}

// Left returns the old document's surface.
func (v *DualView) Left() *Surface {
	return v.left
}

// Right returns the new document's surface.
func (v *DualView) Right() *Surface {
	return v.right
}

// ForEachDocument calls f for both documents, left first.
func (v *DualView) ForEachDocument(f func(doc *document.Document)) {
	f(v.oldDoc)
	f(v.newDoc)
}

// Focus routing

// ActivePane returns the currently active pane.
func (v *DualView) ActivePane() Pane {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pane
}

// SwitchToLeft makes the left pane active and focuses its surface.
func (v *DualView) SwitchToLeft() {
	v.setPane(PaneLeft)
}

// SwitchToRight makes the right pane active and focuses its surface.
func (v *DualView) SwitchToRight() {
	v.setPane(PaneRight)
}

// Toggle switches to the pane that is not currently active.
func (v *DualView) Toggle() {
	if v.ActivePane() == PaneLeft {
		v.SwitchToRight()
	} else {
		v.SwitchToLeft()
	}
}

// setPane records the active pane and transfers workspace focus.
func (v *DualView) setPane(pane Pane) {
	v.mu.Lock()
	v.pane = pane
	ws := v.ws
	surface := v.surfaceForLocked(pane)
	v.mu.Unlock()

	if ws != nil {
		ws.Focus(surface.FocusHandle())
	}
}

// activeSurface returns the active pane's surface.
func (v *DualView) activeSurface() *Surface {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.surfaceForLocked(v.pane)
}

// surfaceForLocked maps a pane to its surface. Callers must hold v.mu.
func (v *DualView) surfaceForLocked(pane Pane) *Surface {
	if pane == PaneRight {
		return v.right
	}
	return v.left
}

// FocusHandle returns the active pane surface's focus handle.
func (v *DualView) FocusHandle() *host.FocusHandle {
	return v.activeSurface().FocusHandle()
}

// Item contract

// TabLabel returns "<old-name> ↔ <new-name>" using display names, with the
// placeholder for unbacked documents.
func (v *DualView) TabLabel() string {
	return fmt.Sprintf("%s ↔ %s", displayName(v.oldDoc), displayName(v.newDoc))
}

// TabTooltip returns the composite of both documents' full paths.
func (v *DualView) TabTooltip() string {
	return fmt.Sprintf("%s ↔ %s", fullPath(v.oldDoc), fullPath(v.newDoc))
}

// TabIcon returns the diff icon.
func (v *DualView) TabIcon() host.Icon {
	return host.IconDiff
}

// CanSave reports whether the new document can be saved. Saving is defined
// by the edit target, not the focused pane.
func (v *DualView) CanSave() bool {
	return v.right.CanSave()
}

// Save always delegates to the right surface, which owns the new document.
func (v *DualView) Save(ctx context.Context, opts host.SaveOptions) error {
	return v.right.Save(ctx, opts)
}

// Navigate delegates to the right surface; navigation history is
// authoritative on the editable side.
func (v *DualView) Navigate(payload any) bool {
	return v.right.Navigate(payload)
}

// SetNavHistory attaches the history to the right surface only, since a
// history has exactly one owner.
func (v *DualView) SetNavHistory(history *host.NavHistory) {
	v.right.SetNavHistory(history)
}

// Breadcrumbs returns the active pane surface's breadcrumb trail.
func (v *DualView) Breadcrumbs() []host.Breadcrumb {
	return v.activeSurface().Breadcrumbs()
}

// BreadcrumbLocation returns where the trail is shown.
func (v *DualView) BreadcrumbLocation() host.ToolbarLocation {
	return host.ToolbarPrimaryLeft
}

// Resolve answers capability requests: the view itself for the diff-view
// capability, the active pane's surface for editor and searchable, and nil
// for anything else.
func (v *DualView) Resolve(capability host.Capability) any {
	switch capability {
	case host.CapabilityDiffView:
		return v
	case host.CapabilityEditor, host.CapabilitySearchable:
		return v.activeSurface()
	default:
		return nil
	}
}

// Deactivated forwards deactivation to both surfaces.
func (v *DualView) Deactivated() {
	v.left.Deactivated()
	v.right.Deactivated()
}

// AddedToWorkspace records the workspace and forwards to both surfaces.
func (v *DualView) AddedToWorkspace(ws *host.Workspace) {
	v.mu.Lock()
	v.ws = ws
	v.mu.Unlock()

	v.left.AddedToWorkspace(ws)
	v.right.AddedToWorkspace(ws)
}

var _ host.Item = (*DualView)(nil)

// displayName returns the document's display name or the placeholder.
func displayName(doc *document.Document) string {
	if name := doc.DisplayName(); name != "" {
		return name
	}
	return PlaceholderName
}

// fullPath returns the document's full path or the placeholder.
func fullPath(doc *document.Document) string {
	if path := doc.Path(); path != "" {
		return path
	}
	return PlaceholderName
}
