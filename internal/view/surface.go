package view

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/diffview/internal/diff"
	"github.com/dshills/diffview/internal/document"
	"github.com/dshills/diffview/internal/host"
	"github.com/dshills/diffview/internal/logging"
)

// Surface is a read-only presentation surface bound to one document and the
// shared diff model. It never writes to the model; it tracks model updates
// with a render generation counter that a real painter would consume.
type Surface struct {
	doc   *document.Document
	model *diff.Model
	focus *host.FocusHandle
	log   *logging.Logger

	mu         sync.Mutex
	navHistory *host.NavHistory
	offset     int
	ws         *host.Workspace

	renderGen atomic.Uint64
	modelSub  *diff.ModelSubscription
}

// newSurface creates a surface for doc, subscribed to the shared model.
func newSurface(doc *document.Document, model *diff.Model, logger *logging.Logger) *Surface {
	label := doc.DisplayName()
	if label == "" {
		label = PlaceholderName
	}

	s := &Surface{
		doc:   doc,
		model: model,
		focus: host.NewFocusHandle(label),
		log:   logger.WithComponent("view.surface").WithField("document", label),
	}
	s.modelSub = model.Subscribe(func(_ *diff.Snapshot) {
		s.renderGen.Add(1)
	})
	return s
}

// close releases the surface's model subscription.
func (s *Surface) close() {
	s.modelSub.Unsubscribe()
}

// Document returns the surface's document.
func (s *Surface) Document() *document.Document {
	return s.doc
}

// Model returns the shared diff model.
func (s *Surface) Model() *diff.Model {
	return s.model
}

// FocusHandle returns the surface's focus handle.
func (s *Surface) FocusHandle() *host.FocusHandle {
	return s.focus
}

// RenderGeneration returns how many diff updates the surface has observed.
func (s *Surface) RenderGeneration() uint64 {
	return s.renderGen.Load()
}

// Offset returns the surface's current cursor offset.
func (s *Surface) Offset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// SetNavHistory attaches the surface's navigation history.
// A history has exactly one owner.
func (s *Surface) SetNavHistory(history *host.NavHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navHistory = history
}

// NavHistory returns the attached navigation history, or nil.
func (s *Surface) NavHistory() *host.NavHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navHistory
}

// RecordNav pushes the current position onto the navigation history, if one
// is attached.
func (s *Surface) RecordNav() {
	s.mu.Lock()
	history := s.navHistory
	entry := host.NavEntry{Path: s.doc.Path(), Offset: s.offset}
	s.mu.Unlock()

	if history != nil {
		history.Push(entry)
	}
}

// Navigate restores a navigation entry. It reports whether the payload was
// an entry this surface could handle.
func (s *Surface) Navigate(payload any) bool {
	entry, ok := payload.(host.NavEntry)
	if !ok {
		return false
	}
	if entry.Path != "" && entry.Path != s.doc.Path() {
		return false
	}
	if entry.Offset < 0 || entry.Offset > s.doc.Len() {
		return false
	}

	s.mu.Lock()
	s.offset = entry.Offset
	s.mu.Unlock()
	return true
}

// CanSave reports whether the surface's document has a save target.
func (s *Surface) CanSave() bool {
	return s.doc.Path() != ""
}

// Save writes the surface's document to its backing file.
func (s *Surface) Save(ctx context.Context, _ host.SaveOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.doc.Save()
}

// Breadcrumbs returns the surface's breadcrumb trail: one segment per path
// component, or the placeholder for unbacked documents.
func (s *Surface) Breadcrumbs() []host.Breadcrumb {
	path := s.doc.Path()
	if path == "" {
		return []host.Breadcrumb{{Text: PlaceholderName}}
	}

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	crumbs := make([]host.Breadcrumb, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		crumbs = append(crumbs, host.Breadcrumb{Text: part})
	}
	return crumbs
}

// Deactivated informs the surface its view lost pane activation.
func (s *Surface) Deactivated() {
	s.log.Debug("surface deactivated")
}

// AddedToWorkspace informs the surface of its workspace registration.
func (s *Surface) AddedToWorkspace(ws *host.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws = ws
}
