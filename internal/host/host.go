// Package host provides the workspace collaborator a view item plugs into:
// panes, focus tracking, navigation history, and the Item contract.
//
// The host is deliberately thin. It exists so view items have something real
// to register with and transfer focus to, without owning any rendering.
package host

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Icon identifies a tab icon.
type Icon int

const (
	// IconNone displays no icon.
	IconNone Icon = iota

	// IconFile is the plain file icon.
	IconFile

	// IconDiff is the two-column diff icon.
	IconDiff
)

// String returns the icon name.
func (i Icon) String() string {
	switch i {
	case IconNone:
		return "none"
	case IconFile:
		return "file"
	case IconDiff:
		return "diff"
	default:
		return "unknown"
	}
}

// ToolbarLocation identifies where an item's breadcrumbs are shown.
type ToolbarLocation int

const (
	// ToolbarHidden hides the breadcrumb toolbar.
	ToolbarHidden ToolbarLocation = iota

	// ToolbarPrimaryLeft shows breadcrumbs on the left of the toolbar.
	ToolbarPrimaryLeft

	// ToolbarPrimaryRight shows breadcrumbs on the right of the toolbar.
	ToolbarPrimaryRight
)

// Capability is a closed enumeration of the aspects the host may request
// from an item. Items answer Resolve with the collaborator implementing the
// capability, or nil when unsupported.
type Capability int

const (
	// CapabilityDiffView requests the item's diff-view aspect.
	CapabilityDiffView Capability = iota

	// CapabilityEditor requests the item's editor surface.
	CapabilityEditor

	// CapabilitySearchable requests the item's searchable surface.
	CapabilitySearchable
)

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case CapabilityDiffView:
		return "diff-view"
	case CapabilityEditor:
		return "editor"
	case CapabilitySearchable:
		return "searchable"
	default:
		return "unknown"
	}
}

// Breadcrumb is one segment of an item's breadcrumb trail.
type Breadcrumb struct {
	// Text is the segment's display text.
	Text string
}

// SaveOptions configures a save request.
type SaveOptions struct {
	// Format requests formatting before saving.
	Format bool
}

// Item is the contract a presentable view satisfies toward the host.
type Item interface {
	// TabLabel returns the item's tab display text.
	TabLabel() string

	// TabTooltip returns the item's tab tooltip text.
	TabTooltip() string

	// TabIcon returns the item's tab icon.
	TabIcon() Icon

	// CanSave reports whether the item has a save target.
	CanSave() bool

	// Save writes the item's editable content to its save target.
	Save(ctx context.Context, opts SaveOptions) error

	// Navigate asks the item to restore a navigation entry. It reports
	// whether the entry was handled.
	Navigate(payload any) bool

	// SetNavHistory attaches the item's navigation history. Histories have
	// exactly one owner and must not be shared between surfaces.
	SetNavHistory(history *NavHistory)

	// Breadcrumbs returns the item's breadcrumb trail.
	Breadcrumbs() []Breadcrumb

	// BreadcrumbLocation returns where the trail is shown.
	BreadcrumbLocation() ToolbarLocation

	// Resolve returns the item's aspect implementing the capability, or
	// nil when the capability is unsupported.
	Resolve(capability Capability) any

	// Deactivated informs the item it is no longer the active pane item.
	Deactivated()

	// AddedToWorkspace informs the item it was registered with a workspace.
	AddedToWorkspace(ws *Workspace)
}

// FocusHandle identifies a focusable element within the workspace.
type FocusHandle struct {
	id    string
	label string
}

// NewFocusHandle creates a focus handle with a display label.
func NewFocusHandle(label string) *FocusHandle {
	return &FocusHandle{id: uuid.NewString(), label: label}
}

// ID returns the handle's unique identifier.
func (h *FocusHandle) ID() string {
	return h.id
}

// Label returns the handle's display label.
func (h *FocusHandle) Label() string {
	return h.label
}

// NavEntry is a single navigation history entry.
type NavEntry struct {
	// Path is the document path the entry refers to.
	Path string

	// Offset is the byte offset to restore.
	Offset int
}

// NavHistory records navigation entries for exactly one owner surface.
type NavHistory struct {
	mu      sync.Mutex
	entries []NavEntry
}

// NewNavHistory creates an empty navigation history.
func NewNavHistory() *NavHistory {
	return &NavHistory{}
}

// Push records an entry.
func (h *NavHistory) Push(entry NavEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
}

// Pop removes and returns the most recent entry.
func (h *NavHistory) Pop() (NavEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return NavEntry{}, false
	}
	entry := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return entry, true
}

// Len returns the number of recorded entries.
func (h *NavHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
