package host

import "sync"

// Pane holds an ordered set of items, one of which is active.
type Pane struct {
	mu     sync.RWMutex
	ws     *Workspace
	items  []Item
	active int
}

// AddItem appends an item to the pane. When activate is true the item
// becomes the pane's active item and the previous active item is
// deactivated. The item is informed of its workspace registration.
func (p *Pane) AddItem(item Item, activate bool) {
	if item == nil {
		return
	}

	p.mu.Lock()
	p.items = append(p.items, item)
	var deactivated Item
	if activate {
		if prev := p.activeLocked(); prev != nil && prev != item {
			deactivated = prev
		}
		p.active = len(p.items) - 1
	}
	ws := p.ws
	p.mu.Unlock()

	if deactivated != nil {
		deactivated.Deactivated()
	}
	item.AddedToWorkspace(ws)
}

// ActiveItem returns the pane's active item, or nil when the pane is empty.
func (p *Pane) ActiveItem() Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.activeLocked()
}

// activeLocked returns the active item. Callers must hold the lock.
func (p *Pane) activeLocked() Item {
	if p.active < 0 || p.active >= len(p.items) {
		return nil
	}
	return p.items[p.active]
}

// Items returns a copy of the pane's items in order.
func (p *Pane) Items() []Item {
	p.mu.RLock()
	defer p.mu.RUnlock()

	items := make([]Item, len(p.items))
	copy(items, p.items)
	return items
}

// Count returns the number of items in the pane.
func (p *Pane) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// Workspace is the top-level host: a set of panes plus focus tracking.
type Workspace struct {
	mu      sync.RWMutex
	panes   []*Pane
	active  int
	focused *FocusHandle
}

// NewWorkspace creates a workspace with a single empty pane.
func NewWorkspace() *Workspace {
	ws := &Workspace{}
	ws.panes = []*Pane{{ws: ws, active: -1}}
	return ws
}

// ActivePane returns the workspace's active pane.
func (ws *Workspace) ActivePane() *Pane {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.panes[ws.active]
}

// AddPane creates a new pane and returns it.
func (ws *Workspace) AddPane() *Pane {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	pane := &Pane{ws: ws, active: -1}
	ws.panes = append(ws.panes, pane)
	return pane
}

// Focus transfers workspace focus to the given handle.
func (ws *Workspace) Focus(handle *FocusHandle) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.focused = handle
}

// Focused returns the currently focused handle, or nil.
func (ws *Workspace) Focused() *FocusHandle {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.focused
}
