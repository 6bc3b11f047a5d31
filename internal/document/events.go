package document

// EventKind identifies the kind of change a document reports.
type EventKind int

const (
	// EventEdited is emitted when the document text changes.
	EventEdited EventKind = iota

	// EventLanguageChanged is emitted when the language classification changes.
	EventLanguageChanged

	// EventReparsed is emitted when the document is reloaded from its
	// backing file and reinterpreted as a whole.
	EventReparsed

	// EventSaved is emitted after the document is written to disk.
	EventSaved

	// EventClosed is emitted when the document is closed.
	EventClosed
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventEdited:
		return "edited"
	case EventLanguageChanged:
		return "language-changed"
	case EventReparsed:
		return "reparsed"
	case EventSaved:
		return "saved"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event describes a single document change.
type Event struct {
	// Kind is the kind of change.
	Kind EventKind

	// Revision is the document revision after the change.
	Revision Revision

	// Path is the document's backing path at the time of the change.
	// Empty for unbacked documents.
	Path string
}

// Observer is called when a document change occurs.
// Observers run on the goroutine that performed the change; they must not
// block and must not re-enter the document's write operations.
type Observer func(event Event)

// Subscription represents an active observer registration.
type Subscription struct {
	id  uint64
	doc *Document
}

// Unsubscribe removes this subscription. Safe to call multiple times.
func (s *Subscription) Unsubscribe() {
	if s.doc != nil {
		s.doc.unsubscribe(s.id)
	}
}

// Subscribe registers an observer for all changes to the document.
func (d *Document) Subscribe(observer Observer) *Subscription {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()

	id := d.nextObsID
	d.nextObsID++
	d.observers[id] = observer

	return &Subscription{id: id, doc: d}
}

// unsubscribe removes an observer by ID.
func (d *Document) unsubscribe(id uint64) {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()
	delete(d.observers, id)
}

// emit delivers an event to all observers. Observers are collected under the
// lock and called outside it.
func (d *Document) emit(event Event) {
	d.obsMu.RLock()
	observers := make([]Observer, 0, len(d.observers))
	for _, obs := range d.observers {
		observers = append(observers, obs)
	}
	d.obsMu.RUnlock()

	for _, obs := range observers {
		obs(event)
	}
}
