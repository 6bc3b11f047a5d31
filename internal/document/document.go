// Package document provides mutable text documents with immutable snapshots
// and change notification.
//
// A Document is the unit a diff view observes: it can be edited, saved,
// reloaded from its backing file, and subscribed to. Snapshots are immutable
// point-in-time copies, safe to diff against concurrent edits.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Revision identifies a document revision. It increases monotonically with
// every change to the document.
type Revision uint64

// Document is a mutable text container with change notification.
// All methods are safe for concurrent use.
type Document struct {
	id string

	mu       sync.RWMutex
	text     string
	revision Revision
	path     string
	language string
	closed   bool

	obsMu     sync.RWMutex
	observers map[uint64]Observer
	nextObsID uint64
}

// Option configures a Document.
type Option func(*Document)

// WithText sets the initial text.
func WithText(text string) Option {
	return func(d *Document) { d.text = text }
}

// WithPath associates the document with a backing file path.
// The file is not read; use NewFromFile for that.
func WithPath(path string) Option {
	return func(d *Document) { d.path = path }
}

// WithLanguage sets the initial language classification.
func WithLanguage(language string) Option {
	return func(d *Document) { d.language = language }
}

// New creates a new document.
func New(opts ...Option) *Document {
	d := &Document{
		id:        uuid.NewString(),
		observers: make(map[uint64]Observer),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromFile creates a document backed by path, reading its current content.
func NewFromFile(path string, opts ...Option) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", absPath, err)
	}

	opts = append([]Option{WithPath(absPath), WithText(string(data))}, opts...)
	return New(opts...), nil
}

// ID returns the document's unique identifier.
func (d *Document) ID() string {
	return d.id
}

// Text returns the full document content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Len returns the byte length of the document content.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// Revision returns the current revision.
func (d *Document) Revision() Revision {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Path returns the backing file path, or "" for unbacked documents.
func (d *Document) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// Language returns the current language classification.
func (d *Document) Language() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.language
}

// DisplayName returns the base name of the backing file, or "" when the
// document has no backing path.
func (d *Document) DisplayName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.path == "" {
		return ""
	}
	return filepath.Base(d.path)
}

// IsClosed reports whether the document has been closed.
func (d *Document) IsClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

// Snapshot returns an immutable point-in-time copy of the document state.
// Safe for concurrent access from other goroutines.
func (d *Document) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return &Snapshot{
		text:     d.text,
		revision: d.revision,
		path:     d.path,
		language: d.language,
	}
}

// SetText replaces the entire document content.
func (d *Document) SetText(text string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.text = text
	d.revision++
	event := Event{Kind: EventEdited, Revision: d.revision, Path: d.path}
	d.mu.Unlock()

	d.emit(event)
	return nil
}

// Insert inserts text at the given byte offset.
func (d *Document) Insert(offset int, text string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if offset < 0 || offset > len(d.text) {
		d.mu.Unlock()
		return ErrOffsetOutOfRange
	}
	d.text = d.text[:offset] + text + d.text[offset:]
	d.revision++
	event := Event{Kind: EventEdited, Revision: d.revision, Path: d.path}
	d.mu.Unlock()

	d.emit(event)
	return nil
}

// Delete removes text in the byte range [start, end).
func (d *Document) Delete(start, end int) error {
	return d.Replace(start, end, "")
}

// Replace replaces text in the byte range [start, end) with new text.
func (d *Document) Replace(start, end int, text string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if start < 0 || start > end || end > len(d.text) {
		d.mu.Unlock()
		return ErrRangeInvalid
	}
	d.text = d.text[:start] + text + d.text[end:]
	d.revision++
	event := Event{Kind: EventEdited, Revision: d.revision, Path: d.path}
	d.mu.Unlock()

	d.emit(event)
	return nil
}

// SetLanguage sets the language classification.
func (d *Document) SetLanguage(language string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if d.language == language {
		d.mu.Unlock()
		return nil
	}
	d.language = language
	d.revision++
	event := Event{Kind: EventLanguageChanged, Revision: d.revision, Path: d.path}
	d.mu.Unlock()

	d.emit(event)
	return nil
}

// Reload re-reads the document content from its backing file.
func (d *Document) Reload() error {
	path := d.Path()
	if path == "" {
		return ErrNoPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", path, err)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.text = string(data)
	d.revision++
	event := Event{Kind: EventReparsed, Revision: d.revision, Path: d.path}
	d.mu.Unlock()

	d.emit(event)
	return nil
}

// Save writes the document content to its backing file.
func (d *Document) Save() error {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrClosed
	}
	path := d.path
	text := d.text
	revision := d.revision
	d.mu.RUnlock()

	if path == "" {
		return ErrNoPath
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	d.emit(Event{Kind: EventSaved, Revision: revision, Path: path})
	return nil
}

// SaveAs associates the document with a new backing path and saves it.
func (d *Document) SaveAs(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.path = absPath
	d.mu.Unlock()

	return d.Save()
}

// Close marks the document closed and drops all observers.
// Further edits fail with ErrClosed. Safe to call multiple times.
func (d *Document) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	event := Event{Kind: EventClosed, Revision: d.revision, Path: d.path}
	d.mu.Unlock()

	d.emit(event)

	d.obsMu.Lock()
	d.observers = make(map[uint64]Observer)
	d.obsMu.Unlock()
}

// Snapshot provides a read-only view of a document at a specific point in
// time. It will not change even if the original document is modified.
type Snapshot struct {
	text     string
	revision Revision
	path     string
	language string
}

// Text returns the full snapshot content.
func (s *Snapshot) Text() string {
	return s.text
}

// Len returns the byte length of the snapshot content.
func (s *Snapshot) Len() int {
	return len(s.text)
}

// LineCount returns the number of lines in the snapshot.
func (s *Snapshot) LineCount() int {
	if s.text == "" {
		return 0
	}
	n := strings.Count(s.text, "\n")
	if !strings.HasSuffix(s.text, "\n") {
		n++
	}
	return n
}

// Revision returns the revision of the document when the snapshot was taken.
func (s *Snapshot) Revision() Revision {
	return s.revision
}

// Path returns the backing path at snapshot time.
func (s *Snapshot) Path() string {
	return s.path
}

// Language returns the language classification at snapshot time.
func (s *Snapshot) Language() string {
	return s.language
}

// DisplayName returns the base name of the backing file, or "" when the
// snapshot was taken from an unbacked document.
func (s *Snapshot) DisplayName() string {
	if s.path == "" {
		return ""
	}
	return filepath.Base(s.path)
}
