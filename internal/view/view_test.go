package view

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/diffview/internal/diff"
	"github.com/dshills/diffview/internal/document"
	"github.com/dshills/diffview/internal/host"
	"github.com/dshills/diffview/internal/logging"
)

const testDebounce = 25 * time.Millisecond

// countingDiffer wraps diff.Lines and records invocations and inputs.
type countingDiffer struct {
	calls   atomic.Int64
	mu      sync.Mutex
	lastOld string
	lastNew string
}

func (c *countingDiffer) diff(oldText, newText string) ([]diff.Hunk, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.lastOld = oldText
	c.lastNew = newText
	c.mu.Unlock()
	return diff.Lines(oldText, newText)
}

func (c *countingDiffer) last() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOld, c.lastNew
}

// openTestView opens a view over two in-memory documents with a short
// debounce.
func openTestView(t *testing.T, oldText, newText string, opts ...Option) (*DualView, *host.Workspace) {
	t.Helper()

	oldDoc := document.New(document.WithText(oldText))
	newDoc := document.New(document.WithText(newText))
	ws := host.NewWorkspace()

	opts = append([]Option{
		WithDebounce(testDebounce),
		WithLogger(logging.NullLogger),
	}, opts...)

	v, err := Open(context.Background(), oldDoc, newDoc, ws, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(v.Close)
	return v, ws
}

// waitForGeneration polls the model until it reaches gen or the deadline
// expires.
func waitForGeneration(t *testing.T, m *diff.Model, gen uint64) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for m.Generation() < gen {
		if time.Now().After(deadline) {
			t.Fatalf("model generation = %d, want >= %d", m.Generation(), gen)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestOpen_InitialDiffReady(t *testing.T) {
	v, ws := openTestView(t, "a\nb\n", "a\nc\n")

	snap := v.Model().Get()
	if snap == nil {
		t.Fatal("no initial snapshot")
	}
	if !snap.HasChanges() {
		t.Error("initial diff reports no changes for differing documents")
	}
	if v.Model().Generation() != 0 {
		t.Errorf("initial generation = %d, want 0", v.Model().Generation())
	}
	if ws.ActivePane().ActiveItem() != host.Item(v) {
		t.Error("view was not registered as the pane's active item")
	}
}

func TestOpen_InitialDiffFailure(t *testing.T) {
	failing := func(_, _ string) ([]diff.Hunk, error) {
		return nil, errors.New("boom")
	}

	oldDoc := document.New()
	newDoc := document.New()
	ws := host.NewWorkspace()

	_, err := Open(context.Background(), oldDoc, newDoc, ws, WithDiffer(failing))
	if err == nil {
		t.Fatal("Open succeeded with a failing differ")
	}
	if ws.ActivePane().Count() != 0 {
		t.Error("failed open still registered an item")
	}
}

func TestOpen_NilArguments(t *testing.T) {
	doc := document.New()
	ws := host.NewWorkspace()
	ctx := context.Background()

	if _, err := Open(ctx, nil, doc, ws); !errors.Is(err, ErrNilDocument) {
		t.Errorf("nil old doc err = %v, want ErrNilDocument", err)
	}
	if _, err := Open(ctx, doc, nil, ws); !errors.Is(err, ErrNilDocument) {
		t.Errorf("nil new doc err = %v, want ErrNilDocument", err)
	}
	if _, err := Open(ctx, doc, doc, nil); !errors.Is(err, ErrNilWorkspace) {
		t.Errorf("nil workspace err = %v, want ErrNilWorkspace", err)
	}
}

func TestDebounce_CoalescesBurst(t *testing.T) {
	counter := &countingDiffer{}
	v, _ := openTestView(t, "base\n", "base\n", WithDiffer(counter.diff))

	// One call from construction.
	if got := counter.calls.Load(); got != 1 {
		t.Fatalf("calls after open = %d, want 1", got)
	}

	// A burst of edits inside one debounce window.
	newDoc := v.Right().Document()
	for i := 0; i < 10; i++ {
		if err := newDoc.SetText("edit\n"); err != nil {
			t.Fatal(err)
		}
	}
	if err := newDoc.SetText("final\n"); err != nil {
		t.Fatal(err)
	}

	waitForGeneration(t, v.Model(), 1)

	// Allow any (incorrect) extra recomputation to surface.
	time.Sleep(4 * testDebounce)

	if got := counter.calls.Load(); got != 2 {
		t.Errorf("calls after burst = %d, want 2 (one recomputation)", got)
	}

	// The recomputation used a snapshot taken after the last edit.
	_, lastNew := counter.last()
	if lastNew != "final\n" {
		t.Errorf("recomputation saw %q, want %q", lastNew, "final\n")
	}
	if v.Model().Generation() != 1 {
		t.Errorf("generation = %d, want 1", v.Model().Generation())
	}
}

func TestDebounce_EditDuringRecomputeIsNotLost(t *testing.T) {
	var (
		calls    atomic.Int64
		inFlight = make(chan struct{}, 1)
		release  = make(chan struct{})
	)
	blocking := func(oldText, newText string) ([]diff.Hunk, error) {
		if calls.Add(1) == 2 {
			inFlight <- struct{}{}
			<-release
		}
		return diff.Lines(oldText, newText)
	}

	v, _ := openTestView(t, "base\n", "base\n", WithDiffer(blocking))
	newDoc := v.Right().Document()

	if err := newDoc.SetText("first\n"); err != nil {
		t.Fatal(err)
	}

	// Wait for the recomputation to start, then edit while it is in flight.
	select {
	case <-inFlight:
	case <-time.After(5 * time.Second):
		t.Fatal("recomputation never started")
	}
	if err := newDoc.SetText("second\n"); err != nil {
		t.Fatal(err)
	}
	close(release)

	// The in-flight recomputation publishes, then the pending signal forces
	// another pass that observes the newer edit.
	waitForGeneration(t, v.Model(), 2)

	if got := calls.Load(); got != 3 {
		t.Errorf("differ calls = %d, want 3 (open + two recomputations)", got)
	}
}

func TestRecompute_IgnoresUnrelatedEvents(t *testing.T) {
	counter := &countingDiffer{}
	v, _ := openTestView(t, "a\n", "a\n", WithDiffer(counter.diff))

	dir := t.TempDir()
	newDoc := v.Right().Document()
	if err := newDoc.SaveAs(filepath.Join(dir, "b.txt")); err != nil {
		t.Fatal(err)
	}

	time.Sleep(4 * testDebounce)

	if got := counter.calls.Load(); got != 1 {
		t.Errorf("a save triggered %d recomputations, want 0", got-1)
	}
}

func TestRecompute_LanguageChangeTriggers(t *testing.T) {
	counter := &countingDiffer{}
	v, _ := openTestView(t, "a\n", "a\n", WithDiffer(counter.diff))

	if err := v.Left().Document().SetLanguage("go"); err != nil {
		t.Fatal(err)
	}

	waitForGeneration(t, v.Model(), 1)
}

func TestRecompute_FailureLeavesModelAndRecovers(t *testing.T) {
	var calls atomic.Int64
	flaky := func(oldText, newText string) ([]diff.Hunk, error) {
		if calls.Add(1) == 2 {
			return nil, errors.New("transient failure")
		}
		return diff.Lines(oldText, newText)
	}

	v, _ := openTestView(t, "a\n", "a\n", WithDiffer(flaky))
	initial := v.Model().Get()
	newDoc := v.Right().Document()

	// This edit's recomputation fails.
	if err := newDoc.SetText("b\n"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("failing recomputation never ran")
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(2 * testDebounce)

	if v.Model().Get() != initial {
		t.Error("failed recomputation mutated the model")
	}
	if v.Model().Generation() != 0 {
		t.Errorf("generation = %d after failure, want 0", v.Model().Generation())
	}

	// The loop did not latch into a failed state.
	if err := newDoc.SetText("c\n"); err != nil {
		t.Fatal(err)
	}
	waitForGeneration(t, v.Model(), 1)

	if !v.Model().Get().HasChanges() {
		t.Error("recovered snapshot has no changes")
	}
}

func TestClose_MidFlightDoesNotPublish(t *testing.T) {
	var (
		calls    atomic.Int64
		inFlight = make(chan struct{}, 1)
		release  = make(chan struct{})
	)
	blocking := func(oldText, newText string) ([]diff.Hunk, error) {
		if calls.Add(1) >= 2 {
			inFlight <- struct{}{}
			<-release
		}
		return diff.Lines(oldText, newText)
	}

	oldDoc := document.New(document.WithText("a\n"))
	newDoc := document.New(document.WithText("a\n"))
	ws := host.NewWorkspace()

	v, err := Open(context.Background(), oldDoc, newDoc, ws,
		WithDebounce(testDebounce),
		WithDiffer(blocking),
		WithLogger(logging.NullLogger),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := newDoc.SetText("b\n"); err != nil {
		t.Fatal(err)
	}

	select {
	case <-inFlight:
	case <-time.After(5 * time.Second):
		t.Fatal("recomputation never started")
	}

	// Close while the recomputation is blocked in the differ.
	v.Close()

	select {
	case <-v.Done():
	case <-time.After(time.Second):
		t.Fatal("recompute loop still running after Close")
	}

	// Release the abandoned computation; its result must be discarded.
	close(release)
	time.Sleep(4 * testDebounce)

	if gen := v.Model().Generation(); gen != 0 {
		t.Errorf("model mutated after Close, generation = %d", gen)
	}

	// Edits after close never reach the loop.
	_ = newDoc.SetText("c\n")
	time.Sleep(4 * testDebounce)
	if gen := v.Model().Generation(); gen != 0 {
		t.Errorf("model mutated by post-close edit, generation = %d", gen)
	}
}

func TestClose_Idempotent(t *testing.T) {
	v, _ := openTestView(t, "a\n", "a\n")
	v.Close()
	v.Close()
}

func TestActivePane_DefaultsToLeft(t *testing.T) {
	v, _ := openTestView(t, "a\n", "a\n")
	if v.ActivePane() != PaneLeft {
		t.Errorf("ActivePane() = %v, want left", v.ActivePane())
	}
}

func TestActivePane_SwitchAndToggle(t *testing.T) {
	v, ws := openTestView(t, "a\n", "a\n")

	v.SwitchToRight()
	if v.ActivePane() != PaneRight {
		t.Fatalf("ActivePane() = %v, want right", v.ActivePane())
	}
	if ws.Focused() != v.Right().FocusHandle() {
		t.Error("focus did not follow the switch to the right surface")
	}

	v.Toggle()
	if v.ActivePane() != PaneLeft {
		t.Errorf("Toggle from right = %v, want left", v.ActivePane())
	}
	if ws.Focused() != v.Left().FocusHandle() {
		t.Error("focus did not follow the toggle to the left surface")
	}

	v.Toggle()
	if v.ActivePane() != PaneRight {
		t.Errorf("Toggle from left = %v, want right", v.ActivePane())
	}
}

func TestResolve_FollowsActivePane(t *testing.T) {
	v, _ := openTestView(t, "a\n", "a\n")

	if got := v.Resolve(host.CapabilityDiffView); got != any(v) {
		t.Error("diff-view capability did not resolve to the view")
	}
	if got := v.Resolve(host.CapabilityEditor); got != any(v.Left()) {
		t.Error("editor capability did not resolve to the left surface")
	}

	v.SwitchToRight()
	if got := v.Resolve(host.CapabilityEditor); got != any(v.Right()) {
		t.Error("editor capability did not follow the active pane")
	}
	if got := v.Resolve(host.CapabilitySearchable); got != any(v.Right()) {
		t.Error("searchable capability did not follow the active pane")
	}

	if got := v.Resolve(host.Capability(99)); got != nil {
		t.Errorf("unknown capability resolved to %v, want nil", got)
	}
}

func TestSave_AlwaysTargetsNewDocument(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "a.txt")
	newPath := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(oldPath, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newPath, []byte("new\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	oldDoc, err := document.NewFromFile(oldPath)
	if err != nil {
		t.Fatal(err)
	}
	newDoc, err := document.NewFromFile(newPath)
	if err != nil {
		t.Fatal(err)
	}

	ws := host.NewWorkspace()
	v, err := Open(context.Background(), oldDoc, newDoc, ws,
		WithDebounce(testDebounce),
		WithLogger(logging.NullLogger),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	if err := newDoc.SetText("edited\n"); err != nil {
		t.Fatal(err)
	}

	// Saving targets the new document even when the left pane has focus.
	v.SwitchToLeft()
	if !v.CanSave() {
		t.Fatal("CanSave() = false for a backed new document")
	}
	if err := v.Save(context.Background(), host.SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	newData, err := os.ReadFile(newPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(newData) != "edited\n" {
		t.Errorf("new file = %q, want %q", newData, "edited\n")
	}
	oldData, err := os.ReadFile(oldPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(oldData) != "old\n" {
		t.Errorf("old file changed to %q", oldData)
	}
}

func TestCanSave_UnbackedNewDocument(t *testing.T) {
	v, _ := openTestView(t, "a\n", "a\n")
	if v.CanSave() {
		t.Error("CanSave() = true for an unbacked new document")
	}
}

func TestTabLabel(t *testing.T) {
	tests := []struct {
		name    string
		oldPath string
		newPath string
		want    string
	}{
		{"both backed", "/tmp/a.txt", "/tmp/b.txt", "a.txt ↔ b.txt"},
		{"old unbacked", "", "/tmp/b.txt", "untitled ↔ b.txt"},
		{"both unbacked", "", "", "untitled ↔ untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldDoc := document.New(document.WithPath(tt.oldPath))
			newDoc := document.New(document.WithPath(tt.newPath))
			ws := host.NewWorkspace()

			v, err := Open(context.Background(), oldDoc, newDoc, ws,
				WithDebounce(testDebounce),
				WithLogger(logging.NullLogger),
			)
			if err != nil {
				t.Fatal(err)
			}
			defer v.Close()

			if got := v.TabLabel(); got != tt.want {
				t.Errorf("TabLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTabTooltip_UsesFullPaths(t *testing.T) {
	oldDoc := document.New(document.WithPath("/home/user/project/a.txt"))
	newDoc := document.New()
	ws := host.NewWorkspace()

	v, err := Open(context.Background(), oldDoc, newDoc, ws,
		WithDebounce(testDebounce),
		WithLogger(logging.NullLogger),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	want := "/home/user/project/a.txt ↔ untitled"
	if got := v.TabTooltip(); got != want {
		t.Errorf("TabTooltip() = %q, want %q", got, want)
	}
}

func TestTabIcon(t *testing.T) {
	v, _ := openTestView(t, "a\n", "a\n")
	if v.TabIcon() != host.IconDiff {
		t.Errorf("TabIcon() = %v, want diff", v.TabIcon())
	}
}

func TestNavigate_TargetsRightSurface(t *testing.T) {
	v, _ := openTestView(t, "left text\n", "right text\n")

	if !v.Navigate(host.NavEntry{Offset: 3}) {
		t.Fatal("Navigate rejected a valid entry")
	}
	if v.Right().Offset() != 3 {
		t.Errorf("right offset = %d, want 3", v.Right().Offset())
	}
	if v.Left().Offset() != 0 {
		t.Errorf("left offset = %d, navigation leaked to the left surface", v.Left().Offset())
	}

	if v.Navigate("not a nav entry") {
		t.Error("Navigate accepted a foreign payload")
	}
	if v.Navigate(host.NavEntry{Offset: 10_000}) {
		t.Error("Navigate accepted an out-of-range offset")
	}
}

func TestSetNavHistory_RightSurfaceOnly(t *testing.T) {
	v, _ := openTestView(t, "a\n", "a\n")

	history := host.NewNavHistory()
	v.SetNavHistory(history)

	if v.Right().NavHistory() != history {
		t.Error("history not attached to the right surface")
	}
	if v.Left().NavHistory() != nil {
		t.Error("history attached to the left surface")
	}
}

func TestSurface_RecordNav(t *testing.T) {
	v, _ := openTestView(t, "left text\n", "right text\n")

	history := host.NewNavHistory()
	v.SetNavHistory(history)

	// Without a history attached, RecordNav is a no-op.
	v.Left().RecordNav()
	if history.Len() != 0 {
		t.Fatalf("history len = %d after left RecordNav, want 0", history.Len())
	}

	if !v.Navigate(host.NavEntry{Offset: 5}) {
		t.Fatal("Navigate failed")
	}
	v.Right().RecordNav()

	entry, ok := history.Pop()
	if !ok {
		t.Fatal("RecordNav pushed nothing")
	}
	if entry.Offset != 5 {
		t.Errorf("recorded offset = %d, want 5", entry.Offset)
	}
}

func TestBreadcrumbs_FollowActivePane(t *testing.T) {
	oldDoc := document.New(document.WithPath("/x/old.txt"))
	newDoc := document.New(document.WithPath("/y/new.txt"))
	ws := host.NewWorkspace()

	v, err := Open(context.Background(), oldDoc, newDoc, ws,
		WithDebounce(testDebounce),
		WithLogger(logging.NullLogger),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	crumbs := v.Breadcrumbs()
	if len(crumbs) != 2 || crumbs[1].Text != "old.txt" {
		t.Errorf("left breadcrumbs = %+v", crumbs)
	}

	v.SwitchToRight()
	crumbs = v.Breadcrumbs()
	if len(crumbs) != 2 || crumbs[1].Text != "new.txt" {
		t.Errorf("right breadcrumbs = %+v", crumbs)
	}

	if v.BreadcrumbLocation() != host.ToolbarPrimaryLeft {
		t.Errorf("BreadcrumbLocation() = %v", v.BreadcrumbLocation())
	}
}

func TestBreadcrumbs_UnbackedDocument(t *testing.T) {
	v, _ := openTestView(t, "a\n", "a\n")

	crumbs := v.Breadcrumbs()
	if len(crumbs) != 1 || crumbs[0].Text != PlaceholderName {
		t.Errorf("breadcrumbs = %+v, want one %q segment", crumbs, PlaceholderName)
	}
}

func TestSurfaces_ObserveModelUpdates(t *testing.T) {
	v, _ := openTestView(t, "a\n", "a\n")

	leftBefore := v.Left().RenderGeneration()
	rightBefore := v.Right().RenderGeneration()

	if err := v.Right().Document().SetText("b\n"); err != nil {
		t.Fatal(err)
	}
	waitForGeneration(t, v.Model(), 1)

	if v.Left().RenderGeneration() != leftBefore+1 {
		t.Error("left surface did not observe the republish")
	}
	if v.Right().RenderGeneration() != rightBefore+1 {
		t.Error("right surface did not observe the republish")
	}
}

func TestForEachDocument(t *testing.T) {
	v, _ := openTestView(t, "a\n", "b\n")

	var docs []*document.Document
	v.ForEachDocument(func(d *document.Document) {
		docs = append(docs, d)
	})

	if len(docs) != 2 {
		t.Fatalf("visited %d documents, want 2", len(docs))
	}
	if docs[0] != v.Left().Document() || docs[1] != v.Right().Document() {
		t.Error("documents visited in wrong order")
	}
}

func TestPane_String(t *testing.T) {
	tests := []struct {
		pane Pane
		want string
	}{
		{PaneLeft, "left"},
		{PaneRight, "right"},
		{Pane(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.pane.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.pane, got, tt.want)
		}
	}
}
