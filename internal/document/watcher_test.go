package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher_RequiresPath(t *testing.T) {
	d := New(WithText("x"))
	if _, err := NewWatcher(d, nil); !errors.Is(err, ErrNoPath) {
		t.Errorf("NewWatcher err = %v, want ErrNoPath", err)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.txt")
	if err := os.WriteFile(path, []byte("before\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := NewFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	reparsed := make(chan struct{}, 1)
	sub := d.Subscribe(func(ev Event) {
		if ev.Kind == EventReparsed {
			select {
			case reparsed <- struct{}{}:
			default:
			}
		}
	})
	defer sub.Unsubscribe()

	w, err := NewWatcher(d, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("after\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reparsed:
	case <-time.After(5 * time.Second):
		t.Fatal("no reparse event after external write")
	}

	// The reload may race a second write event; poll for the content.
	deadline := time.Now().Add(2 * time.Second)
	for d.Text() != "after\n" {
		if time.Now().After(deadline) {
			t.Fatalf("document text = %q, want %q", d.Text(), "after\n")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := NewFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(d, nil)
	if err != nil {
		t.Fatal(err)
	}

	w.Close()
	w.Close()
}
