// Package main is the entry point for the diffview tool.
//
// diffview opens two files side by side, computes their line diff, and
// prints it. With -watch it keeps running and reprints whenever either file
// changes on disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dshills/diffview/internal/config"
	"github.com/dshills/diffview/internal/diff"
	"github.com/dshills/diffview/internal/document"
	"github.com/dshills/diffview/internal/host"
	"github.com/dshills/diffview/internal/logging"
	"github.com/dshills/diffview/internal/view"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "path to a TOML config file")
		watchFiles  = flag.Bool("watch", false, "watch both files and reprint on change")
		debounceMS  = flag.Int("debounce", 0, "debounce in milliseconds (overrides config)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("diffview %s (%s)\n", version, commit)
		return 0
	}

	if flag.NArg() != 2 {
		usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *debounceMS > 0 {
		cfg.DebounceMS = *debounceMS
	}
	if *watchFiles {
		cfg.WatchFiles = true
	}

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Output: os.Stderr,
		Prefix: "diffview",
	})
	logging.SetDefault(logger)

	oldDoc, err := document.NewFromFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	newDoc, err := document.NewFromFile(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ws := host.NewWorkspace()
	dv, err := view.Open(context.Background(), oldDoc, newDoc, ws,
		view.WithDebounce(cfg.Debounce()),
		view.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open diff view: %v\n", err)
		return 1
	}
	defer dv.Close()

	printDiff(dv.TabLabel(), dv.Model().Get())

	if !cfg.WatchFiles {
		return 0
	}

	// Watch mode: reload documents on disk changes and reprint on every
	// republished diff.
	updates := make(chan *diff.Snapshot, 1)
	sub := dv.Model().Subscribe(func(snap *diff.Snapshot) {
		select {
		case updates <- snap:
		default:
		}
	})
	defer sub.Unsubscribe()

	for _, doc := range []*document.Document{oldDoc, newDoc} {
		w, err := document.NewWatcher(doc, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to watch %s: %v\n", doc.Path(), err)
			return 1
		}
		defer w.Close()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("watching for changes (Ctrl-C to exit)")
	for {
		select {
		case <-signals:
			return 0
		case snap := <-updates:
			fmt.Printf("\n--- %s ---\n", time.Now().Format("15:04:05"))
			printDiff(dv.TabLabel(), snap)
		}
	}
}

// printDiff writes a readable rendering of the diff to stdout.
func printDiff(label string, snap *diff.Snapshot) {
	stats := snap.Stats()
	fmt.Printf("%s  (+%d -%d)\n", label, stats.Insertions, stats.Deletions)

	if !snap.HasChanges() {
		fmt.Println("files are identical")
		return
	}

	for _, hunk := range snap.Hunks() {
		switch hunk.Kind {
		case diff.KindEqual:
			continue
		case diff.KindDelete, diff.KindModify:
			fmt.Printf("@@ -%d +%d @@\n", hunk.OldStart, hunk.NewStart)
			for _, line := range hunk.OldLines {
				fmt.Printf("-%s", ensureNewline(line))
			}
			for _, line := range hunk.NewLines {
				fmt.Printf("+%s", ensureNewline(line))
			}
		case diff.KindInsert:
			fmt.Printf("@@ -%d +%d @@\n", hunk.OldStart, hunk.NewStart)
			for _, line := range hunk.NewLines {
				fmt.Printf("+%s", ensureNewline(line))
			}
		}
	}
}

// ensureNewline terminates a line for printing.
func ensureNewline(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}
	return line + "\n"
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: diffview [flags] <old-file> <new-file>\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}
