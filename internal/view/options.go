package view

import (
	"time"

	"github.com/dshills/diffview/internal/diff"
	"github.com/dshills/diffview/internal/logging"
)

// DefaultDebounce is the quiet period required after the last change
// notification before the diff is recomputed.
const DefaultDebounce = 250 * time.Millisecond

// PlaceholderName is shown in place of a display name for documents with no
// backing path.
const PlaceholderName = "untitled"

type config struct {
	debounce time.Duration
	differ   diff.Differ
	logger   *logging.Logger
}

func defaultViewConfig() config {
	return config{
		debounce: DefaultDebounce,
		logger:   logging.Default(),
	}
}

// Option configures a DualView.
type Option func(*config)

// WithDebounce sets the debounce duration for diff recomputation.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithDiffer sets the diff computation function. A nil differ keeps the
// default line differ.
func WithDiffer(differ diff.Differ) Option {
	return func(c *config) {
		if differ != nil {
			c.differ = differ
		}
	}
}

// WithLogger sets the view's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
