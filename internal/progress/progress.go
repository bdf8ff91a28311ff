// Package progress draws a commit counter on stderr while history runs.
package progress

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar. A nil Tracker is a no-op, so callers can
// disable progress by not creating one.
type Tracker struct {
	bar   *progressbar.ProgressBar
	w     io.Writer
	label string
}

// New creates a bar over total commits writing to w. A negative total shows
// a spinner.
func New(w io.Writer, label string, total int) *Tracker {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
	}
	if total < 0 {
		opts = append(opts,
			progressbar.OptionSetWidth(20),
			progressbar.OptionSpinnerType(14),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetElapsedTime(false),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	opts = append(opts, progressbar.OptionClearOnFinish())
	return &Tracker{bar: progressbar.NewOptions(total, opts...), w: w, label: label}
}

// Step advances the bar by one commit and shows its short hash.
func (t *Tracker) Step(sha string) {
	if t == nil {
		return
	}
	if len(sha) > 7 {
		sha = sha[:7]
	}
	t.bar.Describe(t.label + " " + sha)
	_ = t.bar.Add(1)
}

// Done clears the bar.
func (t *Tracker) Done() {
	if t == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// Fail clears the bar and prints err below the label.
func (t *Tracker) Fail(err error) {
	if t == nil {
		return
	}
	t.Done()
	fmt.Fprintf(t.w, "  %s error: %v\n", t.label, err)
}
