package progress

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// New creates a progress bar for a loop of 'max' items (-1 if unknown).
// A nil writer produces a silent bar, which is what library code gets in tests.
func New(w io.Writer, max int, description string) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			io.WriteString(w, "\n")
		}),
	)
}
