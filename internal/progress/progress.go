// Package progress renders pack progress as a terminal bar.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/meigma/brk"
)

const descLength = 28

// Bar shows files packed so far. A Bar created for a non-terminal
// writer, or with enabled false, ignores every update.
type Bar struct {
	out         io.Writer
	enabled     bool
	once        sync.Once
	container   *mpb.Progress
	bar         *mpb.Bar
	description atomic.Pointer[string]
}

// New creates a bar writing to w.
func New(w io.Writer, enabled bool) *Bar {
	b := &Bar{out: w, enabled: enabled && isTerminal(w)}
	empty := ""
	b.description.Store(&empty)
	return b
}

// Enabled reports whether the bar renders anything.
func (b *Bar) Enabled() bool {
	return b.enabled
}

// Update consumes a pack progress event. It is a brk.ProgressFunc.
func (b *Bar) Update(ev brk.ProgressEvent) {
	if !b.enabled {
		return
	}
	switch ev.Stage {
	case brk.StageEncoding:
		b.once.Do(func() { b.start(ev.FilesTotal) })
		desc := ev.Path
		b.description.Store(&desc)
		b.bar.SetCurrent(int64(ev.FilesDone))
	case brk.StageWritingIndex:
		if b.bar != nil {
			desc := ev.Stage.String()
			b.description.Store(&desc)
			b.bar.SetCurrent(int64(ev.FilesTotal))
		}
	}
}

func (b *Bar) start(total int) {
	fmt.Fprintln(b.out)
	b.container = mpb.New(
		mpb.WithOutput(b.out),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)
	b.bar = b.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				d := *b.description.Load()
				if len(d) > descLength {
					return ".." + d[len(d)-descLength+2:]
				}
				return d
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.Name("  "),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)
}

// Finish completes the bar and waits for the final render.
func (b *Bar) Finish() {
	if b.container == nil {
		return
	}
	b.bar.SetTotal(-1, true)
	b.container.Wait()
	fmt.Fprintln(b.out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
