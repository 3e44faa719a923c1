package utils

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

const labelWidth = 24

// Progress draws a stderr progress bar sized in work units (archive
// entries, datatable files), with the entry currently being processed
// shown beside the bar and a running byte total fed by AddBytes. All
// methods are no-ops when the bar is disabled or stderr is not a
// terminal, so callers never need to branch.
type Progress struct {
	container *mpb.Progress
	bar       *mpb.Bar
	label     atomic.Value // string
	bytes     atomic.Int64
}

// NewProgress creates a bar over total work units.
func NewProgress(total int, enabled bool) *Progress {
	p := &Progress{}
	p.label.Store("")

	if !enabled || !term.IsTerminal(int(os.Stderr.Fd())) {
		return p
	}

	// Blank line to separate the bar from earlier log output.
	fmt.Fprintln(os.Stderr)

	p.container = mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)
	p.bar = p.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				label, _ := p.label.Load().(string)
				return tailLabel(label, labelWidth)
			}, decor.WC{W: labelWidth, C: decor.DindentRight}),
			decor.Name("  "),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Any(func(decor.Statistics) string {
				if n := p.bytes.Load(); n > 0 {
					return "  " + Bytes(n)
				}
				return ""
			}),
		),
	)

	return p
}

// Update moves the bar to current and shows label beside it.
func (p *Progress) Update(current int, label string) {
	if p.bar == nil {
		return
	}
	p.label.Store(label)
	p.bar.SetCurrent(int64(current))
}

// AddBytes adds n to the byte total shown after the bar.
func (p *Progress) AddBytes(n int) {
	p.bytes.Add(int64(n))
}

// Finish waits for the bar to render its final state.
func (p *Progress) Finish() {
	if p.container == nil {
		return
	}
	p.container.Wait()
	fmt.Fprintln(os.Stderr)
}

// tailLabel fits an entry path into width bytes keeping the tail, since
// archive paths share long directory prefixes and differ at the end.
func tailLabel(label string, width int) string {
	if len(label) <= width {
		return label
	}
	return ".." + label[len(label)-width+2:]
}
