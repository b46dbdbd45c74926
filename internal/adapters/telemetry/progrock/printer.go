package progrock

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
)

var _ progrock.Writer = (*Printer)(nil)

type printerStyles struct {
	completed lipgloss.Style
	failed    lipgloss.Style
	cached    lipgloss.Style
	log       lipgloss.Style
}

// Printer is a progrock.Writer that prints one line per finished vertex.
// With verbose set it also echoes vertex output.
type Printer struct {
	out     io.Writer
	verbose bool
	styles  printerStyles

	mu       sync.Mutex
	names    map[string]string
	finished map[string]bool
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{
		out:     out,
		verbose: verbose,
		styles: printerStyles{
			completed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // Green
			failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")), // Red
			cached:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")), // Gray
			log:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		},
		names:    make(map[string]string),
		finished: make(map[string]bool),
	}
}

// WriteStatus processes one status update from the recorder.
func (p *Printer) WriteStatus(update *progrock.StatusUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, v := range update.Vertexes {
		p.names[v.Id] = v.Name
		if v.Completed == nil || p.finished[v.Id] {
			continue
		}
		p.finished[v.Id] = true
		p.printVertex(v)
	}

	if p.verbose {
		for _, l := range update.Logs {
			p.printLog(l)
		}
	}
	return nil
}

func (p *Printer) printVertex(v *progrock.Vertex) {
	switch {
	case v.Error != nil:
		_, _ = fmt.Fprintln(p.out, p.styles.failed.Render("✗ "+v.Name+": "+*v.Error))
	case v.Cached:
		_, _ = fmt.Fprintln(p.out, p.styles.cached.Render("= "+v.Name))
	default:
		_, _ = fmt.Fprintln(p.out, p.styles.completed.Render("✓ "+v.Name))
	}
}

func (p *Printer) printLog(l *progrock.VertexLog) {
	name := p.names[l.Vertex]
	for _, line := range strings.Split(strings.TrimRight(string(l.Data), "\n"), "\n") {
		if line == "" {
			continue
		}
		_, _ = fmt.Fprintln(p.out, p.styles.log.Render("  "+name+" | "+line))
	}
}

// Close implements progrock.Writer.
func (p *Printer) Close() error {
	return nil
}
