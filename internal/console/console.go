// Package console renders pr-review output: panels, markdown, tables, a spinner and status lines
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tildaslashalef/prreview/internal/errs"
	"github.com/tildaslashalef/prreview/internal/git"
	"github.com/tildaslashalef/prreview/internal/review"
)

const defaultWidth = 100

// Console writes formatted output. It is safe for use by one review at a time.
type Console struct {
	out         io.Writer
	errOut      io.Writer
	interactive bool
	colors      bool
	width       int
	lg          *lipgloss.Renderer

	mu       sync.Mutex
	streamed int // bytes of the streamed review already written
}

// Option configures a Console
type Option func(*Console)

// WithInteractive overrides terminal detection. Interactive consoles show a spinner,
// stream the review as it arrives and use colors.
func WithInteractive(interactive bool) Option {
	return func(c *Console) {
		c.interactive = interactive
		c.colors = interactive
	}
}

// WithWidth sets the wrapping width
func WithWidth(width int) Option {
	return func(c *Console) {
		if width > 20 {
			c.width = width
		}
	}
}

// New creates a console writing to out and errOut
func New(out, errOut io.Writer, opts ...Option) *Console {
	c := &Console{
		out:    out,
		errOut: errOut,
		width:  defaultWidth,
	}
	if f, ok := out.(*os.File); ok {
		c.interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		c.colors = c.interactive
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		WithWidth(cols)(c)
	}
	for _, opt := range opts {
		opt(c)
	}

	c.lg = lipgloss.NewRenderer(out)
	return c
}

// NewStd creates a console on the process's stdout and stderr
func NewStd(opts ...Option) *Console {
	return New(os.Stdout, os.Stderr, opts...)
}

// Out returns the writer for regular output
func (c *Console) Out() io.Writer { return c.out }

// Interactive reports whether the console writes to a terminal
func (c *Console) Interactive() bool { return c.interactive }

func (c *Console) paint(colors text.Colors, s string) string {
	if !c.colors {
		return s
	}
	return colors.Sprint(s)
}

// Panel renders body inside a rounded border headed by title
func (c *Console) Panel(title, body string, border lipgloss.Color) string {
	inner := c.width - 4
	body = wordwrap.String(strings.TrimRight(body, "\n"), inner)

	if title != "" {
		heading := c.lg.NewStyle().Bold(true).Foreground(border).Render(title)
		body = heading + "\n\n" + body
	}

	box := c.lg.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	return box.Render(body)
}

// PrintPanel writes a panel to the regular output
func (c *Console) PrintPanel(title, body string, border lipgloss.Color) {
	fmt.Fprintln(c.out, c.Panel(title, body, border))
}

// Success prints a confirmation panel
func (c *Console) Success(title, message string) {
	c.PrintPanel(title, message, BorderSuccess)
}

// Warning prints a warning panel
func (c *Console) Warning(message string) {
	c.PrintPanel("Warning", message, BorderWarning)
}

// Notice prints an informational panel
func (c *Console) Notice(title, message string) {
	c.PrintPanel(title, message, BorderWarning)
}

// Error prints err in a red panel on the error output. When verbose, the cause chain
// and the run ID of the failed invocation follow.
func (c *Console) Error(err error, verbose bool, runID string) {
	fmt.Fprintln(c.errOut, c.Panel("Error", "Error: "+err.Error(), BorderError))

	if !verbose {
		return
	}
	chain := errs.Chain(err)
	for i, msg := range chain[1:] {
		fmt.Fprintf(c.errOut, "%s %s\n", c.paint(Theme.Subtle, strings.Repeat("  ", i)+"caused by:"), msg)
	}
	fmt.Fprintf(c.errOut, "%s %s\n", c.paint(Theme.Subtle, "kind:"), errs.KindOf(err))
	if runID != "" {
		fmt.Fprintf(c.errOut, "%s %s\n", c.paint(Theme.Subtle, "run:"), runID)
	}
}

// Markdown renders a markdown document for the terminal
func (c *Console) Markdown(doc string) string {
	style := glamour.WithStandardStyle("notty")
	if c.colors {
		style = glamour.WithAutoStyle()
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(c.width-6))
	if err != nil {
		return doc
	}

	rendered, err := r.Render(doc)
	if err != nil {
		return doc
	}
	return strings.Trim(rendered, "\n")
}

// Table prints rows under headers with an optional title
func (c *Console) Table(title string, headers []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(c.tableStyle())
	if title != "" {
		t.SetTitle(title)
	}

	header := make(table.Row, 0, len(headers))
	for _, h := range headers {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, 0, len(r))
		for _, cell := range r {
			row = append(row, cell)
		}
		t.AppendRow(row)
	}

	t.Render()
}

// Header prints the repository, provider and per-file change counts of a review
func (c *Console) Header(h review.Header) {
	var lines []string
	if h.Repo != nil {
		lines = append(lines, fmt.Sprintf("%s %s", c.paint(Theme.Subtle, "Repository:"), describeRepo(h.Repo)))
	}
	lines = append(lines, fmt.Sprintf("%s %s (%s)", c.paint(Theme.Subtle, "Provider:"), h.Provider, h.Model))
	fmt.Fprintln(c.out, strings.Join(lines, "\n"))

	if h.Summary != nil && len(h.Summary.Files) > 0 {
		c.SummaryTable(h.Summary)
	}
}

// SummaryTable prints per-file added and deleted line counts
func (c *Console) SummaryTable(s *git.Summary) {
	rows := make([][]string, 0, len(s.Files)+1)
	for _, f := range s.Files {
		name := f.Path
		if f.OldPath != "" {
			name = f.OldPath + " -> " + f.Path
		}
		lang := f.Language
		if f.Binary {
			lang = "binary"
		}
		rows = append(rows, []string{
			name,
			string(f.ChangeType),
			lang,
			c.paint(Theme.Added, "+"+strconv.Itoa(f.Added)),
			c.paint(Theme.Deleted, "-"+strconv.Itoa(f.Deleted)),
		})
	}
	rows = append(rows, []string{
		fmt.Sprintf("%d files", len(s.Files)), "", "",
		c.paint(Theme.Added, "+"+strconv.Itoa(s.Added)),
		c.paint(Theme.Deleted, "-"+strconv.Itoa(s.Deleted)),
	})

	c.Table("Changes", []string{"File", "Change", "Language", "Added", "Deleted"}, rows)
}

func describeRepo(r *git.RepoInfo) string {
	switch {
	case r.Detached:
		return fmt.Sprintf("%s (detached at %s)", r.Root, r.Head)
	case r.Head == "":
		return fmt.Sprintf("%s (%s, no commits)", r.Root, r.Branch)
	default:
		return fmt.Sprintf("%s (%s @ %s)", r.Root, r.Branch, r.Head)
	}
}

// Spinner shows an indeterminate progress indicator until the returned function is
// called or ctx ends. It does nothing on a non-interactive console.
func (c *Console) Spinner(ctx context.Context, message string) context.CancelFunc {
	if !c.interactive {
		return func() {}
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(c.out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(12)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleCircle)
	pw.Style().Visibility.Percentage = false
	pw.Style().Visibility.Value = false
	pw.Style().Visibility.Time = true
	pw.Style().Colors.Message = Theme.Info
	pw.Style().Colors.Time = Theme.Subtle
	pw.Style().Options.DoneString = "received"

	tracker := &progress.Tracker{Message: message, Total: 0, Units: progress.UnitsDefault}
	pw.AppendTracker(tracker)
	go pw.Render()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			tracker.MarkAsDone()
			pw.Stop()
			for pw.IsRenderInProgress() {
				time.Sleep(10 * time.Millisecond)
			}
		})
	}
	release := context.AfterFunc(ctx, stop)

	return func() {
		release()
		stop()
	}
}

// Progress writes the part of the streamed review not yet shown. Only interactive consoles stream.
func (c *Console) Progress(partial string) {
	if !c.interactive {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(partial) <= c.streamed {
		return
	}
	fmt.Fprint(c.out, c.paint(Theme.Subtle, partial[c.streamed:]))
	c.streamed = len(partial)
}

// Review prints the final review as rendered markdown inside a panel
func (c *Console) Review(document string) {
	c.mu.Lock()
	if c.streamed > 0 {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out)
		c.streamed = 0
	}
	c.mu.Unlock()

	c.PrintPanel("AI PR Review", c.Markdown(document), BorderSuccess)
}

// Conclusion prints the status line for an explicit conclusion marker
func (c *Console) Conclusion(conclusion review.Conclusion) {
	var line *color.Color
	var msg string

	switch conclusion {
	case review.ConclusionMakeChanges:
		line, msg = color.New(color.FgRed, color.Bold), "Review failed: Changes requested"
	case review.ConclusionApproved:
		line, msg = color.New(color.FgGreen, color.Bold), "Review passed: Approved"
	default:
		return
	}

	if !c.colors {
		line.DisableColor()
	}
	line.Fprintf(c.out, "\n%s\n", msg)
}

// Highlight returns s emphasized for inline use, e.g. a file path
func (c *Console) Highlight(s string) string {
	if !c.colors {
		return s
	}
	return color.New(color.FgYellow).Sprint(s)
}

// Println writes a plain line
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}
