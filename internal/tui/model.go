// Package tui is the interactive terminal viewer for a workbook. It draws
// the current snapshot with the same cell decoration as the browser UI and
// applies the same one-preview-at-a-time rule to linked cells.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/leapgrid/internal/decorate"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// NoDataMessage is shown when the snapshot has no rows.
const NoDataMessage = "No data available"

// chromeLines is the number of lines around the grid body: title, column
// header, status and help.
const chromeLines = 4

// Config holds the dependencies of the viewer.
type Config struct {
	Workbook *workbook.Workbook
	// Open is called with the link of the selected cell.
	Open func(link string) error
	// Decorate overrides the snapshot's own cell decoration.
	Decorate decorate.DecorateFunc
	Context  context.Context
	Logger  *slog.Logger
}

type refreshMsg struct {
	snap *workbook.Snapshot
	err  error
}

type openedMsg struct {
	link string
	err  error
}

// Model is the bubbletea model of the viewer.
type Model struct {
	wb           *workbook.Workbook
	open         func(string) error
	decorateCell decorate.DecorateFunc
	ctx          context.Context
	logger       *slog.Logger

	snap *workbook.Snapshot
	gate *decorate.PreviewGate

	cx, cy           int
	scrollX, scrollY int
	width, height    int

	loading bool
	err     error
	status  string

	keys    keyMap
	help    help.Model
	spinner spinner.Model
}

// New creates the viewer. If the workbook has no snapshot yet, Init starts
// a refresh.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	m := Model{
		wb:           cfg.Workbook,
		open:         cfg.Open,
		decorateCell: cfg.Decorate,
		ctx:          ctx,
		logger:       logger,
		gate:         &decorate.PreviewGate{},
		scrollX:      1,
		keys:         defaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
	}
	if cfg.Workbook != nil {
		m.snap = cfg.Workbook.Current()
	}
	m.loading = m.snap == nil
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.loading {
		return tea.Batch(m.spinner.Tick, m.refresh())
	}
	return nil
}

func (m Model) refresh() tea.Cmd {
	wb, ctx := m.wb, m.ctx
	return func() tea.Msg {
		if wb == nil {
			return refreshMsg{err: errors.New("no workbook configured")}
		}
		snap, err := wb.Refresh(ctx)
		return refreshMsg{snap: snap, err: err}
	}
}

func (m Model) openLink(link string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		if open == nil {
			return openedMsg{link: link, err: errors.New("no link opener configured")}
		}
		return openedMsg{link: link, err: open(link)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.follow()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshMsg:
		return m.applyRefresh(msg), nil

	case openedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to open %s: %w", msg.link, msg.err)
		} else {
			m.status = "opened " + msg.link
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) applyRefresh(msg refreshMsg) Model {
	m.loading = false
	switch {
	case errors.Is(msg.err, workbook.ErrStale):
		return m
	case msg.err != nil && !errors.Is(msg.err, core.ErrNoData):
		m.logger.Warn("refresh failed", "error", msg.err)
		m.err = msg.err
		return m
	}
	m.err = nil
	m.snap = msg.snap
	if m.wb != nil {
		if cur := m.wb.Current(); cur != nil {
			m.snap = cur
		}
	}
	m.gate.Dismiss()
	if m.snap != nil {
		m.status = fmt.Sprintf("loaded generation %d", m.snap.Generation)
	}
	m.clamp()
	m.follow()
	return m
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.refresh())
	case key.Matches(msg, m.keys.Dismiss):
		m.gate.Dismiss()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		link := m.linkAtCursor()
		if link == "" {
			if p, ok := m.gate.Current(); ok {
				link = p.Link
			}
		}
		if link == "" {
			m.status = "cell has no link"
			return m, nil
		}
		return m, m.openLink(link)
	case key.Matches(msg, m.keys.Up):
		m.cy--
	case key.Matches(msg, m.keys.Down):
		m.cy++
	case key.Matches(msg, m.keys.Left):
		m.cx--
	case key.Matches(msg, m.keys.Right):
		m.cx++
	case key.Matches(msg, m.keys.Home):
		m.cx = 0
	case key.Matches(msg, m.keys.End):
		m.cx = len(m.columns()) - 1
	default:
		return m, nil
	}
	m.clamp()
	m.follow()
	m.hover()
	return m, nil
}

// hover offers the cell under the cursor to the preview gate.
func (m Model) hover() {
	link := m.linkAtCursor()
	if link == "" {
		return
	}
	m.gate.Hover(decorate.Preview{Link: link, Row: m.cy, Col: m.cx})
}

func (m Model) linkAtCursor() string {
	if m.snap.Empty() {
		return ""
	}
	return decorate.LinkAt(m.snap.Model, m.cy, m.cx)
}

func (m Model) columns() []core.GridColumn {
	if m.snap == nil {
		return nil
	}
	return m.snap.Model.Columns
}

func (m Model) rows() []core.GridRow {
	if m.snap == nil {
		return nil
	}
	return m.snap.Model.Rows
}

func (m *Model) clamp() {
	m.cx = clampIndex(m.cx, len(m.columns()))
	m.cy = clampIndex(m.cy, len(m.rows()))
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m Model) bodyHeight() int {
	h := m.height - chromeLines
	if m.err != nil {
		h--
	}
	if _, ok := m.gate.Current(); ok {
		h -= 4
	}
	if m.help.ShowAll {
		h -= 4
	}
	if h < 1 {
		h = 1
	}
	return h
}

// follow scrolls so the cursor stays visible. Column 0 is frozen, scrollX
// is the first scrollable column shown after it.
func (m *Model) follow() {
	if m.cy < m.scrollY {
		m.scrollY = m.cy
	}
	if h := m.bodyHeight(); m.cy >= m.scrollY+h {
		m.scrollY = m.cy - h + 1
	}

	if n := len(m.columns()); m.scrollX >= n {
		m.scrollX = n - 1
	}
	if m.scrollX < 1 {
		m.scrollX = 1
	}
	if m.cx == 0 {
		return
	}
	if m.cx < m.scrollX {
		m.scrollX = m.cx
		return
	}
	for m.scrollX < m.cx {
		if _, end := m.visibleColumns(); m.cx < end {
			break
		}
		m.scrollX++
	}
}

// visibleColumns returns the scrollable column range that fits the width.
func (m Model) visibleColumns() (int, int) {
	cols := m.columns()
	if len(cols) == 0 {
		return 0, 0
	}
	avail := m.width - ColumnWidth(cols[0].Width) - 1
	if m.width == 0 {
		avail = 1 << 30
	}
	start := m.scrollX
	end := start
	used := 0
	for end < len(cols) {
		w := ColumnWidth(cols[end].Width) + 1
		if used+w > avail && end > start {
			break
		}
		used += w
		end++
	}
	return start, end
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" " + m.title()))
	if m.loading {
		b.WriteString(" " + m.spinner.View() + dimStyle.Render(" loading"))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(" Error: "+m.err.Error()) + "\n")
	}

	switch {
	case m.snap == nil:
		b.WriteString(dimStyle.Render(" Loading…") + "\n")
	case m.snap.Empty():
		b.WriteString(dimStyle.Render(" "+NoDataMessage) + "\n")
	default:
		m.viewGrid(&b)
	}

	if p, ok := m.gate.Current(); ok {
		b.WriteString(m.viewPreview(p))
		b.WriteString("\n")
	}

	status := fmt.Sprintf(" [%d,%d]", m.cy, m.cx)
	if m.snap != nil {
		status += fmt.Sprintf("  %dx%d  gen %d", len(m.rows()), len(m.columns()), m.snap.Generation)
	}
	if m.status != "" {
		status += "  " + m.status
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) title() string {
	if m.snap != nil && m.snap.Company != nil {
		c := m.snap.Company
		if c.Ticker != "" {
			return fmt.Sprintf("%s (%s)", c.Company, c.Ticker)
		}
		return c.Company
	}
	if m.wb != nil {
		return m.wb.Query().String()
	}
	return "LeapGrid"
}

func (m Model) viewGrid(b *strings.Builder) {
	cols := m.columns()
	rows := m.rows()
	start, end := m.visibleColumns()
	visible := append([]int{0}, indexRange(start, end)...)

	for i, ci := range visible {
		w := ColumnWidth(cols[ci].Width)
		b.WriteString(headerStyle.Render(Truncate(fmt.Sprintf("%-*s", w, cols[ci].Name), w)))
		if i < len(visible)-1 {
			b.WriteString(dimStyle.Render("│"))
		}
	}
	b.WriteString("\n")

	decorateCell := m.decorateCell
	if decorateCell == nil {
		decorateCell = m.snap.Decorate()
	}
	last := min(m.scrollY+m.bodyHeight(), len(rows))
	for ri := m.scrollY; ri < last; ri++ {
		decs := make([]decorate.Decoration, len(visible))
		for i, ci := range visible {
			decs[i] = decorateCell.At(m.snap.Model, ri, ci)
		}
		for i, ci := range visible {
			w := ColumnWidth(cols[ci].Width)
			if ri == m.cy && ci == m.cx {
				b.WriteString(cursorStyle.Render(Truncate(fmt.Sprintf("%-*s", w, decs[i].Text), w)))
			} else {
				b.WriteString(Cell(decs[i], w))
			}
			if i < len(visible)-1 {
				b.WriteString(dimStyle.Render(Separator(decs[i], decs[i+1])))
			}
		}
		b.WriteString("\n")
	}
}

func (m Model) viewPreview(p decorate.Preview) string {
	var where string
	if rows, cols := m.rows(), m.columns(); p.Row < len(rows) && p.Col < len(cols) {
		where = fmt.Sprintf("%s / %s", rows[p.Row].Name, cols[p.Col].Name)
	}
	body := titleStyle.Render("Preview") + "  " + dimStyle.Render(where) + "\n" +
		p.Link + "\n" + dimStyle.Render("enter open  esc close")
	return previewStyle.Render(body)
}

func indexRange(start, end int) []int {
	out := make([]int, 0, max(end-start, 0))
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}

// Preview returns the open preview, if any.
func (m Model) Preview() (decorate.Preview, bool) {
	return m.gate.Current()
}

// Cursor returns the selected row and column.
func (m Model) Cursor() (row, col int) {
	return m.cy, m.cx
}

// Run starts the viewer on the alternate screen and blocks until it exits.
func Run(cfg Config, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	if cfg.Context != nil {
		opts = append(opts, tea.WithContext(cfg.Context))
	}
	if _, err := tea.NewProgram(New(cfg), opts...).Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}
