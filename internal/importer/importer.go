// Package importer reads a financial model workbook (.xlsx) into the
// hierarchical company payload.
//
// Layout: rows 1-3 hold the calendar, fiscal and fiscal date headers from
// column E onward; data starts at row 4 with name (A), unit (B), source (C)
// and tag id (D) followed by one value per period.
package importer

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/xuri/excelize/v2"
)

// DefaultSections are the row labels that open a new section.
var DefaultSections = []string{
	"Document",
	"KPIs",
	"Geography Breakdown",
	"Income Statement",
	"Balance Sheet",
	"Cash Flow Statement",
	"Adjusted EBITDA",
	"Property, Plant and Equipment, net",
	"Other Breakdown",
}

// Worksheet geometry (1-based).
const (
	calendarRow   = 1
	fiscalRow     = 2
	fiscalDateRow = 3
	firstDataRow  = 4

	nameCol       = 1
	unitCol       = 2
	sourceCol     = 3
	tagCol        = 4
	firstValueCol = 5
)

// isoLayout matches the timestamps produced by the original upload job.
const isoLayout = "2006-01-02T15:04:05"

// Meta describes the company a workbook belongs to.
type Meta struct {
	Company   string
	Ticker    string
	UpdatedAt time.Time
	Source    string
	FileLink  string
	// Sheet selects the worksheet; the active sheet is used when empty.
	Sheet string
}

// Config configures an Importer.
type Config struct {
	Sections []string
	Logger   *slog.Logger
}

// Importer converts workbooks into company payloads.
type Importer struct {
	sections map[string]struct{}
	logger   *slog.Logger
}

// New creates an importer. DefaultSections is used when cfg.Sections is empty.
func New(cfg Config) *Importer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	names := cfg.Sections
	if len(names) == 0 {
		names = DefaultSections
	}
	sections := make(map[string]struct{}, len(names))
	for _, n := range names {
		sections[n] = struct{}{}
	}
	return &Importer{sections: sections, logger: logger}
}

// ImportFile reads the workbook at path.
func (im *Importer) ImportFile(path string, meta Meta) (*core.Company, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	return im.importWorkbook(f, meta)
}

// Import reads a workbook from r.
func (im *Importer) Import(r io.Reader, meta Meta) (*core.Company, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer f.Close()

	return im.importWorkbook(f, meta)
}

func (im *Importer) importWorkbook(f *excelize.File, meta Meta) (*core.Company, error) {
	sheetName := meta.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(f.GetActiveSheetIndex())
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	comments, err := f.GetComments(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read comments of sheet %q: %w", sheetName, err)
	}

	s := &sheet{
		file:     f,
		name:     sheetName,
		rows:     rows,
		comments: make(map[string]string, len(comments)),
		styles:   make(map[int]*excelize.Style),
		logger:   im.logger,
	}
	for _, c := range comments {
		s.comments[c.Cell] = commentText(c)
	}
	for _, r := range rows {
		s.maxCol = max(s.maxCol, len(r))
	}

	updatedAt := meta.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	company := &core.Company{
		Company:   meta.Company,
		Ticker:    meta.Ticker,
		UpdatedAt: updatedAt.UTC().Format(isoLayout),
		Metrics:   []core.Metric{},
	}
	if meta.Source != "" || meta.FileLink != "" {
		company.LastUpdatedWith = &core.UpdateSource{Source: meta.Source, FileLink: meta.FileLink}
	}

	im.logger.Debug("importing workbook",
		slog.String("sheet", sheetName),
		slog.Int("rows", len(rows)),
		slog.Int("columns", s.maxCol))

	company.Metrics = im.walk(s)

	im.logger.Info("workbook imported",
		slog.String("ticker", meta.Ticker),
		slog.Int("metrics", len(company.Metrics)))
	return company, nil
}

// level tracks the current node of one hierarchy level. An empty name
// means the level is unset.
type level struct {
	name    string
	row     int
	styling *core.Styling
}

func (l *level) set(name string, row int, styling *core.Styling) {
	l.name, l.row, l.styling = name, row, styling
}

func (l *level) reset() { *l = level{} }

func (im *Importer) walk(s *sheet) []core.Metric {
	periods := s.headers()

	var metrics []core.Metric
	var section, category, subcategory, subsubcategory level

	for r := firstDataRow; r <= len(s.rows); r++ {
		first := s.value(r, nameCol)

		if _, ok := im.sections[first]; ok {
			section.set(first, r, s.styling(r, nameCol, false, false))
			category.reset()
			subcategory.reset()
			subsubcategory.reset()
			continue
		}

		if s.restBlank(r) {
			styling := s.styling(r, nameCol, false, false)
			switch {
			case category.name == "":
				category.set(first, r, styling)
			case subcategory.name != "" && r == subcategory.row+1:
				subsubcategory.set(first, r, styling)
			case subcategory.name != "":
				subcategory.set(first, r, styling)
				subsubcategory.reset()
			case r == category.row+1:
				subcategory.set(first, r, styling)
			default:
				category.set(first, r, styling)
				subcategory.reset()
				subsubcategory.reset()
			}
			continue
		}

		metrics = append(metrics, core.Metric{
			Section:        s.node(section),
			Category:       s.node(category),
			Subcategory:    s.node(subcategory),
			Subsubcategory: s.node(subsubcategory),
			Name: core.NameNode{
				Name:          first,
				Order:         r,
				Link:          s.link(r, nameCol),
				Styling:       s.styling(r, nameCol, false, false),
				EmptyRowAfter: s.nextRowEmpty(r),
			},
			Unit: s.value(r, unitCol),
			Source: core.Source{
				Value:   s.value(r, sourceCol),
				Link:    s.link(r, sourceCol),
				Styling: s.styling(r, sourceCol, true, false),
			},
			TagID:  s.value(r, tagCol),
			Values: s.values(r, periods),
		})
	}

	return metrics
}

type period struct {
	calendar, fiscal, fiscalDate string
}

// sheet wraps one worksheet with 1-based cell accessors.
type sheet struct {
	file     *excelize.File
	name     string
	rows     [][]string
	maxCol   int
	comments map[string]string
	styles   map[int]*excelize.Style
	logger   *slog.Logger
}

func (s *sheet) value(row, col int) string {
	if row < 1 || row > len(s.rows) || col < 1 || col > len(s.rows[row-1]) {
		return ""
	}
	return strings.TrimSpace(s.rows[row-1][col-1])
}

func (s *sheet) headers() []period {
	var periods []period
	for c := firstValueCol; c <= s.maxCol; c++ {
		periods = append(periods, period{
			calendar:   s.value(calendarRow, c),
			fiscal:     s.value(fiscalRow, c),
			fiscalDate: excelDate(s.value(fiscalDateRow, c)),
		})
	}
	return periods
}

func (s *sheet) restBlank(row int) bool {
	for c := nameCol + 1; c <= s.maxCol; c++ {
		if s.value(row, c) != "" {
			return false
		}
	}
	return true
}

// nextRowEmpty reports whether the row after row has an empty first
// column. Rows past the end count as empty; unset levels (row 0) do not.
func (s *sheet) nextRowEmpty(row int) bool {
	if row <= 0 {
		return false
	}
	if row+1 > len(s.rows) {
		return true
	}
	return s.value(row+1, nameCol) == ""
}

func (s *sheet) node(l level) core.HierarchyNode {
	n := core.HierarchyNode{
		Name:          l.name,
		Order:         l.row,
		EmptyRowAfter: s.nextRowEmpty(l.row),
	}
	if l.name != "" {
		n.Styling = l.styling
	}
	return n
}

func (s *sheet) values(row int, periods []period) []core.PeriodValue {
	values := make([]core.PeriodValue, len(periods))
	for i, p := range periods {
		col := firstValueCol + i
		ref := cellName(col, row)

		formula, err := s.file.GetCellFormula(s.name, ref)
		if err != nil {
			s.logger.Debug("failed to read formula", slog.String("cell", ref), slog.Any("error", err))
		}
		if formula != "" && !strings.HasPrefix(formula, "=") {
			formula = "=" + formula
		}

		var value any
		if raw := s.value(row, col); raw != "" {
			value = parseValue(raw)
		} else if formula != "" {
			// No cached result: keep the formula text, it is never evaluated here.
			value = formula
		}

		values[i] = core.PeriodValue{
			Period:     p.calendar,
			Fiscal:     p.fiscal,
			FiscalDate: p.fiscalDate,
			Value:      value,
			Formula:    core.StrPtr(formula),
			Comment:    core.StrPtr(s.comments[ref]),
			Link:       core.StrPtr(s.link(row, col)),
			Styling:    s.styling(row, col, false, formula != ""),
		}
	}
	return values
}

func (s *sheet) link(row, col int) string {
	ok, target, err := s.file.GetCellHyperLink(s.name, cellName(col, row))
	if err != nil || !ok {
		return ""
	}
	return target
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return name
}

// parseValue keeps numbers numeric and everything else as text.
func parseValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// excelDate converts an Excel date serial to an ISO timestamp. Non-numeric
// values are returned unchanged.
func excelDate(raw string) string {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format(isoLayout)
}

func commentText(c excelize.Comment) string {
	var b strings.Builder
	b.WriteString(c.Text)
	for _, run := range c.Paragraph {
		b.WriteString(run.Text)
	}
	return strings.TrimSpace(b.String())
}
