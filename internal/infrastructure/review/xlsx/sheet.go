package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Review"

const (
	colFile = iota
	colStatus
	colCountry
	colInsurer
	colLine
	colProduct
	colConfidence
	colApprove
)

var header = []string{
	"original_filename",
	"status",
	"country",
	"insurer",
	"insurance_line",
	"product_name",
	"confidence",
	"approve",
}

// Sheet is the review worksheet exchanged with a human reviewer.
// Rows carry the current field values; the reviewer corrects them and
// types "yes" in the approve column.
type Sheet struct {
	lines []string
}

type Option func(*Sheet)

// WithLineChoices offers the given insurance lines as a drop-down.
func WithLineChoices(lines []string) Option {
	return func(s *Sheet) {
		s.lines = append([]string(nil), lines...)
	}
}

func New(opts ...Option) *Sheet {
	s := &Sheet{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sheet) Export(_ context.Context, path string, records []*domain.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "H1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	_ = f.SetColWidth(SheetName, "A", "A", 40)
	_ = f.SetColWidth(SheetName, "C", "F", 24)

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			rec.OriginalFilename,
			rec.Status.String(),
			rec.Country,
			rec.Insurer,
			rec.InsuranceLine,
			rec.ProductName,
			rec.Confidence,
			"",
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(records) > 0 {
		last := len(records) + 1
		if err := s.addDropList(f, fmt.Sprintf("H2:H%d", last), []string{"yes", "no"}); err != nil {
			return err
		}
		if len(s.lines) > 0 {
			if err := s.addDropList(f, fmt.Sprintf("E2:E%d", last), s.lines); err != nil {
				return err
			}
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.WrapError(domain.ErrIO, "create review dir", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return domain.WrapError(domain.ErrIO, "save review sheet", err)
	}
	return nil
}

func (s *Sheet) addDropList(f *excelize.File, sqref string, choices []string) error {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = sqref
	if err := dv.SetDropList(choices); err != nil {
		return fmt.Errorf("drop list %s: %w", sqref, err)
	}
	if err := f.AddDataValidation(SheetName, dv); err != nil {
		return fmt.Errorf("add validation %s: %w", sqref, err)
	}
	return nil
}

// Import reads one decision per non-blank row. Columns are matched by header name.
func (s *Sheet) Import(_ context.Context, path string) ([]domain.ReviewDecision, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrInputMissing, "open review sheet", err)
		}
		return nil, domain.WrapError(domain.ErrParse, "open review sheet", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domain.WrapError(domain.ErrParse, "read review rows", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}
	cell := func(row []string, col int) string {
		i := index[col]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	decisions := make([]domain.ReviewDecision, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, colFile)
		if name == "" {
			continue
		}
		decisions = append(decisions, domain.ReviewDecision{
			OriginalFilename: name,
			Approve:          approved(cell(row, colApprove)),
			Fields: domain.Fields{
				Country:       cell(row, colCountry),
				Insurer:       cell(row, colInsurer),
				InsuranceLine: cell(row, colLine),
				ProductName:   cell(row, colProduct),
			},
		})
	}
	return decisions, nil
}

func columnIndex(first []string) ([]int, error) {
	index := make([]int, len(header))
	for i := range index {
		index[i] = -1
	}
	for pos, name := range first {
		name = strings.ToLower(strings.TrimSpace(name))
		for col, want := range header {
			if name == want {
				index[col] = pos
			}
		}
	}
	if index[colFile] < 0 {
		return nil, domain.WrapError(domain.ErrParse, "read review header", fmt.Errorf("missing %q column", header[colFile]))
	}
	if index[colApprove] < 0 {
		return nil, domain.WrapError(domain.ErrParse, "read review header", fmt.Errorf("missing %q column", header[colApprove]))
	}
	return index, nil
}

func approved(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1", "x", "approved":
		return true
	default:
		return false
	}
}
