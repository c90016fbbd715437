package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/core/fields"
	"github.com/joseph-ayodele/labreport-import/internal/entity"
)

const (
	ResultsSheet     = "Results"
	DiagnosticsSheet = "Diagnostics"
)

// Row is one imported report.
type Row struct {
	Path   string
	Result entity.ExtractionResult
	Err    string // the file never reached extraction
}

// Service renders extraction results as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX returns a workbook with one row per report and one column per
// canonical key that any report resolved, plus a sheet listing diagnostics.
func (s *Service) ResultsXLSX(ctx context.Context, rows []Row) ([]byte, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := usedKeys(rows)
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(DiagnosticsSheet); err != nil {
		return nil, err
	}

	headers := []any{"File", "Report Date", "Strategy"}
	for _, k := range keys {
		headers = append(headers, fmt.Sprintf("%s (%s)", fields.LabelOf(k), k))
	}
	if err := f.SetSheetRow(ResultsSheet, "A1", &headers); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(DiagnosticsSheet, "A1", &[]any{"File", "Item"}); err != nil {
		return nil, err
	}

	diagRow := 2
	for i, r := range rows {
		line := []any{r.Path, "", string(r.Result.Strategy)}
		if !r.Result.ReportDate.IsZero() {
			line[1] = r.Result.ReportDate.Format("2006-01-02")
		}
		for _, k := range keys {
			if v, ok := r.Result.Values[k]; ok {
				line = append(line, v)
			} else {
				line = append(line, nil)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ResultsSheet, cell, &line); err != nil {
			return nil, err
		}

		items := r.Result.UnrecognizedItems
		if r.Err != "" {
			items = append([]string{r.Err}, items...)
		}
		for _, it := range items {
			cell, _ := excelize.CoordinatesToCellName(1, diagRow)
			if err := f.SetSheetRow(DiagnosticsSheet, cell, &[]any{r.Path, it}); err != nil {
				return nil, err
			}
			diagRow++
		}
	}

	_ = f.SetColWidth(ResultsSheet, "A", "A", 48) // path
	_ = f.SetColWidth(ResultsSheet, "B", "C", 14)
	if len(keys) > 0 {
		last, _ := excelize.ColumnNumberToName(len(keys) + 3)
		_ = f.SetColWidth(ResultsSheet, "D", last, 18)
	}
	_ = f.SetColWidth(DiagnosticsSheet, "A", "A", 48)
	_ = f.SetColWidth(DiagnosticsSheet, "B", "B", 60)
	_ = f.SetPanes(ResultsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"columns", len(keys),
		"diagnostics", diagRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteResultsXLSX renders rows and writes the workbook to path.
func (s *Service) WriteResultsXLSX(ctx context.Context, path string, rows []Row) error {
	b, err := s.ResultsXLSX(ctx, rows)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func usedKeys(rows []Row) []constants.CanonicalKey {
	var out []constants.CanonicalKey
	for _, k := range constants.AllKeys() {
		for _, r := range rows {
			if _, ok := r.Result.Values[k]; ok {
				out = append(out, k)
				break
			}
		}
	}
	return out
}
