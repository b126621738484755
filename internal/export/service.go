package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/formfill/internal/extract"
	"github.com/joseph-ayodele/formfill/internal/pipeline"
)

const sheet = "Documents"

var fixedHeaders = []string{"Source", "Card Type", "OCR Method"}

// Row is one processed document in an export.
type Row struct {
	Source   string
	CardType string
	Method   string
	Fields   *extract.Result
	Err      string
}

// RowFromResult builds a Row from a pipeline result. err may be nil.
func RowFromResult(res pipeline.Result, err error) Row {
	row := Row{
		Source:   res.Source,
		CardType: res.CardType.String(),
		Method:   res.MethodUsed,
		Fields:   res.Fields,
	}
	if err != nil {
		row.Err = err.Error()
	}
	return row
}

// Service produces XLSX workbooks for batches of processed documents.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteXLSX returns a workbook with one sheet, one row per document. The
// field columns are the union of the rows' field keys in first-seen order.
// An Error column is appended when any row failed.
func (s *Service) WriteXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	fieldKeys, withErr := columns(rows)
	headers := append(append([]string{}, fixedHeaders...), fieldKeys...)
	if withErr {
		headers = append(headers, "Error")
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, r := range rows {
		line := i + 2
		write := func(col int, v string) {
			cell, _ := excelize.CoordinatesToCellName(col, line)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.Source)
		write(2, r.CardType)
		write(3, r.Method)
		for j, k := range fieldKeys {
			if r.Fields == nil {
				continue
			}
			if v, ok := r.Fields.Get(k); ok {
				write(len(fixedHeaders)+j+1, v)
			}
		}
		if withErr {
			write(len(headers), r.Err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 48) // source
	_ = f.SetColWidth(sheet, "B", "C", 16)
	if len(headers) > len(fixedHeaders) {
		first, _ := excelize.ColumnNumberToName(len(fixedHeaders) + 1)
		last, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetColWidth(sheet, first, last, 24)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"columns", len(headers),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func columns(rows []Row) ([]string, bool) {
	var (
		keys    []string
		seen    = map[string]struct{}{}
		withErr bool
	)
	for _, r := range rows {
		if r.Err != "" {
			withErr = true
		}
		if r.Fields == nil {
			continue
		}
		for _, k := range r.Fields.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys, withErr
}
