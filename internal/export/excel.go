// Package export writes a monitor's submission history to an Excel
// workbook for offline record keeping.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"tallysentry/internal/backend"
)

// ExcelWriter renders submission histories to .xlsx files
type ExcelWriter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExcelWriter creates an Excel writer targeting outputDir
func NewExcelWriter(outputDir string, logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{
		outputDir: outputDir,
		logger:    logger,
	}
}

var headers = []string{
	"Submitted", "Status", "Registered Voters", "Nullified Votes",
	"Invalid Votes", "Presidential Votes", "Parliamentary Votes",
	"Local Gov Votes",
}

// Write renders one row per record, in the order given, under a
// header row. Returns the path of the written workbook.
func (w *ExcelWriter) Write(monitorID string, records []backend.SubmissionRecord) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, record := range records {
		values := []interface{}{
			record.SubmissionTimestamp.Format("2006-01-02 15:04:05"),
			string(record.Status),
			record.RegisteredVoters,
			record.NullifiedVotes,
			record.InvalidVotes,
			record.PresidentialVotes,
			record.ParliamentaryVotes,
			record.LocalGovVotes,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return "", fmt.Errorf("failed to write row %d: %w", row+1, err)
			}
		}
	}

	name := fmt.Sprintf("submissions_%s_%s.xlsx", monitorID, time.Now().Format("20060102_150405"))
	path := filepath.Join(w.outputDir, name)

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Exported submission history",
		zap.String("monitor_id", monitorID),
		zap.Int("records", len(records)),
		zap.String("path", path))

	return path, nil
}
