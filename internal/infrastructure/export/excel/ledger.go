package excel

import (
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

const sheetName = "Applications"

var headers = []string{"Application ID", "User ID", "Scheme ID", "Status", "Notes", "Occurred At"}

// Ledger appends application lifecycle events to an xlsx audit file. The
// worker flushes it to disk after each event; the file is the worker's only
// durable output, so a failed flush is surfaced, not swallowed.
type Ledger struct {
	mu   sync.Mutex
	path string
	file *excelize.File
	row  int
}

// OpenLedger opens an existing ledger or starts a fresh one with a header
// row. The next append lands on the first empty row.
func OpenLedger(path string) (*Ledger, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		file = excelize.NewFile()
		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
		if err := file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
		for i, header := range headers {
			cell, err := excelize.CoordinatesToCellName(i+1, 1)
			if err != nil {
				return nil, fmt.Errorf("header cell: %w", err)
			}
			if err := file.SetCellValue(sheetName, cell, header); err != nil {
				return nil, fmt.Errorf("write header: %w", err)
			}
		}
		return &Ledger{path: path, file: file, row: 2}, nil
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read existing ledger: %w", err)
	}
	return &Ledger{path: path, file: file, row: len(rows) + 1}, nil
}

// Append writes one event row and saves the file.
func (l *Ledger) Append(event domain.ApplicationEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	values := []any{
		event.ApplicationID,
		event.UserID,
		event.SchemeID,
		string(event.Status),
		event.Notes,
		event.OccurredAt.UTC().Format("2006-01-02 15:04:05"),
	}
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, l.row)
		if err != nil {
			return fmt.Errorf("event cell: %w", err)
		}
		if err := l.file.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("write event cell: %w", err)
		}
	}
	l.row++

	if err := l.file.SaveAs(l.path); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Close releases the underlying file handle.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
