package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

var ErrRowOutOfRange = errors.New("row out of range")

// Worksheet is a row/column addressed sheet. Rows and columns are 1-based; row 1 is the
// header row. Infrastructure failures are reported wrapped in models.ErrStoreUnavailable.
type Worksheet interface {
	ColumnValues(ctx context.Context, col int) ([]string, error)
	RowValues(ctx context.Context, row int) ([]string, error)
	AppendRow(ctx context.Context, values []string) error
	UpdateCells(ctx context.Context, row int, cells map[int]string) error
}

type gormWorksheet struct {
	db    *gorm.DB
	sheet string
}

// NewGormWorksheet keeps the sheet in the sheet_rows table, one record per row.
func NewGormWorksheet(db *gorm.DB, sheet string) Worksheet {
	return &gormWorksheet{db: db, sheet: sheet}
}

// ColumnValues implements Worksheet.
func (w *gormWorksheet) ColumnValues(ctx context.Context, col int) ([]string, error) {
	var rows []models.SheetRow
	if err := w.db.WithContext(ctx).
		Where("sheet = ?", w.sheet).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to read column %d: %v", models.ErrStoreUnavailable, col, err)
	}

	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = cellAt(row.Cells, col)
	}
	return values, nil
}

// RowValues implements Worksheet.
func (w *gormWorksheet) RowValues(ctx context.Context, row int) ([]string, error) {
	record, err := w.findRow(w.db.WithContext(ctx), row)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), record.Cells...), nil
}

// AppendRow implements Worksheet.
func (w *gormWorksheet) AppendRow(ctx context.Context, values []string) error {
	record := models.SheetRow{
		Sheet: w.sheet,
		Cells: append(models.Cells(nil), values...),
	}
	if err := w.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("%w: failed to append row: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

// UpdateCells implements Worksheet.
func (w *gormWorksheet) UpdateCells(ctx context.Context, row int, cells map[int]string) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := w.findRow(tx, row)
		if err != nil {
			return err
		}

		record.Cells = applyCells(record.Cells, cells)

		if err := tx.Model(&models.SheetRow{}).
			Where("id = ?", record.ID).
			Update("cells", record.Cells).Error; err != nil {
			return fmt.Errorf("%w: failed to update row %d: %v", models.ErrStoreUnavailable, row, err)
		}
		return nil
	})
}

func (w *gormWorksheet) findRow(db *gorm.DB, row int) (*models.SheetRow, error) {
	if row < 1 {
		return nil, ErrRowOutOfRange
	}

	var rows []models.SheetRow
	if err := db.
		Where("sheet = ?", w.sheet).
		Order("id ASC").
		Offset(row - 1).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to read row %d: %v", models.ErrStoreUnavailable, row, err)
	}
	if len(rows) == 0 {
		return nil, ErrRowOutOfRange
	}
	return &rows[0], nil
}

func cellAt(cells []string, col int) string {
	if col < 1 || col > len(cells) {
		return ""
	}
	return cells[col-1]
}

func applyCells(current []string, cells map[int]string) []string {
	width := len(current)
	for col := range cells {
		if col > width {
			width = col
		}
	}
	out := make([]string, width)
	copy(out, current)
	for col, value := range cells {
		if col >= 1 {
			out[col-1] = value
		}
	}
	return out
}
