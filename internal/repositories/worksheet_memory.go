package repositories

import (
	"context"
	"sync"
)

type memoryWorksheet struct {
	mu   sync.RWMutex
	rows [][]string
}

// NewMemoryWorksheet keeps rows in process memory. Used for local runs and tests.
func NewMemoryWorksheet() Worksheet {
	return &memoryWorksheet{}
}

func (m *memoryWorksheet) ColumnValues(ctx context.Context, col int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]string, len(m.rows))
	for i, row := range m.rows {
		values[i] = cellAt(row, col)
	}
	return values, nil
}

func (m *memoryWorksheet) RowValues(ctx context.Context, row int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if row < 1 || row > len(m.rows) {
		return nil, ErrRowOutOfRange
	}
	return append([]string(nil), m.rows[row-1]...), nil
}

func (m *memoryWorksheet) AppendRow(ctx context.Context, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, append([]string(nil), values...))
	return nil
}

func (m *memoryWorksheet) UpdateCells(ctx context.Context, row int, cells map[int]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.rows) {
		return ErrRowOutOfRange
	}
	m.rows[row-1] = applyCells(m.rows[row-1], cells)
	return nil
}
