package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Cells is a worksheet row serialised as a JSON array of strings.
type Cells []string

func (c Cells) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Cells) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported cells type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode cells: %w", err)
	}
	*c = out
	return nil
}

// SheetRow is one worksheet row. Row position inside a sheet is the insertion order (ID).
type SheetRow struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Sheet     string    `gorm:"type:text;not null;index" json:"sheet"`
	Cells     Cells     `gorm:"type:text;not null" json:"cells"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SheetRow) TableName() string {
	return "sheet_rows"
}
