package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ChartType enumerates the supported chart renderings.
type ChartType string

const (
	ChartTypeBar    ChartType = "bar"
	ChartTypeLine   ChartType = "line"
	ChartTypePie    ChartType = "pie"
	ChartTypeThreeD ChartType = "3d"
)

// ValidChartType reports whether the value is a known chart type.
func ValidChartType(t ChartType) bool {
	switch t {
	case ChartTypeBar, ChartTypeLine, ChartTypePie, ChartTypeThreeD:
		return true
	}
	return false
}

// JSONMap stores free-form rendering hints as a JSON column.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported config source %T", src)
	}
}

// Chart is a visualization definition bound to an approved file. The axis
// columns are validated against the file's data at creation time.
type Chart struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	FileID    string    `db:"file_id" json:"fileId"`
	Title     string    `db:"title" json:"title"`
	Type      ChartType `db:"type" json:"type"`
	XAxis     string    `db:"x_axis" json:"xAxis"`
	YAxis     string    `db:"y_axis" json:"yAxis"`
	Config    JSONMap   `db:"config" json:"config,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
