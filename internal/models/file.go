package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FileStatus is the approval state of an uploaded dataset.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusApproved FileStatus = "approved"
	FileStatusRejected FileStatus = "rejected"
)

// RowData holds the parsed tabular rows of an upload. It round-trips through
// relational backends as a JSON column.
type RowData []map[string]interface{}

// Value implements driver.Valuer.
func (d RowData) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *RowData) Scan(src interface{}) error {
	if src == nil {
		*d = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported row data source %T", src)
	}
}

// Columns returns the union of column names across all rows.
func (d RowData) Columns() map[string]struct{} {
	cols := make(map[string]struct{})
	for _, row := range d {
		for name := range row {
			cols[name] = struct{}{}
		}
	}
	return cols
}

// File represents an uploaded tabular dataset moving through the approval
// workflow. Status leaves "pending" exactly once.
type File struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"userId"`
	Filename     string     `db:"filename" json:"filename"`
	OriginalName string     `db:"original_name" json:"originalName"`
	StoragePath  string     `db:"storage_path" json:"storagePath"`
	Status       FileStatus `db:"status" json:"status"`
	Data         RowData    `db:"data" json:"data"`
	UploadedAt   time.Time  `db:"uploaded_at" json:"uploadedAt"`
	ApprovedBy   *string    `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
}
