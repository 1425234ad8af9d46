package models

import (
	"time"

	"github.com/lib/pq"
)

// ImportJob is the audit record of one committed bulk import.
type ImportJob struct {
	ID        string         `db:"id" json:"id"`
	FileName  string         `db:"file_name" json:"fileName"`
	Format    string         `db:"format" json:"format"`
	TotalRows int            `db:"total_rows" json:"totalRows"`
	Imported  int            `db:"imported" json:"imported"`
	Rejected  int            `db:"rejected" json:"rejected"`
	Errors    pq.StringArray `db:"errors" json:"errors"`
	CreatedBy string         `db:"created_by" json:"createdBy"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}
