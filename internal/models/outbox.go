package models

import (
	"time"

	"github.com/goccy/go-json"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxDone    OutboxStatus = "done"
	OutboxFailed  OutboxStatus = "failed"
)

// Outbox event kinds.
const (
	OutboxProductsImported = "products.imported"
)

// OutboxEvent is a side effect recorded in the same transaction as the write
// that caused it, delivered later by the fan-out worker.
type OutboxEvent struct {
	ID            string          `db:"id" json:"id"`
	Kind          string          `db:"kind" json:"kind"`
	Payload       json.RawMessage `db:"payload" json:"payload"`
	Status        OutboxStatus    `db:"status" json:"status"`
	Attempts      int             `db:"attempts" json:"attempts"`
	NextAttemptAt time.Time       `db:"next_attempt_at" json:"nextAttemptAt"`
	LastError     *string         `db:"last_error" json:"lastError,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	ProcessedAt   *time.Time      `db:"processed_at" json:"processedAt,omitempty"`
}

// ProductsImportedPayload is the payload of a products.imported event.
type ProductsImportedPayload struct {
	ImportJobID string   `json:"importJobId"`
	Count       int      `json:"count"`
	ProductIDs  []string `json:"productIds"`
}
