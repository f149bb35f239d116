package receipt

import "time"

// Record is the stored result of processing a receipt. Records are written
// once and never updated.
type Record struct {
	ID          string    `json:"id"`
	Points      int       `json:"points"`
	ProcessedAt time.Time `json:"processed_at"`
}
