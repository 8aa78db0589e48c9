package store

import "time"

// Experiment is a named experiment whose first variant is the control.
type Experiment struct {
	ID        int64
	Name      string
	Variants  []string // Decoded from JSON
	CreatedAt time.Time
}

type EventType string

const (
	EventView    EventType = "view"
	EventConvert EventType = "convert"
)

// VariantCounts holds distinct-visitor counts for one variant index.
type VariantCounts struct {
	Variant     int
	Visitors    int
	Conversions int
}
