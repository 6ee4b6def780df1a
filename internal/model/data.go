package model

import "time"

// LoadResult is the output of one pipeline run for a kind
type LoadResult struct {
	ID       string        `json:"id,omitempty"`
	Kind     Kind          `json:"kind"`
	Paths    []string      `json:"paths"`
	Table    Table         `json:"-"`
	Metric   string        `json:"metric"`   // total column KPIs are reported on
	Totals   []string      `json:"totals"`   // every total column in Table
	Warnings []string      `json:"warnings"` // non-fatal schema drift messages
	LoadedAt time.Time     `json:"loaded_at"`
	Duration time.Duration `json:"duration"`
}

// Summary holds the headline figures of a (filtered) table
type Summary struct {
	Records   int              `json:"records"`
	Metric    string           `json:"metric"`
	Total     int64            `json:"total"`
	Totals    map[string]int64 `json:"totals"`
	States    int              `json:"states"`
	Districts int              `json:"districts"`
	MinDate   *time.Time       `json:"min_date,omitempty"`
	MaxDate   *time.Time       `json:"max_date,omitempty"`
	Mean      float64          `json:"mean"`
	Median    float64          `json:"median"`
}

// TrendPoint is the metric summed for one date
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value int64     `json:"value"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "xlsx"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// LoadRecord is the persisted history entry of an uncached load
type LoadRecord struct {
	ID         string    `json:"id" db:"id"`
	Kind       string    `json:"kind" db:"kind"`
	Paths      []string  `json:"paths" db:"-"`
	RowCount   int       `json:"row_count" db:"row_count"`
	Status     string    `json:"status" db:"status"`
	Warnings   []string  `json:"warnings" db:"-"`
	Error      string    `json:"error,omitempty" db:"error_message"`
	DurationMS int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Load statuses
const (
	LoadStatusCompleted = "completed"
	LoadStatusFailed    = "failed"
)
