package catalog

import "time"

/*
The catalog is a record of what an export run produced.
The catalog is a primitive for verifying, inventorying and auditing
data operations.
*/

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Collection captures the outcome of a single collection within a run.
// Every requested collection appears exactly once, whether it succeeded
// or failed.
type Collection struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Columns   int    `json:"columns"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	Artifact  string `json:"artifact,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Catalog represents the catalog of collections that have been exported
type Catalog struct {
	RunID          string       `json:"run_id"`
	Source         string       `json:"source"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	Collections    []Collection `json:"collections"`
	Succeeded      int          `json:"succeeded"`
	Failed         int          `json:"failed"`
	TotalDocuments int          `json:"total_documents"`
	Completed      bool         `json:"completed"`
}

func New(runID string, source string) *Catalog {
	return &Catalog{
		RunID:     runID,
		Source:    source,
		StartTime: time.Now().UTC(),
	}
}

// Add appends a collection outcome and keeps the aggregate counters
// consistent.
func (c *Catalog) Add(collection Collection) {
	c.Collections = append(c.Collections, collection)

	switch collection.Status {
	case StatusSucceeded:
		c.Succeeded++
		c.TotalDocuments += collection.Documents
	case StatusFailed:
		c.Failed++
	}
}

// Finish stamps the end time. Completed means every requested collection
// was visited, not that every collection succeeded.
func (c *Catalog) Finish(completed bool) {
	c.EndTime = time.Now().UTC()
	c.Completed = completed
}
