package types

// SourceStatus is the lifecycle state of one source within one search
type SourceStatus string

const (
	StatusPending        SourceStatus = "pending"
	StatusSuccess        SourceStatus = "success"
	StatusError          SourceStatus = "error"
	StatusNotDeliverable SourceStatus = "not_deliverable"
)

// SourceResult is the per-source outcome of one search. Slots are
// replaced wholesale as a source settles, never mutated field by field.
type SourceResult struct {
	Status SourceStatus `json:"status"`
	Items  []*Item      `json:"items"`
	Error  string       `json:"error,omitempty"`
}

// SearchResultSet maps every configured source to its result. Every
// source is pre-populated with a pending slot before any fetch starts,
// so callers can always render all slots.
type SearchResultSet map[SourceID]*SourceResult

// NewSearchResultSet returns a set with one pending slot per source
func NewSearchResultSet(sources []SourceID) SearchResultSet {
	set := make(SearchResultSet, len(sources))
	for _, id := range sources {
		set[id] = &SourceResult{
			Status: StatusPending,
			Items:  []*Item{},
		}
	}
	return set
}

// Succeeded collects the items of every successful source
func (s SearchResultSet) Succeeded() []*Item {
	var items []*Item
	for _, result := range s {
		if result.Status == StatusSuccess {
			items = append(items, result.Items...)
		}
	}
	return items
}
