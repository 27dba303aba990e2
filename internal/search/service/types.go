package service

import (
	"github.com/shopscout/shopscout-backend/internal/search/types"
)

// SearchRequest is the inbound search payload
type SearchRequest struct {
	Text    string `json:"text" binding:"required,min=1,max=500"`
	Pincode string `json:"pincode" binding:"omitempty,len=6,numeric"`
}

// SearchResponse carries the full pipeline output: the structured
// query, every per-source slot, and the cross-source ranking
type SearchResponse struct {
	Query   *types.Query          `json:"query"`
	Results types.SearchResultSet `json:"results"`
	Ranked  []*types.Item         `json:"ranked"`
}

// SourceItemsResponse is the single-source variant
type SourceItemsResponse struct {
	Query *types.Query  `json:"query"`
	Items []*types.Item `json:"items"`
}

func toSearchResponse(query *types.Query, set types.SearchResultSet, ranked []*types.Item) SearchResponse {
	return SearchResponse{
		Query:   query,
		Results: set,
		Ranked:  ranked,
	}
}
