package service

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopscout/shopscout-backend/internal/intent"
	"github.com/shopscout/shopscout-backend/internal/pkg/logger"
	"github.com/shopscout/shopscout-backend/internal/pkg/response"
	searchbiz "github.com/shopscout/shopscout-backend/internal/search/biz"
	"github.com/shopscout/shopscout-backend/internal/search/types"
	scoringbiz "github.com/shopscout/shopscout-backend/internal/scoring/biz"
	"go.uber.org/zap"
)

// SearchService exposes the search pipeline over HTTP
type SearchService struct {
	orchestrator *searchbiz.Orchestrator
	engine       *scoringbiz.Engine
	extractor    intent.Extractor
	logger       *logger.Logger
}

// NewSearchService creates the search HTTP service
func NewSearchService(
	orchestrator *searchbiz.Orchestrator,
	engine *scoringbiz.Engine,
	extractor intent.Extractor,
	log *logger.Logger,
) *SearchService {
	return &SearchService{
		orchestrator: orchestrator,
		engine:       engine,
		extractor:    extractor,
		logger:       log,
	}
}

// RegisterRoutes mounts the search endpoints
func (s *SearchService) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/search", s.Search)
	api.GET("/search/sources", s.ListSources)
	api.POST("/search/sources/:source", s.SearchOne)
}

// Search runs the whole pipeline: extract intent, fan out, rank,
// highlight
func (s *SearchService) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	query, err := s.extractor.Extract(ctx, req.Text, req.Pincode)
	if err != nil {
		if errors.Is(err, types.ErrEmptyQuery) {
			response.BadRequest(c, "search text must not be empty")
			return
		}
		s.logger.Error("intent extraction failed", zap.Error(err))
		response.InternalError(c, "failed to understand the search")
		return
	}
	ctx = logger.WithQueryID(ctx, query.ID)

	resultSet := s.orchestrator.SearchAll(ctx, query)

	ranked := s.engine.Rank(resultSet.Succeeded(), query)
	s.engine.AssignHighlights(ranked)

	response.Success(c, toSearchResponse(query, resultSet, ranked))
}

// SearchOne queries a single source, surfacing its failure to the
// caller instead of folding it into a slot
func (s *SearchService) SearchOne(c *gin.Context) {
	source := types.SourceID(c.Param("source"))

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	query, err := s.extractor.Extract(ctx, req.Text, req.Pincode)
	if err != nil {
		response.BadRequest(c, "search text must not be empty")
		return
	}

	items, err := s.orchestrator.SearchOne(ctx, source, query)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	ranked := s.engine.Rank(items, query)
	s.engine.AssignHighlights(ranked)

	response.Success(c, SourceItemsResponse{
		Query: query,
		Items: ranked,
	})
}

// ListSources reports the configured source set
func (s *SearchService) ListSources(c *gin.Context) {
	response.Success(c, gin.H{"sources": s.orchestrator.Sources()})
}
