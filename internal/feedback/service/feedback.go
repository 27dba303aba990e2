package service

import (
	"time"

	"github.com/gin-gonic/gin"
	feedbackbiz "github.com/shopscout/shopscout-backend/internal/feedback/biz"
	"github.com/shopscout/shopscout-backend/internal/feedback/types"
	"github.com/shopscout/shopscout-backend/internal/pkg/logger"
	"github.com/shopscout/shopscout-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// FeedbackService exposes feedback ingestion and analytics over HTTP
type FeedbackService struct {
	aggregator *feedbackbiz.Aggregator
	logger     *logger.Logger
}

// NewFeedbackService creates the feedback HTTP service
func NewFeedbackService(aggregator *feedbackbiz.Aggregator, log *logger.Logger) *FeedbackService {
	return &FeedbackService{
		aggregator: aggregator,
		logger:     log,
	}
}

// RegisterRoutes mounts the feedback endpoints
func (s *FeedbackService) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/feedback", s.Submit)
	api.GET("/feedback/analytics", s.Analytics)
	api.GET("/feedback/items/:id", s.ByItem)
	api.GET("/feedback/queries/:id", s.ByQuery)
}

// SubmitRequest is the inbound feedback payload. Timestamp is epoch
// milliseconds; when omitted the ingestion time is used.
type SubmitRequest struct {
	ItemID    string `json:"item_id" binding:"required"`
	QueryID   string `json:"query_id" binding:"required"`
	Verdict   string `json:"verdict" binding:"required"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// Submit validates and stores one relevance signal
func (s *FeedbackService) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event := &types.Event{
		ItemID:  req.ItemID,
		QueryID: req.QueryID,
		Verdict: types.Verdict(req.Verdict),
	}
	if req.Timestamp != nil {
		event.Timestamp = time.UnixMilli(*req.Timestamp)
	}

	if err := s.aggregator.Submit(c.Request.Context(), event); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, gin.H{"event_id": event.ID})
}

// Analytics recomputes and returns the rolling analytics view
func (s *FeedbackService) Analytics(c *gin.Context) {
	analytics, err := s.aggregator.Analytics(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to compute feedback analytics", zap.Error(err))
		response.InternalError(c, "failed to compute analytics")
		return
	}

	response.Success(c, analytics)
}

// ByItem returns the relevance history of one item
func (s *FeedbackService) ByItem(c *gin.Context) {
	events, err := s.aggregator.ByItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"events": events})
}

// ByQuery returns the relevance history of one query
func (s *FeedbackService) ByQuery(c *gin.Context) {
	events, err := s.aggregator.ByQuery(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"events": events})
}
