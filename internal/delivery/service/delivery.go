package service

import (
	"github.com/gin-gonic/gin"
	deliverybiz "github.com/shopscout/shopscout-backend/internal/delivery/biz"
	"github.com/shopscout/shopscout-backend/internal/pkg/logger"
	"github.com/shopscout/shopscout-backend/internal/pkg/response"
	"github.com/shopscout/shopscout-backend/internal/search/types"
)

// DeliveryService exposes the delivery gate over HTTP
type DeliveryService struct {
	gate   *deliverybiz.Gate
	logger *logger.Logger
}

// NewDeliveryService creates the delivery HTTP service
func NewDeliveryService(gate *deliverybiz.Gate, log *logger.Logger) *DeliveryService {
	return &DeliveryService{
		gate:   gate,
		logger: log,
	}
}

// RegisterRoutes mounts the delivery endpoints
func (s *DeliveryService) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/delivery/:pincode", s.GetDeliveryInfo)
	api.GET("/delivery/:pincode/check", s.CheckDeliverable)
}

// GetDeliveryInfo returns the full delivery promise for one location
func (s *DeliveryService) GetDeliveryInfo(c *gin.Context) {
	pincode := c.Param("pincode")
	source := types.SourceID(c.DefaultQuery("source", string(types.SourceAmazon)))

	detail, err := s.gate.GetDeliveryInfo(c.Request.Context(), pincode, source)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, detail)
}

// CheckDeliverable answers the boolean serviceability question
func (s *DeliveryService) CheckDeliverable(c *gin.Context) {
	pincode := c.Param("pincode")
	source := types.SourceID(c.DefaultQuery("source", string(types.SourceAmazon)))

	deliverable := s.gate.IsDeliverable(c.Request.Context(), pincode, source)
	response.Success(c, gin.H{
		"pincode":     pincode,
		"source":      source,
		"deliverable": deliverable,
	})
}
