package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vendahub/billing/internal/app/service/statistics"
	subsvc "github.com/vendahub/billing/internal/app/service/subscription"
	"github.com/vendahub/billing/pkg/response"
)

// @Summary      Scan subscriptions
// @Description  Filtered, paginated subscription listing for admin tables.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body subsvc.ScanRequest true "Scan request"
// @Success      200  {object}  map[string]any
// @Router       /api/v1/admin/subscriptions/scan [post]
func ApiScanSubscriptions(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		response.OK(c, gin.H{"items": res.Items, "total": res.Total})
	}
}

// @Summary      Subscription statistics
// @Description  Status counts, scheduled cancellations and monthly recurring revenue.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/v1/admin/statistics [post]
func ApiStatisticsOverview(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := stats.Overview(c.Request.Context())
		if err != nil {
			response.Error(c, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		response.OK(c, gin.H{"overview": overview})
	}
}

func RegisterAdminRoutes(r gin.IRouter, svc *subsvc.Service, stats *statistics.Service) {
	r.POST("/subscriptions/scan", ApiScanSubscriptions(svc))
	r.POST("/statistics", ApiStatisticsOverview(stats))
}
