package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"club-attendance/backend/internal/service"
	"club-attendance/backend/pkg/response"
)

// StatsHandler 统计模块 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// GetStats 获取当日考勤统计
// GET /api/v1/stats?as_of=
func (h *StatsHandler) GetStats(c *gin.Context) {
	asOf := c.Query("as_of")

	stats, err := h.statsSvc.Stats(c.Request.Context(), asOf)
	if err != nil {
		if errors.Is(err, service.ErrAttendanceBadDate) {
			response.BadRequest(c, 21001, "无效的日期格式（应为 YYYY-MM-DD）")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}
