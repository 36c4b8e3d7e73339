package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"club-attendance/backend/config"
	"club-attendance/backend/internal/api/handler"
	"club-attendance/backend/internal/api/middleware"
	"club-attendance/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(4 << 20)) // 批量导入请求体上限 4MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 写接口限流（Redis 不可用时降级放行）
	writeLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 学生名册模块
		students := v1.Group("/students")
		{
			students.GET("", h.Student.ListStudents)
			students.POST("", writeLimit, h.Student.CreateStudent)
			students.PUT("/:id", writeLimit, h.Student.UpdateStudent)
			students.DELETE("/:id", writeLimit, h.Student.DeleteStudent)
			students.POST("/bulk", writeLimit, h.Student.BulkCreateStudents)
			students.POST("/import", writeLimit, h.Student.ImportFile)
			students.POST("/import-sheet", writeLimit, h.Student.ImportSheet)
		}

		// 考勤台账模块
		attendance := v1.Group("/attendance")
		{
			attendance.POST("", writeLimit, h.Attendance.MarkAttendance)
			attendance.POST("/bulk", writeLimit, h.Attendance.BulkMarkAttendance)
			attendance.GET("/range/:start/:end", h.Attendance.GetAttendanceByRange)
			attendance.GET("/:date", h.Attendance.GetAttendanceByDate)
		}

		// 统计模块
		v1.GET("/stats", h.Stats.GetStats)

		// 导出模块
		v1.GET("/export/excel", h.Export.ExportExcel)
	}

	return r
}
