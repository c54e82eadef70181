package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/config"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/api/handler"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/api/middleware"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/dto"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/jwt"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/redis"
)

const (
	writeRateLimit  = 120 // 每分钟
	exportRateLimit = 10
)

// Setup 初始化并返回 Gin 路由引擎；rdb 为 nil 时跳过吊销检查与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("注册校验规则失败: %w", err)
		}
	}

	// 避免 nil *redis.Client 包装成非 nil 接口
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	writeLimit := middleware.RateLimit(limiter, writeRateLimit, time.Minute)

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, blacklist))
	{
		// 学期激活
		act := v1.Group("/activation")
		{
			act.GET("", h.Activation.Resolve)
			act.GET("/calendar", h.Activation.Calendar)
		}

		// 课程与选课
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.ListCourses)
			courses.GET("/:id", h.Course.GetCourse)
			courses.POST("", middleware.RoleAuth("admin"), h.Course.CreateCourse)
			courses.PUT("/:id", middleware.RoleAuth("admin"), h.Course.UpdateCourse)
			courses.DELETE("/:id", middleware.RoleAuth("admin"), h.Course.DeleteCourse)
			courses.GET("/:id/students", h.Course.GetStudents)
			courses.PUT("/:id/students", middleware.RoleAuth("admin"), h.Course.SetStudents)
			courses.POST("/activation/sync", middleware.RoleAuth("admin"), h.Activation.SyncCourses)

			// 考勤
			courses.PUT("/:id/attendance", middleware.RoleAuth("admin", "teacher"), writeLimit, h.Attendance.RecordAttendance)
			courses.GET("/:id/attendance", h.Attendance.ListAttendance)
			courses.GET("/:id/attendance/analytics", h.Attendance.GetAnalytics)
		}

		// 导出
		export := v1.Group("/export")
		{
			export.GET("/attendance",
				middleware.RoleAuth("admin", "teacher"),
				middleware.RateLimit(limiter, exportRateLimit, time.Minute),
				h.Export.ExportAttendance,
			)
		}
	}

	return r, nil
}
