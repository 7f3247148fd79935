package api

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/floorheat-backend-go/internal/config"
	"github.com/jengzang/floorheat-backend-go/internal/handler"
	"github.com/jengzang/floorheat-backend-go/internal/middleware"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Heatmap   *handler.HeatmapHandler
	Dwell     *handler.DwellHandler
	Zone      *handler.ZoneHandler
	FloorPlan *handler.FloorPlanHandler
	Store     *handler.StoreHandler
	Session   *handler.SessionHandler
}

// cors CORS 中间件
func cors(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0 || slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", strings.Join([]string{
			middleware.RequestIDHeader,
			handler.HeaderScaleMin,
			handler.HeaderScaleMax,
			handler.HeaderScaleAuto,
			handler.HeaderGeneration,
			handler.HeaderVisibleInView,
			handler.HeaderVisibleTotal,
			handler.HeaderVisiblePercent,
			handler.HeaderEvents,
		}, ", "))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), cors(cfg.CORSOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Floorheat Backend API is running",
		})
	})

	auth := middleware.Auth(cfg.JWTSecret)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))
	{
		// 热力图
		heatmap := api.Group("/heatmap")
		{
			heatmap.GET("/settings", h.Heatmap.GetSettings)
			heatmap.GET("/:storeId", h.Heatmap.GetHeatmap)
			heatmap.GET("/:storeId/grid", h.Heatmap.GetGrid)
			heatmap.GET("/:storeId/totals", h.Heatmap.GetTotals)
			heatmap.GET("/:storeId/render", h.Heatmap.Render)
		}

		// 停留时间
		dwell := api.Group("/dwell")
		{
			dwell.GET("/:storeId", h.Dwell.GetDwell)
			dwell.POST("/:storeId", h.Dwell.PostDwell)
		}

		// 门店
		stores := api.Group("/stores")
		{
			stores.GET("", h.Store.ListStores)
			stores.GET("/:storeId", h.Store.GetStore)
			stores.GET("/:storeId/zones", h.Zone.ListZones)
			stores.GET("/:storeId/floorplans", h.FloorPlan.ListFloorPlans)
			stores.POST("", auth, h.Store.SaveStore)
			stores.POST("/:storeId/tracks", auth, h.Store.ImportTracks)
		}

		// 区域
		zones := api.Group("/zones")
		{
			zones.GET("/:id", h.Zone.GetZone)
			zones.POST("/stats", h.Zone.GetZoneStats)
			zones.POST("/coverage", h.Zone.GetCoverage)
			zones.POST("/completeness", h.Zone.GetCompleteness)
			zones.POST("", auth, h.Zone.CreateZone)
			zones.PUT("/:id", auth, h.Zone.UpdateZone)
			zones.DELETE("/:id", auth, h.Zone.DeleteZone)
		}

		// 平面图
		floorplans := api.Group("/floorplans/:storeId/:floor")
		{
			floorplans.GET("", h.FloorPlan.GetFloorPlan)
			floorplans.GET("/image", h.FloorPlan.GetImage)
			floorplans.PUT("/calibrate", auth, h.FloorPlan.Calibrate)
			floorplans.PUT("/adjust", auth, h.FloorPlan.Adjust)
			floorplans.POST("/calibrate-points", auth, h.FloorPlan.CalibratePoints)
			floorplans.POST("/reset", auth, h.FloorPlan.ResetAlignment)
			floorplans.DELETE("", auth, h.FloorPlan.DeleteFloorPlan)
		}

		// 交互会话
		sessions := api.Group("/sessions")
		{
			sessions.POST("", h.Session.CreateSession)
			sessions.GET("/:id", h.Session.GetSession)
			sessions.DELETE("/:id", h.Session.DeleteSession)
			sessions.GET("/:id/frame", h.Session.GetFrame)
			sessions.GET("/:id/frame/info", h.Session.GetFrameInfo)
			sessions.POST("/:id/zoom", h.Session.Zoom)
			sessions.POST("/:id/pointer", h.Session.Pointer)
			sessions.POST("/:id/mode", h.Session.SetInteraction)
			sessions.POST("/:id/calibration/source", h.Session.PickSource)
			sessions.POST("/:id/calibration/destination", h.Session.PickDestination)
			sessions.PUT("/:id/viewport", h.Session.SetViewport)
			sessions.POST("/:id/viewport/reset", h.Session.ResetViewport)
			sessions.PUT("/:id/canvas", h.Session.SetCanvas)
			sessions.PUT("/:id/scale", h.Session.SetScale)
			sessions.PUT("/:id/alignment", h.Session.SetAlignment)
			sessions.POST("/:id/alignment/reset", h.Session.ResetAlignment)
			sessions.POST("/:id/alignment/save", auth, h.Session.SaveAlignment)
			sessions.POST("/:id/reload", h.Session.Reload)
			sessions.POST("/:id/zones", auth, h.Session.SaveZone)
		}
	}

	return r
}
