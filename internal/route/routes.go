package route

import (
	"github.com/gin-gonic/gin"

	"porosity-hmi/internal/config"
	"porosity-hmi/internal/handler"
	"porosity-hmi/internal/logger"
	"porosity-hmi/internal/middleware"
	"porosity-hmi/internal/repository"
	wshub "porosity-hmi/internal/service/websocket"
)

// APIVersion is reported by the status endpoint.
const APIVersion = "1.0.0"

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Cameras  repository.CameraRepository
	Triggers repository.TriggerRepository
	Images   repository.ImageRepository
	Defects  repository.DefectRepository
	Regions  repository.RegionRepository
	Parts    repository.PartRepository
	Analyzer handler.Analyzer
	Loader   handler.ImageLoader
	Hub      *wshub.HubService
}

// SetupRoutes builds the gin engine with middleware and every API route.
func SetupRoutes(d Dependencies) *gin.Engine {
	if d.Config.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger.Zap()))
	r.Use(middleware.CORS(d.Config.Server.CORSOrigins))

	r.GET("/", handler.StatusHandler(APIVersion))

	api := r.Group("/api")
	{
		cameras := api.Group("/cameras")
		cameras.GET("", handler.ListCamerasHandler(d.Cameras))
		cameras.GET("/:serial", handler.GetCameraHandler(d.Cameras))
		cameras.GET("/:serial/latest", handler.CameraLatestHandler(d.Cameras, d.Images, d.Defects, d.Triggers))

		images := api.Group("/images")
		images.GET("", handler.ListImagesHandler(d.Images, d.Triggers))
		images.GET("/latest", handler.LatestImagesHandler(d.Images))
		images.GET("/:id", handler.ImageDetailHandler(d.Images))
		images.GET("/:id/file", handler.ImageFileHandler(d.Images, d.Loader))
		images.GET("/:id/analysis", handler.ImageAnalysisHandler(d.Analyzer, d.Hub, d.Logger))
		images.GET("/:id/annotated", handler.AnnotatedImageHandler(d.Images, d.Regions, d.Loader, d.Analyzer))

		api.POST("/analysis/batch", handler.BatchAnalysisHandler(d.Analyzer, d.Hub, d.Logger))

		defects := api.Group("/defects")
		defects.GET("/image/:id", handler.DefectsByImageHandler(d.Images, d.Defects))
		defects.GET("/image/:id/yolo", handler.DefectsYOLOHandler(d.Images, d.Defects))
		defects.GET("/statistics/summary", handler.DefectStatisticsHandler(d.Defects))
		defects.GET("/:id", handler.GetDefectHandler(d.Defects))
		defects.PATCH("/:id", handler.UpdateDefectHandler(d.Defects))

		regions := api.Group("/regions")
		regions.GET("/camera/:camera", handler.CameraRegionsHandler(d.Cameras, d.Regions))
		regions.GET("/:id", handler.GetRegionHandler(d.Regions))

		writes := regions.Group("", middleware.AdminToken(d.Config.Server.AdminToken))
		writes.POST("", handler.CreateRegionHandler(d.Cameras, d.Parts, d.Regions, d.Logger))
		writes.PUT("/:id", handler.UpdateRegionHandler(d.Parts, d.Regions, d.Logger))
		writes.DELETE("/:id", handler.DeleteRegionHandler(d.Regions, d.Logger))

		api.GET("/ws", handler.ViewWebsocketHandler(d.Hub, d.Logger))
	}

	logs := r.Group("/logs")
	logs.GET("/:level", handler.ShowLogsHandler(d.Logger))
	logs.POST("/:level/clear", handler.ClearLogsHandler(d.Logger))

	return r
}
