package router

import (
	"time"

	"assetdesk/internal/handlers"
	"assetdesk/internal/middleware"
	"assetdesk/internal/services"
	"assetdesk/internal/store"
	"assetdesk/pkg/config"
	"assetdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由。monitor 为 nil 时到期报告实时计算
func SetupRouter(cfg *config.Config, st *store.Store, monitor *services.LicenseExpiryMonitor) *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS(cfg))

	// 注册路由
	registerRoutes(router, cfg, st, monitor)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, cfg *config.Config, st *store.Store, monitor *services.LicenseExpiryMonitor) {
	licenseService := services.NewLicenseService(st, cfg.License.ExpiringWindowDays)
	organizationService := services.NewOrganizationService(st)
	personService := services.NewPersonService(st, licenseService)
	teamService := services.NewTeamService(st)
	assetService := services.NewAssetService(st)
	costService := services.NewCostService(st, licenseService)
	dashboardService := services.NewDashboardService(st, licenseService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		orgHandler := handlers.NewOrganizationHandler(organizationService)
		api.GET("/organizations", orgHandler.List)
		api.POST("/organizations", orgHandler.Create)

		// 组织范围内的接口
		org := api.Group("/organizations/:org_id", middleware.RequireOrganization(organizationService))
		{
			org.GET("", orgHandler.GetByID)

			dashboardHandler := handlers.NewDashboardHandler(dashboardService)
			org.GET("/dashboard", dashboardHandler.Stats)

			personHandler := handlers.NewPersonHandler(personService, costService)
			people := org.Group("/people")
			{
				people.GET("", personHandler.List)
				people.POST("", personHandler.Create)
				people.GET("/:id", personHandler.GetByID)
				people.PUT("/:id", personHandler.Update)
				people.DELETE("/:id", personHandler.Delete)
				people.GET("/:id/cost", personHandler.Cost)
			}

			teamHandler := handlers.NewTeamHandler(teamService, personService)
			teams := org.Group("/teams")
			{
				teams.GET("", teamHandler.List)
				teams.POST("", teamHandler.Create)
				teams.GET("/:id", teamHandler.GetByID)
				teams.PUT("/:id", teamHandler.Update)
				teams.DELETE("/:id", teamHandler.Delete)
				teams.GET("/:id/members", teamHandler.Members)
				teams.POST("/:id/members", teamHandler.AddMember)
				teams.DELETE("/:id/members/:person_id", teamHandler.RemoveMember)
			}

			licenseHandler := handlers.NewLicenseHandler(licenseService, monitor)
			licenses := org.Group("/licenses")
			{
				// 静态路径放在 :id 之前
				licenses.GET("/summary", licenseHandler.Summary)
				licenses.GET("/expiry-report", licenseHandler.ExpiryReport)

				licenses.GET("", licenseHandler.List)
				licenses.POST("", licenseHandler.Create)
				licenses.GET("/:id", licenseHandler.GetByID)
				licenses.PUT("/:id", licenseHandler.Update)
				licenses.DELETE("/:id", licenseHandler.Delete)
				licenses.POST("/:id/assign", licenseHandler.Assign)
				licenses.POST("/:id/unassign", licenseHandler.Unassign)
				licenses.PUT("/:id/assignments", licenseHandler.Reconcile)
			}

			assetHandler := handlers.NewAssetHandler(assetService)
			assets := org.Group("/assets")
			{
				assets.GET("/inventory", assetHandler.Inventory)

				assets.GET("", assetHandler.List)
				assets.POST("", assetHandler.Create)
				assets.GET("/:id", assetHandler.GetByID)
				assets.PUT("/:id", assetHandler.Update)
				assets.DELETE("/:id", assetHandler.Delete)
				assets.POST("/:id/assign", assetHandler.Assign)
				assets.POST("/:id/unassign", assetHandler.Unassign)
			}
		}
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "assetdesk",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
