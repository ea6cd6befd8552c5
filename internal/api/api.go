// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/api/handlers"
	"github.com/CHOISC1208/psi-erp/internal/api/middleware"
	"github.com/CHOISC1208/psi-erp/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	SessionService         *service.SessionService
	PSIService             *service.PSIService
	TransferService        *service.TransferService
	PolicyService          *service.PolicyService
	MasterService          *service.MasterService
	ChannelTransferService *service.ChannelTransferService
	ReportService          *service.ReportService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.SessionService != nil {
			sessionHandler := handlers.NewSessionHandler(services.SessionService)
			sessionGroup := apiGroup.Group("/sessions")
			{
				sessionGroup.GET("", sessionHandler.List)
				sessionGroup.POST("", sessionHandler.Create)
				sessionGroup.GET("/:session_id", sessionHandler.Get)
				sessionGroup.PUT("/:session_id", sessionHandler.Update)
				sessionGroup.DELETE("/:session_id", sessionHandler.Delete)
				sessionGroup.POST("/:session_id/leader", sessionHandler.SetLeader)
			}
		}

		if services.PSIService != nil {
			psiHandler := handlers.NewPSIHandler(services.PSIService)
			psiGroup := apiGroup.Group("/psi")
			{
				psiGroup.GET("/matrix", psiHandler.GetMatrix)
				psiGroup.GET("/matrix/export", psiHandler.ExportMatrix)
				psiGroup.POST("/base/import", psiHandler.ImportBase)
			}
		}

		if services.TransferService != nil {
			planHandler := handlers.NewTransferPlanHandler(services.TransferService)
			planGroup := apiGroup.Group("/transfer-plans")
			{
				planGroup.POST("/recommend", planHandler.Recommend)
				planGroup.POST("/preview", planHandler.Preview)
				planGroup.POST("/sandbox", planHandler.Sandbox)
				planGroup.GET("", planHandler.List)
				planGroup.GET("/:plan_id", planHandler.Get)
				planGroup.DELETE("/:plan_id", planHandler.Delete)
				planGroup.GET("/:plan_id/lines", planHandler.GetLines)
				planGroup.PUT("/:plan_id/lines", planHandler.ReplaceLines)
				planGroup.PATCH("/:plan_id/status", planHandler.UpdateStatus)
			}
		}

		if services.PolicyService != nil {
			policyHandler := handlers.NewPolicyHandler(services.PolicyService)
			policyGroup := apiGroup.Group("/reallocation-policy")
			{
				policyGroup.GET("", policyHandler.Get)
				policyGroup.PUT("", policyHandler.Update)
			}
		}

		if services.MasterService != nil {
			masterHandler := handlers.NewMasterHandler(services.MasterService)
			masterGroup := apiGroup.Group("/masters")
			{
				masterGroup.GET("/warehouses", masterHandler.ListWarehouses)
				masterGroup.PUT("/warehouses", masterHandler.UpsertWarehouses)
				masterGroup.GET("/channels", masterHandler.ListChannels)
				masterGroup.PUT("/channels", masterHandler.UpsertChannels)
			}
		}

		if services.ChannelTransferService != nil {
			transferHandler := handlers.NewChannelTransferHandler(services.ChannelTransferService)
			transferGroup := apiGroup.Group("/channel-transfers")
			{
				transferGroup.GET("", transferHandler.List)
				transferGroup.PUT("", transferHandler.Upsert)
				transferGroup.POST("/delete", transferHandler.Delete)
			}
		}

		if services.ReportService != nil {
			reportHandler := handlers.NewReportHandler(services.ReportService)
			reportGroup := apiGroup.Group("/reports")
			{
				reportGroup.POST("/stockout", reportHandler.Generate)
				reportGroup.GET("/published", reportHandler.ListPublished)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
