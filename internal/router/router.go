package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kocaeli-bel/imar-backend/config"
	"github.com/kocaeli-bel/imar-backend/internal/app/controller"
	"github.com/kocaeli-bel/imar-backend/internal/middleware"
)

type Router struct {
	permitController *controller.PermitController
	config           *config.Config
}

func NewRouter(permitController *controller.PermitController, cfg *config.Config) *Router {
	return &Router{
		permitController: permitController,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Imar Ruhsat API is running",
		})
	})

	imar := router.Group("/api/imar-ruhsat")
	{
		imar.GET("", r.permitController.List)
		imar.POST("", r.permitController.Create)
		imar.GET("/:id", r.permitController.GetByID)
		imar.PUT("/:id", r.permitController.Update)
		imar.PUT("/:id/durum", r.permitController.UpdateStatus)
		imar.DELETE("/:id", r.permitController.Delete)

		imar.GET("/basvuru-no/:basvuruNo", r.permitController.GetByBasvuruNo)
		imar.GET("/search", r.permitController.Search)
		imar.GET("/tarih-araligi", r.permitController.GetByDateRange)
		imar.GET("/basvuru-turu/:tur", r.permitController.GetByTuru)
		imar.GET("/basvuru-durumu/:durum", r.permitController.GetByDurumu)
		imar.GET("/vatandas/:tcno", r.permitController.GetByTcno)
		imar.GET("/bekleyen", r.permitController.GetPending)
		imar.GET("/onaylanan", r.permitController.GetApproved)
		imar.GET("/suresi-dolacak", r.permitController.GetExpiring)

		istatistik := imar.Group("/istatistik")
		{
			istatistik.GET("/basvuru-turu/:tur", r.permitController.CountByTuru)
			istatistik.GET("/basvuru-durumu/:durum", r.permitController.CountByDurumu)
			istatistik.GET("/aylik", r.permitController.CountByMonth)
		}

		imar.GET("/dashboard", r.permitController.Dashboard)
		imar.GET("/export", r.permitController.Export)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
