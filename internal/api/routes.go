package api

import (
	"github.com/gin-gonic/gin"

	"propertyflow/server/internal/auth"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/", handler.Root)
	router.GET("/health", handler.Health)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
	}

	protected := api.Group("")
	protected.Use(auth.Middleware(handler.tokens, handler.logger))
	{
		protected.GET("/auth/protected", handler.Protected)

		properties := protected.Group("/properties")
		{
			// The static summary route must be registered alongside /:id.
			properties.GET("/summary", handler.GetPortfolioSummary)
			properties.POST("", handler.CreateProperty)
			properties.GET("", handler.ListProperties)
			properties.GET("/:id", handler.GetProperty)
			properties.PATCH("/:id", handler.UpdateProperty)
			properties.DELETE("/:id", handler.DeleteProperty)
		}

		ocrGroup := protected.Group("/ocr")
		{
			ocrGroup.POST("/upload", handler.UploadDocument)
			ocrGroup.GET("/status", handler.GetOCRStatus)
			ocrGroup.GET("/parsed/:document_id", handler.GetParsedDocument)
			ocrGroup.PUT("/update/:document_id", handler.UpdateExtractedData)
		}

		protected.DELETE("/documents/:document_id", handler.DeleteDocument)
	}
}
