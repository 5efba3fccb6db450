package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the payslip routes onto a gin engine.
func NewRouter(payslipHandler *PayslipHandler, maxMultipartMemory int64, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))
	router.MaxMultipartMemory = maxMultipartMemory

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Payslip Extractor",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/concepts", payslipHandler.ListConcepts)

		payslips := api.Group("/payslips")
		{
			payslips.POST("/parse", payslipHandler.ParsePayslips)
			payslips.POST("/unknown-concepts", payslipHandler.DetectUnknownConcepts)
		}
	}

	return router
}
