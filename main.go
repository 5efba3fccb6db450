package main

import (
	"log"
	"os"

	"github.com/Aashish23092/payslip-extractor/config"
	"github.com/Aashish23092/payslip-extractor/handler"
	"github.com/Aashish23092/payslip-extractor/service"
	"github.com/Aashish23092/payslip-extractor/utils/concepts"
	"github.com/Aashish23092/payslip-extractor/utils/payslip"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := cfg.NewLogger()

	// Load the concept registry
	registry, err := loadRegistry(cfg)
	if err != nil {
		logger.Error("failed to load concept registry", "error", err)
		os.Exit(1)
	}
	logger.Info("concept registry loaded", "version", registry.Version(), "concepts", registry.Len())

	// Initialize service layer
	parser := payslip.NewParser(registry, payslip.WithTolerance(cfg.LineTolerance))
	payslipService := service.NewPayslipService(service.NewPDFProcessor(), parser, cfg.BatchWorkers, logger)

	// Initialize handler layer
	payslipHandler := handler.NewPayslipHandler(payslipService, cfg.MaxFileSize, logger)
	router := handler.NewRouter(payslipHandler, 32<<20, logger)

	// Start server
	logger.Info("starting payslip extractor", "port", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadRegistry(cfg *config.Config) (*concepts.Registry, error) {
	if cfg.ConceptsFile != "" {
		return concepts.Load(cfg.ConceptsFile)
	}
	return concepts.Default()
}
