package main

import (
	"fmt"
	"os"

	"github.com/fszn/contracts-service/internal/auth"
	"github.com/fszn/contracts-service/internal/config"
	"github.com/fszn/contracts-service/internal/db"
	"github.com/fszn/contracts-service/internal/excel"
	httphandler "github.com/fszn/contracts-service/internal/http"
	"github.com/fszn/contracts-service/internal/http/middleware"
	"github.com/fszn/contracts-service/internal/logger"
	"github.com/fszn/contracts-service/internal/pdf"
	"github.com/fszn/contracts-service/internal/repository"
	"github.com/fszn/contracts-service/internal/service"
	"github.com/fszn/contracts-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	store := repository.NewStore(database)

	fileStorage, err := storage.NewLocal(cfg.Files.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init file storage")
	}

	contracts := service.NewContracts(store)
	records := service.NewRecords(store)
	files := service.NewFiles(store, fileStorage, cfg.Files.AllowedExtensions)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contracts, records, files, excel.NewGenerator(), pdf.NewGenerator(), log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
