package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/mangaswap/mangaswap-backend/internal/config"
	"github.com/mangaswap/mangaswap-backend/internal/db"
	"github.com/mangaswap/mangaswap-backend/internal/model"
	"github.com/mangaswap/mangaswap-backend/internal/server"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load error", zap.Error(err))
	}

	srv, err := server.New(context.Background(), cfg, nil, logger)
	if err != nil {
		logger.Fatal("server init error", zap.Error(err))
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		errCh <- srv.Start(addr)
	}()

	// connect the database in the background so /healthz answers while a
	// slow Cloud SQL socket comes up
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			logger.Error("db connect error", zap.Error(err))
			return
		}
		if err := conn.AutoMigrate(
			&model.User{},
			&model.Listing{},
			&model.ExchangeRequest{},
			&model.ChatChannel{},
			&model.Message{},
		); err != nil {
			logger.Error("auto migrate error", zap.Error(err))
		}
		srv.SetDB(conn)
		logger.Info("database ready")
	}()

	if err := <-errCh; err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
