// Package app собирает зависимости, общие для сервера и CLI.
package app

import (
	"Shortly-Backend/internal/codegen"
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/database"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/repository/gormstore"
	"Shortly-Backend/internal/repository/memory"
	"Shortly-Backend/internal/service"
	"Shortly-Backend/internal/titlefetch"
	"fmt"

	"go.uber.org/zap"
)

// Storage хранилище и функция его закрытия
type Storage struct {
	repository.Storage
	Close func() error
}

// OpenStorage открывает хранилище по database.driver и при необходимости выполняет миграции
func OpenStorage(cfg *config.Database, migrate bool, log *zap.Logger) (*Storage, error) {
	if cfg.Driver == "memory" {
		log.Warn("using in-memory storage, data will be lost on restart")
		return &Storage{Storage: memory.New(), Close: func() error { return nil }}, nil
	}

	db, err := database.NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := database.AutoMigrate(db, log); err != nil {
			_ = database.Close(db, log)
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	return &Storage{
		Storage: gormstore.New(db, log),
		Close:   func() error { return database.Close(db, log) },
	}, nil
}

// NewRegistry создает реестр ссылок с генератором кодов и загрузчиком заголовков из конфигурации
func NewRegistry(cfg *config.Config, storage repository.Storage, log *zap.Logger) (*service.Registry, error) {
	generator, err := codegen.New(&cfg.URLShortener)
	if err != nil {
		return nil, err
	}

	fetcher := titlefetch.New(&cfg.TitleFetch, nil, log)

	return service.NewRegistry(storage, generator, fetcher, log), nil
}
