package app

import (
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository/gormstore"
	"Shortly-Backend/internal/repository/memory"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenStorage_Memory(t *testing.T) {
	s, err := OpenStorage(&config.Database{Driver: "memory"}, true, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &memory.MemStorage{}, s.Storage)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpenStorage_SQLite(t *testing.T) {
	s, err := OpenStorage(&config.Database{Driver: "sqlite", Path: ":memory:"}, true, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &gormstore.Storage{}, s.Storage)
	require.NoError(t, s.CreateLink(context.Background(), &domain.Link{Code: "abc123", URL: "https://example.com"}))
}

func TestNewRegistry_UnknownStrategy(t *testing.T) {
	cfg := &config.Config{}
	cfg.URLShortener.CodeStrategy = "sequential"

	_, err := NewRegistry(cfg, memory.New(), zap.NewNop())
	assert.Error(t, err)
}
