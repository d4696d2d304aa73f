// Package codegen генерирует короткие коды для ссылок.
package codegen

import (
	"Shortly-Backend/internal/config"
	"Shortly-Backend/pkg/random"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

const (
	StrategyRandom    = "random"
	StrategySnowflake = "snowflake"
)

// Generator выдает новый кандидат в короткие коды.
// Уникальность окончательно проверяет хранилище.
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator выдает случайные base62 коды фиксированной длины
type RandomGenerator struct {
	length int
}

func NewRandom(length int) *RandomGenerator {
	return &RandomGenerator{length: length}
}

func (g *RandomGenerator) Generate() (string, error) {
	code, err := random.NewRandomString(g.length)
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}
	return code, nil
}

// SnowflakeGenerator кодирует snowflake ID в base58.
// Коды одного узла не повторяются, поэтому повторных попыток почти не бывает.
type SnowflakeGenerator struct {
	node *snowflake.Node
}

func NewSnowflake(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeGenerator{node: node}, nil
}

func (g *SnowflakeGenerator) Generate() (string, error) {
	return g.node.Generate().Base58(), nil
}

// New выбирает стратегию по конфигурации
func New(cfg *config.URLShortener) (Generator, error) {
	switch cfg.CodeStrategy {
	case StrategyRandom, "":
		return NewRandom(cfg.CodeLength), nil
	case StrategySnowflake:
		return NewSnowflake(cfg.SnowflakeNode)
	default:
		return nil, fmt.Errorf("unknown code strategy %q", cfg.CodeStrategy)
	}
}
