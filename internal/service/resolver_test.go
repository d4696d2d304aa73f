package service

import (
	"Shortly-Backend/internal/analytics"
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository/memory"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingStorage считает обращения к FindLinkByCode
type countingStorage struct {
	*memory.MemStorage
	findByCode atomic.Int32
}

func (s *countingStorage) FindLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
	s.findByCode.Add(1)
	return s.MemStorage.FindLinkByCode(ctx, code)
}

type recordingProcessor struct {
	mu     sync.Mutex
	clicks []*analytics.ClickData
	err    error
}

func (p *recordingProcessor) SubmitClick(clickData *analytics.ClickData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks = append(p.clicks, clickData)
	return p.err
}

func (p *recordingProcessor) Start() error { return nil }
func (p *recordingProcessor) Stop() error { return nil }
func (p *recordingProcessor) GetStats() map[string]interface{} {
	return map[string]interface{}{}
}

func setupResolver(t *testing.T, processor analytics.ProcessorInterface, ttl time.Duration) (*Resolver, *countingStorage, *domain.Link) {
	t.Helper()
	storage := &countingStorage{MemStorage: memory.New()}
	registry := NewRegistry(storage, &seqGenerator{codes: []string{"abc123"}}, &fakeFetcher{title: "Example"}, zap.NewNop())

	link, err := registry.Create(context.Background(), "https://example.com", "Example", "")
	require.NoError(t, err)

	return NewResolver(registry, processor, ttl, zap.NewNop()), storage, link
}

func TestResolver_ResolveIncrementsByOne(t *testing.T) {
	resolver, storage, link := setupResolver(t, nil, time.Minute)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	redirect, err := resolver.Resolve(ctx, "abc123", VisitInfo{
		IPAddress: "192.0.2.1",
		UserAgent: "Mozilla/5.0",
		Referer:   "https://ref.example",
		At:        at,
	})
	require.NoError(t, err)
	assert.True(t, redirect.Found)
	assert.Equal(t, "https://example.com", redirect.URL)
	assert.Equal(t, int64(1), redirect.Visits)

	count, err := storage.CountClicks(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	redirect, err = resolver.Resolve(ctx, "abc123", VisitInfo{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), redirect.Visits)
}

func TestResolver_UnknownCode(t *testing.T) {
	resolver, storage, link := setupResolver(t, nil, time.Minute)
	ctx := context.Background()

	redirect, err := resolver.Resolve(ctx, "nope00", VisitInfo{})
	require.NoError(t, err)
	assert.False(t, redirect.Found)
	assert.Empty(t, redirect.URL)

	count, err := storage.CountClicks(ctx, link.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	got, err := storage.FindLinkByURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Zero(t, got.Visits)
}

func TestResolver_ConcurrentResolves(t *testing.T) {
	resolver, storage, link := setupResolver(t, nil, time.Minute)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			redirect, err := resolver.Resolve(ctx, "abc123", VisitInfo{UserAgent: "load-test"})
			assert.NoError(t, err)
			assert.True(t, redirect.Found)
		}()
	}
	wg.Wait()

	got, err := storage.FindLinkByURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.Visits)

	count, err := storage.CountClicks(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}

func TestResolver_CachesLookups(t *testing.T) {
	resolver, storage, _ := setupResolver(t, nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := resolver.Resolve(ctx, "abc123", VisitInfo{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), storage.findByCode.Load())
}

func TestResolver_WithoutCache(t *testing.T) {
	resolver, storage, _ := setupResolver(t, nil, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := resolver.Resolve(ctx, "abc123", VisitInfo{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), storage.findByCode.Load())
}

func TestResolver_SubmitsClickForEnrichment(t *testing.T) {
	processor := &recordingProcessor{}
	resolver, _, _ := setupResolver(t, processor, time.Minute)

	_, err := resolver.Resolve(context.Background(), "abc123", VisitInfo{UserAgent: "Mozilla/5.0 (iPhone)"})
	require.NoError(t, err)

	require.Len(t, processor.clicks, 1)
	assert.Equal(t, int64(1), processor.clicks[0].ClickID)
	assert.Equal(t, "Mozilla/5.0 (iPhone)", processor.clicks[0].UserAgent)
}

func TestResolver_EnqueueFailureDoesNotFailRedirect(t *testing.T) {
	processor := &recordingProcessor{err: analytics.ErrQueueFull}
	resolver, _, _ := setupResolver(t, processor, time.Minute)

	redirect, err := resolver.Resolve(context.Background(), "abc123", VisitInfo{})
	require.NoError(t, err)
	assert.True(t, redirect.Found)
}
