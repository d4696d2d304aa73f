package analytics

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/pkg/useragent"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStorage is a mock implementation of repository.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) FindLinkByURL(ctx context.Context, url string) (*domain.Link, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockStorage) FindLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockStorage) CreateLink(ctx context.Context, link *domain.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockStorage) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Link), args.Error(1)
}

func (m *MockStorage) RecordVisit(ctx context.Context, linkID int64, click *domain.Click) (*domain.Link, error) {
	args := m.Called(ctx, linkID, click)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockStorage) CountClicks(ctx context.Context, linkID int64) (int64, error) {
	args := m.Called(ctx, linkID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error) {
	args := m.Called(ctx, linkID)
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockStorage) UpdateClickDevice(ctx context.Context, clickID int64, deviceType, browser, os string) error {
	args := m.Called(ctx, clickID, deviceType, browser, os)
	return args.Error(0)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type stubParser struct{}

func (stubParser) Parse(userAgent string) *useragent.DeviceInfo {
	if userAgent == "iphone" {
		return &useragent.DeviceInfo{DeviceType: "mobile", Browser: "Mobile Safari", OS: "iOS"}
	}
	return &useragent.DeviceInfo{DeviceType: "desktop", Browser: "Chrome", OS: "Windows"}
}

func testConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     2,
		BufferSize:      10,
		RetryAttempts:   3,
		RetryDelay:      time.Millisecond,
		ShutdownTimeout: 5 * time.Second,
		AttemptTimeout:  time.Second,
	}
}

func TestProcessor_EnrichesClicks(t *testing.T) {
	storage := new(MockStorage)
	storage.On("UpdateClickDevice", mock.Anything, int64(1), "mobile", "Mobile Safari", "iOS").Return(nil).Once()
	storage.On("UpdateClickDevice", mock.Anything, int64(2), "desktop", "Chrome", "Windows").Return(nil).Once()

	p := NewProcessor(storage, stubParser{}, zap.NewNop(), testConfig())
	require.NoError(t, p.Start())

	require.NoError(t, p.SubmitClick(&ClickData{ClickID: 1, UserAgent: "iphone"}))
	require.NoError(t, p.SubmitClick(&ClickData{ClickID: 2, UserAgent: "chrome"}))

	// Stop дожидается обработки очереди
	require.NoError(t, p.Stop())
	storage.AssertExpectations(t)
	assert.Equal(t, int64(2), p.GetStats()["processed"])
}

func TestProcessor_RetriesTransientErrors(t *testing.T) {
	storage := new(MockStorage)
	storage.On("UpdateClickDevice", mock.Anything, int64(7), "desktop", "Chrome", "Windows").
		Return(errors.New("connection reset")).Twice()
	storage.On("UpdateClickDevice", mock.Anything, int64(7), "desktop", "Chrome", "Windows").
		Return(nil).Once()

	p := NewProcessor(storage, stubParser{}, zap.NewNop(), testConfig())
	require.NoError(t, p.Start())
	require.NoError(t, p.SubmitClick(&ClickData{ClickID: 7, UserAgent: "chrome"}))
	require.NoError(t, p.Stop())

	storage.AssertNumberOfCalls(t, "UpdateClickDevice", 3)
	assert.Equal(t, int64(1), p.GetStats()["processed"])
}

func TestProcessor_MissingClickIsNotRetried(t *testing.T) {
	storage := new(MockStorage)
	storage.On("UpdateClickDevice", mock.Anything, int64(9), mock.Anything, mock.Anything, mock.Anything).
		Return(repository.ErrClickNotFound)

	p := NewProcessor(storage, stubParser{}, zap.NewNop(), testConfig())
	require.NoError(t, p.Start())
	require.NoError(t, p.SubmitClick(&ClickData{ClickID: 9}))
	require.NoError(t, p.Stop())

	storage.AssertNumberOfCalls(t, "UpdateClickDevice", 1)
	assert.Equal(t, int64(1), p.GetStats()["failed"])
}

func TestProcessor_Lifecycle(t *testing.T) {
	p := NewProcessor(new(MockStorage), stubParser{}, zap.NewNop(), testConfig())

	assert.ErrorIs(t, p.SubmitClick(&ClickData{ClickID: 1}), ErrNotStarted)
	assert.ErrorIs(t, p.Stop(), ErrNotStarted)

	require.NoError(t, p.Start())
	assert.ErrorIs(t, p.Start(), ErrAlreadyStarted)
	require.NoError(t, p.Stop())

	assert.ErrorIs(t, p.SubmitClick(&ClickData{ClickID: 1}), ErrNotStarted)
	assert.ErrorIs(t, p.Start(), ErrAlreadyStarted)
}

func TestProcessor_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.WorkerCount = 0
	cfg.BufferSize = 1

	p := NewProcessor(new(MockStorage), stubParser{}, zap.NewNop(), cfg)
	require.NoError(t, p.Start())

	require.NoError(t, p.SubmitClick(&ClickData{ClickID: 1}))
	assert.ErrorIs(t, p.SubmitClick(&ClickData{ClickID: 2}), ErrQueueFull)
	assert.Equal(t, int64(1), p.GetStats()["dropped"])
}
