package titlefetch

import (
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/domain"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFetcher(retries int, timeout time.Duration) *Fetcher {
	return New(&config.TitleFetch{
		Timeout:   timeout,
		Retries:   retries,
		UserAgent: "Shortly-Test",
	}, nil, zap.NewNop())
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    string
		wantErr error
	}{
		{"simple", "<html><head><title>Example Domain</title></head></html>", "Example Domain", nil},
		{"whitespace collapsed", "<title>\n  Hello \t  World\n</title>", "Hello World", nil},
		{"entities decoded", "<title>Tom &amp; Jerry</title>", "Tom & Jerry", nil},
		{"first title wins", "<title>One</title><svg><title>Two</title></svg>", "One", nil},
		{"no title", "<html><body>nothing</body></html>", "", ErrNoTitle},
		{"empty title", "<title>   </title>", "", ErrNoTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTitle(strings.NewReader(tt.html))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTitle_LongTitleTruncated(t *testing.T) {
	long := strings.Repeat("я", domain.MaxTitleLength+88)

	got, err := ExtractTitle(strings.NewReader("<title>" + long + "</title>"))
	require.NoError(t, err)

	assert.Equal(t, domain.MaxTitleLength, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(long, got))
}

func TestFetcher_FetchTitle(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>Example Domain</title></head></html>"))
	}))
	defer srv.Close()

	title, err := newFetcher(1, time.Second).FetchTitle(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Example Domain", title)
	assert.Equal(t, "Shortly-Test", gotUA)
}

func TestFetcher_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<title>Recovered</title>"))
	}))
	defer srv.Close()

	title, err := newFetcher(1, time.Second).FetchTitle(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Recovered", title)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetcher_StatusError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newFetcher(1, time.Second).FetchTitle(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetcher_NoTitleIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte("<p>plain</p>"))
	}))
	defer srv.Close()

	_, err := newFetcher(3, time.Second).FetchTitle(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNoTitle)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newFetcher(0, 50*time.Millisecond).FetchTitle(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetcher_BodyIsCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>" + strings.Repeat("x", 4096) + "</body><title>Too late</title></html>"))
	}))
	defer srv.Close()

	f := New(&config.TitleFetch{Timeout: time.Second, MaxBodyBytes: 1024}, nil, zap.NewNop())
	_, err := f.FetchTitle(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNoTitle)
}
