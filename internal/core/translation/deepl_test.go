package translation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"taste-trip/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeepL(url string, retries int) *DeepLClient {
	return NewDeepLClient(config.DeepLConfig{
		APIKey:     "test-key",
		URL:        url,
		Timeout:    2 * time.Second,
		RetryCount: retries,
		RetryWait:  time.Millisecond,
	})
}

func TestDeepLTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.PostForm.Get("auth_key"))
		assert.Equal(t, "EN", r.PostForm.Get("target_lang"))
		assert.Equal(t, "양파", r.PostForm.Get("text"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translations":[{"detected_source_language":"KO","text":"onion"}]}`))
	}))
	defer srv.Close()

	got, err := newTestDeepL(srv.URL, 0).Translate(context.Background(), "양파", LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, "onion", got)
}

func TestDeepLNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Wrong auth key"}`))
	}))
	defer srv.Close()

	_, err := newTestDeepL(srv.URL, 0).Translate(context.Background(), "양파", LangEnglish)
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusForbidden, perr.StatusCode)
}

func TestDeepLMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translations":[]}`))
	}))
	defer srv.Close()

	_, err := newTestDeepL(srv.URL, 0).Translate(context.Background(), "양파", LangEnglish)
	assert.Error(t, err)
}

func TestDeepLRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"translations":[{"text":"milk"}]}`))
	}))
	defer srv.Close()

	got, err := newTestDeepL(srv.URL, 2).Translate(context.Background(), "우유", LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, "milk", got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestServiceDegradesOnProviderOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewService(newTestDeepL(srv.URL, 0), NewMemoryCache(0), 2)
	assert.Equal(t, "김치", svc.Translate(context.Background(), "김치", LangEnglish))
}
