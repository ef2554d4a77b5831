package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"svc/internal/errors"
	"svc/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestChain(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := logging.Wrap(zap.New(core))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ok", func(w http.ResponseWriter, r *http.Request) {
		id, ok := logging.RequestID(r.Context())
		assert.True(t, ok)
		assert.NotEmpty(t, id)
		w.WriteHeader(http.StatusTeapot)
	})
	mux.HandleFunc("GET /panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Chain(mux, Recover(logger), Logger(logger), RequestID)

	t.Run("RequestID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

		entry := logs.TakeAll()
		require.Len(t, entry, 1)
		assert.Equal(t, "request completed", entry[0].Message)
		assert.Equal(t, rec.Header().Get(RequestIDHeader), entry[0].ContextMap()["request_id"])
		assert.EqualValues(t, http.StatusTeapot, entry[0].ContextMap()["status"])
		assert.Equal(t, zap.WarnLevel, entry[0].Level)
	})

	t.Run("ReusesIncomingID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(RequestIDHeader, "given")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "given", rec.Header().Get(RequestIDHeader))
		logs.TakeAll()
	})

	t.Run("ReplacesMalformedID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(RequestIDHeader, "bad id\n")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		got := rec.Header().Get(RequestIDHeader)
		assert.NotEqual(t, "bad id\n", got)
		assert.Len(t, got, 36)
		logs.TakeAll()
	})

	t.Run("Recover", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())

		var body errors.Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, errors.ErrorTypeInternal, body.Type)

		completed := logs.FilterMessage("request completed").All()
		require.Len(t, completed, 1)
		assert.Equal(t, zap.ErrorLevel, completed[0].Level)
	})
}

func TestValidRequestID(t *testing.T) {
	assert.True(t, validRequestID("abc-123_x.y"))
	assert.False(t, validRequestID(""))
	assert.False(t, validRequestID("has space"))
	assert.False(t, validRequestID(string(make([]byte, maxRequestIDLen+1))))
}

func TestLimitBody(t *testing.T) {
	h := LimitBody(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("1234")))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
