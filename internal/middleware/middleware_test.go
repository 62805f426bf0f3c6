package middleware

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	t.Run("propagates incoming ids", func(t *testing.T) {
		var gotCorrelation, gotCausation string
		h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCorrelation = GetCorrelationID(r.Context())
			gotCausation = GetCausationID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderCorrelationID, "123e4567-e89b-12d3-a456-426614174000")
		req.Header.Set(HeaderCausationID, "223e4567-e89b-12d3-a456-426614174000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", gotCorrelation)
		assert.Equal(t, "223e4567-e89b-12d3-a456-426614174000", gotCausation)
		assert.Equal(t, gotCorrelation, rec.Header().Get(HeaderCorrelationID))
	})

	t.Run("generates a uuid when missing", func(t *testing.T) {
		var got string
		h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetCorrelationID(r.Context())
			assert.Empty(t, GetCausationID(r.Context()))
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, got, rec.Header().Get(HeaderCorrelationID))
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := map[string]struct {
		allow      []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		"allow all reflects origin": {allow: []string{"*"}, method: http.MethodGet, origin: "https://hs-rp.com", wantStatus: http.StatusOK, wantOrigin: "https://hs-rp.com"},
		"listed origin":             {allow: []string{"https://hs-rp.com"}, method: http.MethodGet, origin: "https://HS-RP.com", wantStatus: http.StatusOK, wantOrigin: "https://HS-RP.com"},
		"unlisted origin":           {allow: []string{"https://hs-rp.com"}, method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusOK},
		"preflight":                 {allow: []string{"*"}, method: http.MethodOptions, origin: "https://hs-rp.com", wantStatus: http.StatusNoContent, wantOrigin: "https://hs-rp.com"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/cart", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			CORS(tt.allow)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	h := CorrelationID(Recover(log.New(&logs, "", 0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "corr-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "corr-1", body.CorrelationID)
	assert.Contains(t, logs.String(), "panic: boom")
}
