package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func Test_CORS(t *testing.T) {
	allowed := []string{"http://localhost:3000", "http://localhost:1234"}
	testCases := []struct {
		name          string
		method        string
		origin        string
		preflight     bool
		expectedCode  int
		expectedAllow string
	}{
		{
			name:         "no origin passes",
			method:       http.MethodGet,
			expectedCode: http.StatusOK,
		},
		{
			name:          "allowed origin passes",
			method:        http.MethodGet,
			origin:        "http://localhost:1234",
			expectedCode:  http.StatusOK,
			expectedAllow: "http://localhost:1234",
		},
		{
			name:         "unknown origin rejected",
			method:       http.MethodGet,
			origin:       "http://evil.example",
			expectedCode: http.StatusForbidden,
		},
		{
			name:          "preflight answered",
			method:        http.MethodOptions,
			origin:        "http://localhost:3000",
			preflight:     true,
			expectedCode:  http.StatusNoContent,
			expectedAllow: "http://localhost:3000",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := CORS(allowed, discardLogger())(okHandler)
			req := httptest.NewRequest(tc.method, "/products", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			}
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.Equal(t, tc.expectedAllow, rr.Header().Get("Access-Control-Allow-Origin"))
			if tc.expectedCode == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"Origin not allowed"}`, rr.Body.String())
			}
			if tc.preflight {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
			}
		})
	}
}

func Test_Recoverer(t *testing.T) {
	// given
	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	})
	handler := Recoverer(discardLogger())(panicking)
	rr := httptest.NewRecorder()

	// when
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
}

func Test_RequestIDInjector(t *testing.T) {
	testCases := []struct {
		name        string
		withChiID   bool
		expectEqual bool
	}{
		{name: "chi request id reused", withChiID: true, expectEqual: true},
		{name: "generated when missing", withChiID: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var seen, chiID string
			inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen, _ = GetRequestID(r.Context())
				chiID = middleware.GetReqID(r.Context())
			})
			var handler http.Handler = RequestIDInjector(inner)
			if tc.withChiID {
				handler = middleware.RequestID(handler)
			}

			// when
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			// then
			require.NotEmpty(t, seen)
			if tc.expectEqual {
				assert.Equal(t, chiID, seen)
			}
		})
	}
}

func Test_DecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	testCases := []struct {
		name        string
		body        string
		expected    payload
		expectError bool
	}{
		{name: "object", body: `{"name":"Pad"}`, expected: payload{Name: "Pad"}},
		{name: "empty body", body: ``, expected: payload{}},
		{name: "malformed", body: `{"name":`, expectError: true},
		{name: "wrong type", body: `{"name":5}`, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var got payload

			// when
			err := DecodeJSON(req, &got)

			// then
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func Test_RespondJSON_NilPayload(t *testing.T) {
	// given
	rr := httptest.NewRecorder()

	// when
	RespondJSON(rr, discardLogger(), http.StatusNoContent, nil)

	// then
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}
