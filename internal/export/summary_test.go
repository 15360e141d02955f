package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

func TestHTTPSummaryClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body summaryRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "REQ-1001", body.Request.RequestID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary":"  High priority laptop replacement, approved.  "}`))
	}))
	defer server.Close()

	summary, err := NewHTTPSummaryClient(server.URL, time.Second).Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "High priority laptop replacement, approved.", summary)
}

func TestHTTPSummaryClientFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed body": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		},
		"empty summary": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"summary":"   "}`))
		},
		"timeout": func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"summary":"late"}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			_, err := NewHTTPSummaryClient(server.URL, 50*time.Millisecond).Summarize(context.Background(), sampleRequest())
			require.ErrorIs(t, err, apperrors.ErrExportFailed)
			assert.True(t, apperrors.IsTransient(err))
		})
	}
}

func TestHTTPSummaryClientUnconfigured(t *testing.T) {
	_, err := NewHTTPSummaryClient("", 0).Summarize(context.Background(), sampleRequest())
	require.ErrorIs(t, err, apperrors.ErrExportFailed)
}
