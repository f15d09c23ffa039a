package badge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/internal/platform/config"
	dErrors "visitgate/pkg/domain-errors"
)

func sampleBadge() Badge {
	return Badge{
		VisitorName:  "Asha Rao",
		CompanyName:  "Acme Industries",
		LocationName: "HQ Lobby",
		HostName:     "Ravi Kumar",
		Purpose:      "Vendor meeting",
		VisitingDate: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		QRToken:      "3f2a9c74-67e1-4be2-8f1d-27cf8a1f0a11",
	}
}

func TestHTTPRenderer(t *testing.T) {
	t.Run("posts badge and returns pdf", func(t *testing.T) {
		var got Badge
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4 rendered"))
		}))
		defer srv.Close()

		renderer := NewHTTPRenderer(config.BadgeConfig{RendererURL: srv.URL, RendererTimeout: 2 * time.Second})
		pdf, err := renderer.Render(context.Background(), sampleBadge())
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4 rendered"), pdf)
		assert.Equal(t, "Asha Rao", got.VisitorName)
		assert.Equal(t, "3f2a9c74-67e1-4be2-8f1d-27cf8a1f0a11", got.QRToken)
	})

	t.Run("non-200 is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		renderer := NewHTTPRenderer(config.BadgeConfig{RendererURL: srv.URL, RendererTimeout: 2 * time.Second})
		_, err := renderer.Render(context.Background(), sampleBadge())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("empty body is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		renderer := NewHTTPRenderer(config.BadgeConfig{RendererURL: srv.URL, RendererTimeout: 2 * time.Second})
		_, err := renderer.Render(context.Background(), sampleBadge())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func TestFallbackRenderer(t *testing.T) {
	pdf, err := FallbackRenderer{}.Render(context.Background(), sampleBadge())
	require.NoError(t, err)
	assert.True(t, len(pdf) > 100)
	assert.Contains(t, string(pdf), "%PDF-1.4")
	assert.Contains(t, string(pdf), "Asha Rao")
	assert.Contains(t, string(pdf), "%%EOF")
}
