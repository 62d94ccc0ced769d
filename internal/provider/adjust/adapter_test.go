package adjust

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/config"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/metric"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
)

func TestAdapter_Sync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("app_token__in"); got != "abc123" {
			t.Errorf("app_token__in = %q", got)
		}
		fmt.Fprint(w, `{"totals":{"installs":17,"clicks":230,"all_revenue":54.3}}`)
	}))
	defer srv.Close()

	a := NewAdapter(config.ProviderEndpoint{BaseURL: srv.URL, TimeoutSeconds: 5})
	metrics, err := a.Sync(context.Background(), "app1", provider.Credentials{
		"api_token": "test-token",
		"app_token": "abc123",
	})
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	byType := map[metric.Type]float64{}
	for _, m := range metrics {
		byType[m.Type] = m.Value
	}
	if byType[metric.Downloads] != 17 {
		t.Errorf("downloads = %v, want 17", byType[metric.Downloads])
	}
	if byType[metric.Clicks] != 230 {
		t.Errorf("clicks = %v, want 230", byType[metric.Clicks])
	}
	if byType[metric.Revenue] != 54.3 {
		t.Errorf("revenue = %v, want 54.3", byType[metric.Revenue])
	}
}

func TestAdapter_Sync_MissingCredentials(t *testing.T) {
	a := NewAdapter(config.ProviderEndpoint{BaseURL: "http://unused", TimeoutSeconds: 5})
	if _, err := a.Sync(context.Background(), "app1", provider.Credentials{}); err == nil {
		t.Fatal("expected error without tokens")
	}
}
