package providers

import (
	"testing"

	"github.com/kfinlab/finharvest/internal/provider"
)

func TestRegisterAllTo(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	// RSS news should always be registered (no credentials needed).
	rss, err := reg.Get("rssnews")
	if err != nil {
		t.Fatalf("rssnews not registered: %v", err)
	}
	if rss.Info().Name != "rssnews" {
		t.Error("wrong rssnews provider name")
	}

	// MarketNews must always have a provider.
	if name, ok := reg.DefaultProvider(provider.ModelMarketNews); !ok || name == "" {
		t.Error("expected a default MarketNews provider")
	}

	// Credentialed providers register only when their env vars are set.
	if _, err := reg.Get("opendart"); err == nil {
		t.Log("opendart registered (OPENDART_API_KEY is set)")
	} else {
		t.Log("opendart not registered (no OPENDART_API_KEY)")
	}
	if _, err := reg.Get("navernews"); err == nil {
		t.Log("navernews registered (Naver credentials set)")
	} else {
		t.Log("navernews not registered (no Naver credentials)")
	}
}
