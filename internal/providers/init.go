// Package providers initializes and registers all concrete data providers
// with the global provider registry.
package providers

import (
	"os"

	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/internal/providers/navernews"
	"github.com/kfinlab/finharvest/internal/providers/opendart"
	"github.com/kfinlab/finharvest/internal/providers/rssnews"
)

// RegisterAll creates and registers all available providers with the
// global registry. Providers that require API keys are only registered
// when their environment variables are set.
func RegisterAll() error {
	return RegisterAllTo(provider.Global())
}

// RegisterAllTo registers all available providers to the given registry.
func RegisterAllTo(reg *provider.Registry) error {
	// --- RSS news (free, no credentials) ---
	rss := rssnews.New()
	if err := rss.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(rss); err != nil {
		return err
	}

	// --- OpenDART (requires API key) ---
	if apiKey := os.Getenv("OPENDART_API_KEY"); apiKey != "" {
		dart := opendart.New()
		if err := dart.Init(map[string]string{"api_key": apiKey}); err != nil {
			return err
		}
		if err := reg.Register(dart); err != nil {
			return err
		}
	}

	// --- Naver search (requires client ID + secret) ---
	id := os.Getenv("NAVER_CLIENT_ID")
	secret := os.Getenv("NAVER_CLIENT_SECRET")
	if id != "" && secret != "" {
		nv := navernews.New()
		if err := nv.Init(map[string]string{"client_id": id, "client_secret": secret}); err != nil {
			return err
		}
		if err := reg.Register(nv); err != nil {
			return err
		}
	}

	return nil
}
