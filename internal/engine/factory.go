package engine

import (
	"fmt"
	"net/http"
	"time"

	"agenthub/internal/apperr"
	"agenthub/internal/catalog"
	"agenthub/internal/config"
	"agenthub/internal/models"
	"agenthub/internal/tools"

	"golang.org/x/time/rate"
)

// ProviderFactory builds provider-backed conversation engines. Model and tool
// set are resolved once at build time; unknown tool names are silently
// dropped, an unresolvable model fails with ConfigurationError.
type ProviderFactory struct {
	registry  *tools.Registry
	store     CheckpointStore
	endpoints map[string]config.ProviderEndpoint
	rateLimit float64
}

// NewProviderFactory creates a factory bound to a tool registry, a checkpoint
// store and the configured provider endpoints.
func NewProviderFactory(registry *tools.Registry, store CheckpointStore, cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		registry:  registry,
		store:     store,
		endpoints: cfg.Providers,
		rateLimit: cfg.ProviderRateLimit,
	}
}

// Build constructs an engine from an agent configuration.
func (f *ProviderFactory) Build(cfg *models.AgentConfig) (Engine, error) {
	provider := cfg.ModelProvider
	if provider == "" {
		provider = catalog.DefaultProvider
	}

	if !catalog.ModelAllowed(provider, cfg.Model) {
		return nil, apperr.Configuration(
			fmt.Sprintf("model %q is not available for provider %q", cfg.Model, provider), nil)
	}

	endpoint, ok := f.endpoints[provider]
	if !ok || endpoint.BaseURL == "" {
		return nil, apperr.Configuration(
			fmt.Sprintf("no endpoint configured for provider %q", provider), nil)
	}

	limit := f.rateLimit
	if limit <= 0 {
		limit = 5
	}

	temperature := float64(catalog.DefaultTemperature)
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &conversationEngine{
		model:       cfg.Model,
		temperature: temperature,
		tools:       f.registry.Resolve(cfg.Tools),
		registry:    f.registry,
		store:       f.store,
		baseURL:     endpoint.BaseURL,
		apiKey:      endpoint.APIKey,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(limit), int(limit)*2),
	}, nil
}
