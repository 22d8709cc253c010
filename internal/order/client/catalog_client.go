package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/supplycore/fulfillment/internal/order/domain"
	"github.com/supplycore/fulfillment/pkg/logger"
)

// CatalogServiceClient talks to the external product catalog over HTTP. The
// fulfillment core only needs price lookups at order-creation time.
type CatalogServiceClient struct {
	baseURL string
	client  *http.Client
}

// NewCatalogServiceClient creates a new catalog client with traced transport
func NewCatalogServiceClient(baseURL string) *CatalogServiceClient {
	logger.Logger.Info().
		Str("base_url", baseURL).
		Msg("Catalog client initialized")

	return &CatalogServiceClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type productEnvelope struct {
	Success bool                   `json:"success"`
	Data    *domain.CatalogProduct `json:"data"`
	Error   string                 `json:"error"`
}

// GetProduct fetches a product by id
func (c *CatalogServiceClient) GetProduct(ctx context.Context, productID uint) (*domain.CatalogProduct, error) {
	url := fmt.Sprintf("%s/api/products/%d", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("product %d not found in catalog", productID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, fmt.Errorf("catalog lookup failed: %s", envelope.Error)
	}

	return envelope.Data, nil
}
