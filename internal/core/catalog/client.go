package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client is the HTTP implementation of Searcher.
type Client struct {
	cfg    *config.Config
	client *resty.Client
}

// NewClient creates a catalog search client.
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Catalog.BaseURL).
		SetTimeout(cfg.Catalog.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		cfg:    cfg,
		client: client,
	}
}

// Search queries the catalog for the given normalized text.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/v1/foods/search")

	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("catalog search returned non-OK status",
			zap.Int("status", resp.StatusCode()),
			zap.String("query", query),
		)
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode())
	}

	var result struct {
		Items []Item `json:"items"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}

	return result.Items, nil
}
