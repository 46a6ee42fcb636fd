// Package rest implements the remote order gateway over the backend's REST
// API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fahimhasan4438765/techzu-pos-system/config"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/gateway"
	"github.com/fahimhasan4438765/techzu-pos-system/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultStock is assumed for catalog entries whose stock the backend does
// not report.
const defaultStock = 100

type Client struct {
	baseURL string
	http    *http.Client
	tokens  gateway.TokenSource
	logger  *zap.Logger
}

func NewClient(cfg *config.APIConfig, tokens gateway.TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// catalogProduct is the wire shape of GET /products entries.
type catalogProduct struct {
	ID         string  `json:"id"`
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	PriceCents int64   `json:"price_cents"`
	Stock      *int64  `json:"stock"`
	Category   string  `json:"category"`
	TaxRate    float64 `json:"tax_rate"`
	ImageURL   *string `json:"image_url"`
}

func (c *Client) FetchCatalog(ctx context.Context) ([]model.Product, error) {
	var remote []catalogProduct
	if err := c.do(ctx, http.MethodGet, "/products", nil, &remote); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	products := make([]model.Product, 0, len(remote))
	for _, rp := range remote {
		p := model.Product{
			ID:          rp.ID,
			Name:        rp.Name,
			PriceCents:  rp.PriceCents,
			Stock:       defaultStock,
			TaxRate:     rp.TaxRate,
			ImageURL:    rp.ImageURL,
			LastUpdated: now,
		}
		if rp.Stock != nil {
			p.Stock = *rp.Stock
		}
		if rp.Category != "" {
			category := rp.Category
			p.Category = &category
		}
		if rp.SKU != "" {
			// The backend exposes the scannable code as the SKU.
			barcode := rp.SKU
			p.Barcode = &barcode
		}
		products = append(products, p)
	}
	return products, nil
}

func (c *Client) CreateOrder(ctx context.Context, req *gateway.CreateOrderRequest) (*gateway.CreateOrderResponse, error) {
	var resp gateway.CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SyncOrders(ctx context.Context, req *gateway.SyncOrdersRequest) (*gateway.SyncOrdersResponse, error) {
	var resp gateway.SyncOrdersResponse
	if err := c.do(ctx, http.MethodPost, "/sync/orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	token, err := c.tokens.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, gateway.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classify(method, path, resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) classify(method, path string, resp *http.Response) error {
	var remote struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	json.Unmarshal(raw, &remote)
	if remote.Error == "" {
		remote.Error = http.StatusText(resp.StatusCode)
	}

	c.logger.Debug("remote request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("error", remote.Error),
	)

	var kind error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = gateway.ErrAuth
	case resp.StatusCode == http.StatusNotFound:
		kind = gateway.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		kind = gateway.ErrValidation
	default:
		// 5xx and anything unexpected is treated as transient.
		kind = gateway.ErrNetwork
	}
	return fmt.Errorf("%s %s: %d %s: %w", method, path, resp.StatusCode, remote.Error, kind)
}
