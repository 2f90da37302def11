// internal/infrastructure/commerce/client.go
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/catalog"
	"github.com/your-org/storefront-bff/internal/infrastructure/store"
)

// Client mirrors cart and wishlist mutations to the upstream commerce
// API and serves reads through a per-caller cache. Each mutation is an
// independent request; racing mutations rely on upstream idempotency,
// and the most recent successful invalidation wins. There is no retry
// and no rollback of local optimistic state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *store.Store
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

// NewClient creates a new commerce API client
func NewClient(cfg *config.Config, cache *store.Store, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: cfg.Upstream.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
		cache:    cache,
		cacheTTL: cfg.Upstream.CacheTTL,
		logger:   logger,
	}
}

func cacheKey(collection string, caller Caller) string {
	return fmt.Sprintf("cache:%s:%s", collection, caller.ownerKey())
}

// do issues a request with the caller's identity attached and decodes
// the upstream envelope. A transport failure, a non-2xx status, or a
// success=false body are all errors.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, caller Caller, out interface{}) (int, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if caller.UserID != "" {
		req.Header.Set("x-user-id", caller.UserID)
	}
	if caller.SessionCookie != nil {
		req.AddCookie(caller.SessionCookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("commerce api request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return 0, fmt.Errorf("decode commerce api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		message := env.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return 0, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return 0, fmt.Errorf("decode commerce api data: %w", err)
		}
	}

	return env.Count, nil
}

// loadCached reads a cached collection view. Cache failures fall
// through to the upstream.
func (c *Client) loadCached(ctx context.Context, key string, dest interface{}) bool {
	found, err := c.cache.Load(ctx, key, dest)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	return found
}

// storeCached writes a collection view back to the cache.
func (c *Client) storeCached(ctx context.Context, key string, value interface{}) {
	if err := c.cache.SaveTTL(ctx, key, value, c.cacheTTL); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

// invalidate marks a collection view stale after a mutation.
func (c *Client) invalidate(ctx context.Context, key string) {
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache invalidation failed")
	}
}

// InvalidateCart marks the caller's cached cart view stale.
func (c *Client) InvalidateCart(ctx context.Context, caller Caller) {
	c.invalidate(ctx, cacheKey("cart", caller))
}

// InvalidateWishlist marks the caller's cached wishlist view stale.
func (c *Client) InvalidateWishlist(ctx context.Context, caller Caller) {
	c.invalidate(ctx, cacheKey("wishlist", caller))
}

// ListCart returns the caller's authoritative cart from the upstream,
// served from cache until a mutation invalidates it.
func (c *Client) ListCart(ctx context.Context, caller Caller) ([]CartEntry, error) {
	key := cacheKey("cart", caller)

	var entries []CartEntry
	if c.loadCached(ctx, key, &entries) {
		return entries, nil
	}

	if _, err := c.do(ctx, http.MethodGet, "/cart", nil, caller, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []CartEntry{}
	}

	c.storeCached(ctx, key, entries)
	return entries, nil
}

// AddCartItem mirrors a cart add to the upstream and invalidates the
// cached cart view.
func (c *Client) AddCartItem(ctx context.Context, caller Caller, productID string, quantity int) error {
	payload := map[string]interface{}{
		"productId": productID,
		"quantity":  quantity,
	}
	if _, err := c.do(ctx, http.MethodPost, "/cart", payload, caller, nil); err != nil {
		return err
	}

	c.invalidate(ctx, cacheKey("cart", caller))
	return nil
}

// RemoveCartItem mirrors a cart removal to the upstream and
// invalidates the cached cart view.
func (c *Client) RemoveCartItem(ctx context.Context, caller Caller, cartID string) error {
	payload := map[string]string{"cartId": cartID}
	if _, err := c.do(ctx, http.MethodDelete, "/cart", payload, caller, nil); err != nil {
		return err
	}

	c.invalidate(ctx, cacheKey("cart", caller))
	return nil
}

// ListWishlist returns the caller's authoritative wishlist.
func (c *Client) ListWishlist(ctx context.Context, caller Caller) ([]WishlistEntry, error) {
	key := cacheKey("wishlist", caller)

	var entries []WishlistEntry
	if c.loadCached(ctx, key, &entries) {
		return entries, nil
	}

	if _, err := c.do(ctx, http.MethodGet, "/wishlist", nil, caller, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []WishlistEntry{}
	}

	c.storeCached(ctx, key, entries)
	return entries, nil
}

// AddWishlistItem mirrors a wishlist add to the upstream.
func (c *Client) AddWishlistItem(ctx context.Context, caller Caller, productID string) error {
	payload := map[string]string{"productId": productID}
	if _, err := c.do(ctx, http.MethodPost, "/wishlist", payload, caller, nil); err != nil {
		return err
	}

	c.invalidate(ctx, cacheKey("wishlist", caller))
	return nil
}

// RemoveWishlistItem mirrors a wishlist removal to the upstream.
func (c *Client) RemoveWishlistItem(ctx context.Context, caller Caller, entryID string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/wishlist/"+entryID, nil, caller, nil); err != nil {
		return err
	}

	c.invalidate(ctx, cacheKey("wishlist", caller))
	return nil
}

// ListProducts returns the catalog, cached under a shared key since
// the catalog is not caller-scoped.
func (c *Client) ListProducts(ctx context.Context, caller Caller) ([]catalog.ProductSnapshot, error) {
	key := "cache:products"

	var products []catalog.ProductSnapshot
	if c.loadCached(ctx, key, &products) {
		return products, nil
	}

	if _, err := c.do(ctx, http.MethodGet, "/products", nil, caller, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []catalog.ProductSnapshot{}
	}

	c.storeCached(ctx, key, products)
	return products, nil
}

// GetProduct resolves a single product from the catalog list. The
// upstream exposes only a list read, so lookups go through it.
func (c *Client) GetProduct(ctx context.Context, caller Caller, productID string) (*catalog.ProductSnapshot, error) {
	products, err := c.ListProducts(ctx, caller)
	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].ID == productID {
			return &products[i], nil
		}
	}

	return nil, &APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("product %s not found", productID)}
}

// ListOrders returns the caller's order history. Orders are cached so
// the staleness window stays bounded for live order-status views.
func (c *Client) ListOrders(ctx context.Context, caller Caller) (json.RawMessage, error) {
	key := cacheKey("orders", caller)

	var orders json.RawMessage
	if c.loadCached(ctx, key, &orders) {
		return orders, nil
	}

	if _, err := c.do(ctx, http.MethodGet, "/order", nil, caller, &orders); err != nil {
		return nil, err
	}

	c.storeCached(ctx, key, orders)
	return orders, nil
}

// CreateOrder forwards an order payload and invalidates the cached
// order history.
func (c *Client) CreateOrder(ctx context.Context, caller Caller, payload json.RawMessage) (json.RawMessage, error) {
	var created json.RawMessage
	if _, err := c.do(ctx, http.MethodPost, "/order", payload, caller, &created); err != nil {
		return nil, err
	}

	c.invalidate(ctx, cacheKey("orders", caller))
	return created, nil
}

// Login forwards credentials to the upstream and returns its response
// data, which carries the credential token and user profile.
func (c *Client) Login(ctx context.Context, caller Caller, payload json.RawMessage) (json.RawMessage, error) {
	var data json.RawMessage
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", payload, caller, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Register forwards a registration payload to the upstream.
func (c *Client) Register(ctx context.Context, caller Caller, payload json.RawMessage) (json.RawMessage, error) {
	var data json.RawMessage
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", payload, caller, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Ping checks upstream reachability for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commerce api unreachable: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("commerce api unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
