// Package shopify is an OrderSource over the Shopify Admin REST API. It uses a
// pre-issued Admin API access token; obtaining one is outside this service.
package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/source"
)

const (
	defaultAPIVersion = "2024-10"
	defaultPageSize   = 250
	accessTokenHeader = "X-Shopify-Access-Token"
)

type Config struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	PageSize    int
	// BaseURL overrides https://<ShopDomain>; used by tests.
	BaseURL string
}

type Client struct {
	baseURL    string
	apiVersion string
	token      string
	pageSize   int
	http       *http.Client
}

func New(cfg *Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("shopify access token is empty")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		if strings.TrimSpace(cfg.ShopDomain) == "" {
			return nil, errors.New("shopify shop domain is empty")
		}
		baseURL = "https://" + strings.TrimSpace(cfg.ShopDomain)
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiVersion: version,
		token:      cfg.AccessToken,
		pageSize:   pageSize,
		http:       &http.Client{Timeout: timeout},
	}, nil
}

type ordersResponse struct {
	Orders []shopifyOrder `json:"orders"`
}

type shopifyOrder struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	LineItems []shopifyLineItem `json:"line_items"`
}

type shopifyLineItem struct {
	ID                  int64  `json:"id"`
	VariantID           *int64 `json:"variant_id"`
	Title               string `json:"title"`
	VariantTitle        string `json:"variant_title"`
	SKU                 string `json:"sku"`
	FulfillableQuantity int    `json:"fulfillable_quantity"`
}

// FetchUnfulfilled pages through open orders that are not fully fulfilled.
func (c *Client) FetchUnfulfilled(ctx context.Context) (*source.Snapshot, error) {
	params := url.Values{}
	params.Set("status", "open")
	params.Set("fulfillment_status", "unfulfilled")
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("fields", "id,name,created_at,line_items")

	next := fmt.Sprintf("%s/admin/api/%s/orders.json?%s", c.baseURL, c.apiVersion, params.Encode())

	var orders []source.Order
	for next != "" {
		page, link, err := c.getPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, o := range page.Orders {
			orders = append(orders, mapOrder(o))
		}
		next = nextPageURL(link)
	}

	return &source.Snapshot{Orders: source.Normalize(orders)}, nil
}

func (c *Client) getPage(ctx context.Context, endpoint string) (ordersResponse, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ordersResponse{}, "", err
	}
	req.Header.Set(accessTokenHeader, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ordersResponse{}, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ordersResponse{}, "", fmt.Errorf("read orders page: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ordersResponse{}, "", fmt.Errorf("shopify api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed ordersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ordersResponse{}, "", fmt.Errorf("decode orders: %w", err)
	}
	return parsed, resp.Header.Get("Link"), nil
}

func mapOrder(o shopifyOrder) source.Order {
	out := source.Order{
		OrderID:   strconv.FormatInt(o.ID, 10),
		OrderName: o.Name,
		OrderDate: o.CreatedAt.UTC(),
	}
	for _, li := range o.LineItems {
		if li.VariantID == nil {
			continue // custom line items have no variant to produce
		}
		out.LineItems = append(out.LineItems, source.LineItem{
			LineItemID:          strconv.FormatInt(li.ID, 10),
			VariantID:           strconv.FormatInt(*li.VariantID, 10),
			VariantTitle:        li.VariantTitle,
			ProductTitle:        li.Title,
			SKU:                 li.SKU,
			FulfillableQuantity: li.FulfillableQuantity,
		})
	}
	return out
}

// nextPageURL extracts the rel="next" target from a Link header.
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		isNext := false
		for _, s := range segs[1:] {
			if strings.TrimSpace(s) == `rel="next"` {
				isNext = true
			}
		}
		if !isNext {
			continue
		}
		target := strings.TrimSpace(segs[0])
		return strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
	}
	return ""
}
