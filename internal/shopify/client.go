package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/config"
)

type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Shopify GraphQL client
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger) *Client {
	// Normalize shop domain - remove https://, http://, and trailing slashes
	shopDomain := cfg.ShopDomain
	shopDomain = strings.TrimPrefix(shopDomain, "https://")
	shopDomain = strings.TrimPrefix(shopDomain, "http://")
	shopDomain = strings.TrimSuffix(shopDomain, "/")

	return NewClientWithEndpoint(
		fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, cfg.APIVersion),
		cfg.AccessToken,
		&http.Client{Timeout: 30 * time.Second},
		logger,
	)
}

// NewClientWithEndpoint creates a client against an explicit GraphQL URL (tests, proxies).
func NewClientWithEndpoint(endpoint, accessToken string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// UserError is the mutation-level error shape returned in userErrors
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// Execute executes a GraphQL query/mutation
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	reqBody := GraphQLRequest{
		Query:     query,
		Variables: variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Shopify GraphQL call",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var graphQLResp GraphQLResponse
	if err := json.Unmarshal(body, &graphQLResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	if len(graphQLResp.Errors) > 0 {
		errorMessages := make([]string, len(graphQLResp.Errors))
		for i, err := range graphQLResp.Errors {
			errorMessages[i] = err.Message
		}
		return nil, fmt.Errorf("graphQL errors: %s", strings.Join(errorMessages, "; "))
	}

	return &graphQLResp, nil
}

// OrderGID builds the global id for a numeric or already-global order id.
func OrderGID(id string) string {
	return toGID("Order", id)
}

// ProductGID builds the global id for a numeric or already-global product id.
func ProductGID(id string) string {
	return toGID("Product", id)
}

// FulfillmentOrderGID builds the global id for a fulfillment order.
func FulfillmentOrderGID(id string) string {
	return toGID("FulfillmentOrder", id)
}

// FulfillmentOrderLineItemGID builds the global id for a fulfillment order line item.
func FulfillmentOrderLineItemGID(id string) string {
	return toGID("FulfillmentOrderLineItem", id)
}

func toGID(resource, id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return fmt.Sprintf("gid://shopify/%s/%s", resource, id)
}

// LegacyID strips the gid://shopify/<Resource>/ prefix, leaving the numeric id.
func LegacyID(gid string) string {
	if i := strings.LastIndex(gid, "/"); i >= 0 && strings.HasPrefix(gid, "gid://") {
		id := gid[i+1:]
		// gids may carry query params, e.g. ?inventory_item_id=...
		if q := strings.IndexByte(id, '?'); q >= 0 {
			id = id[:q]
		}
		return id
	}
	return gid
}
