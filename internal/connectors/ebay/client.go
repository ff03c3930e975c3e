package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

var _ driven.Marketplace = (*Client)(nil)

// tokenExpiryMargin refreshes the application token this long before
// the server-reported expiry.
const tokenExpiryMargin = 60 * time.Second

// browseScope is the OAuth scope for Browse API searches.
const browseScope = "https://api.ebay.com/oauth/api_scope"

// Client implements the marketplace port over the eBay Browse API.
// The client-credentials application token is cached and refreshed
// shortly before expiry.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	apiBase    string
	tokenURL   string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	now func() time.Time
}

// NewClient creates an eBay Browse API client.
func NewClient(config Config) (*Client, error) {
	config = config.normalise()
	if !config.Configured() {
		return nil, fmt.Errorf("ebay client: %w: client ID and secret required", domain.ErrNotConfigured)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		// Well below the Browse API application quota.
		limiter:  rate.NewLimiter(rate.Limit(5), 10),
		apiBase:  config.apiBase(),
		tokenURL: config.tokenURL(),
		now:      time.Now,
	}, nil
}

// Search executes an item summary search and maps the results.
func (c *Client) Search(ctx context.Context, query *domain.SearchQuery) ([]domain.Listing, error) {
	if query == nil || !query.Valid() {
		return nil, fmt.Errorf("ebay search: %w", domain.ErrNoSearchQuery)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.apiBase + "/item_summary/search?" + searchValues(query).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.config.MarketplaceID)
	req.Header.Set("Accept", "application/json")

	logger.Debug("ebay search: q=%q filters=%v", query.Keywords, query.Filters)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 500)}
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	listings := make([]domain.Listing, 0, len(result.ItemSummaries))
	for _, item := range result.ItemSummaries {
		listings = append(listings, domain.Listing{
			ItemID:    item.ItemID,
			Title:     item.Title,
			WebURL:    item.ItemWebURL,
			Price:     item.Price.Value,
			Currency:  item.Price.Currency,
			Condition: item.Condition,
		})
	}
	logger.Info("ebay search returned %d listing(s) of %d total", len(listings), result.Total)
	return listings, nil
}

// searchValues maps a planned query onto Browse API parameters.
func searchValues(query *domain.SearchQuery) url.Values {
	values := url.Values{}
	values.Set("q", query.Keywords)
	if len(query.Filters) > 0 {
		values.Set("filter", strings.Join(query.Filters, ","))
	}
	if len(query.Sort) > 0 {
		values.Set("sort", strings.Join(query.Sort, ","))
	}
	if len(query.CategoryIDs) > 0 {
		values.Set("category_ids", strings.Join(query.CategoryIDs, ","))
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	values.Set("limit", strconv.Itoa(limit))
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}
	return values
}

// token returns a valid application token, minting a new one when the
// cached token is missing or close to expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry.Add(-tokenExpiryMargin)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", browseScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(c.config.ClientID + ":" + c.config.ClientSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request application token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 500)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	logger.Debug("ebay application token refreshed, expires in %ds", token.ExpiresIn)
	return c.accessToken, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type searchResponse struct {
	Total         int           `json:"total"`
	ItemSummaries []itemSummary `json:"itemSummaries"`
}

type itemSummary struct {
	ItemID     string `json:"itemId"`
	Title      string `json:"title"`
	ItemWebURL string `json:"itemWebUrl"`
	Condition  string `json:"condition"`
	Price      struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
}
