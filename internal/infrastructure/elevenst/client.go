package elevenst

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/dietcoach/backend/internal/pkg/logger"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the 11st OpenAPI endpoint
const DefaultBaseURL = "http://openapi.11st.co.kr/openapi/OpenApiService.tmall"

// Config holds the 11st client settings
type Config struct {
	BaseURL           string
	APIKey            string
	ConnectTimeout    time.Duration
	ReadTimeout       time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client searches the 11st product catalog
type Client struct {
	http        *resty.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new 11st client. Requests are never retried.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 3 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxIdleConnsPerHost: 10,
	}

	httpClient := resty.New().
		SetTransport(transport).
		SetTimeout(cfg.ReadTimeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/xml").
		SetHeader("User-Agent", "DietCoach/1.0")

	return &Client{
		http:        httpClient,
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		rateLimiter: rate.NewLimiter(limit, burst),
		logger:      log,
	}
}

// SearchProducts runs one ProductSearch call. An empty document yields an empty list.
func (c *Client) SearchProducts(ctx context.Context, keyword string, page, size int, categoryHint string) ([]domain.CandidateProduct, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, domain.ErrMarketplaceNotConfigured
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrMarketplaceFailure, err)
	}

	params := map[string]string{
		"key":      c.apiKey,
		"apiCode":  "ProductSearch",
		"keyword":  keyword,
		"pageSize": strconv.Itoa(size),
		"pageNum":  strconv.Itoa(page),
	}
	if categoryHint != "" {
		params["dispCtgrNo"] = categoryHint
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketplaceFailure, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("[SHOPPING_CLIENT] 11st error status",
			logger.Trace(ctx),
			zap.Int("status", resp.StatusCode()),
			zap.String("keyword", keyword),
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrMarketplaceFailure, resp.StatusCode())
	}

	products, err := ParseSearchResponse(resp.Body())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("[SHOPPING_CLIENT] 11st search",
		logger.Trace(ctx),
		zap.String("keyword", keyword),
		zap.String("category", categoryHint),
		zap.Int("page", page),
		zap.Int("count", len(products)),
		zap.Int64("took_ms", time.Since(start).Milliseconds()),
	)
	return products, nil
}
