package usda

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/recipelens/backend/internal/domain"
)

// DefaultBaseURL is the FoodData Central API root
const DefaultBaseURL = "https://api.nal.usda.gov/fdc"

// ClientConfig holds USDA client settings
type ClientConfig struct {
	APIKey  string
	BaseURL string
	// RequestsPerHour caps outgoing requests; the public API allows 1000 per hour per key
	RequestsPerHour int
	Timeout         time.Duration
	RetryCount      int
}

// Client handles communication with the USDA FoodData Central API
type Client struct {
	http        *resty.Client
	apiKey      string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new USDA API client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerHour <= 0 {
		cfg.RequestsPerHour = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// rate.Limit is requests per second; burst of 10 requests
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerHour)/3600), 10)

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "RecipeLens/1.0").
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// retry transport errors and server-side failures, never 4xx
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:        httpClient,
		apiKey:      cfg.APIKey,
		rateLimiter: limiter,
		logger:      logger,
	}
}

// SearchFoods searches for foods in the USDA database
func (c *Client) SearchFoods(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	c.logger.Debug("usda search", zap.String("query", query))

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var searchResp domain.USDASearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":    query,
			"api_key":  c.apiKey,
			"dataType": "Foundation,SR Legacy,Survey (FNDDS)", // generic ingredients, not branded products
			"pageSize": "10",
		}).
		SetResult(&searchResp).
		Get("/v1/foods/search")
	if err != nil {
		c.logger.Warn("usda search failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}

	if err := checkStatus(resp); err != nil {
		c.logger.Warn("usda search returned error",
			zap.String("query", query),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return nil, err
	}

	if len(searchResp.Foods) == 0 {
		c.logger.Info("usda search found nothing", zap.String("query", query))
		return nil, domain.ErrProductNotFound
	}

	c.logger.Debug("usda search complete", zap.String("query", query), zap.Int("foods", len(searchResp.Foods)))
	return &searchResp, nil
}

// GetFoodDetails retrieves detailed nutrition information for a specific food by FDC ID
func (c *Client) GetFoodDetails(ctx context.Context, fdcID string) (*domain.USDAFood, error) {
	if _, err := strconv.Atoi(fdcID); err != nil {
		return nil, fmt.Errorf("%w: fdc id %q", domain.ErrInvalidRequest, fdcID)
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var food domain.USDAFood
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("fdcId", fdcID).
		SetQueryParam("api_key", c.apiKey).
		SetResult(&food).
		Get("/v1/food/{fdcId}")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return &food, nil
}

// wait blocks until the rate limiter admits a request
func (c *Client) wait(ctx context.Context) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return nil
}

func checkStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusOK:
		return nil
	case resp.StatusCode() == http.StatusNotFound:
		return domain.ErrProductNotFound
	case resp.StatusCode() == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return fmt.Errorf("%w: status %d", domain.ErrUSDAAPIFailure, resp.StatusCode())
	}
}
