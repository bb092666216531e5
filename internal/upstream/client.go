package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"delivery-options-backend/config"
	"delivery-options-backend/internal/coordinator"
)

// Client posts channel requests to the delivery options backend.
type Client struct {
	cfg    config.UpstreamConfig
	client *http.Client
	log    *zap.Logger
}

// NewClient creates a client. An invalid proxy URL is logged and ignored.
func NewClient(cfg config.UpstreamConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warn("invalid proxy URL, upstream will not use a proxy", zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: log,
	}
}

func (c *Client) path(ch coordinator.Channel) (string, error) {
	p := c.cfg.Paths
	switch ch {
	case coordinator.ChannelTimeframes:
		return p.Timeframes, nil
	case coordinator.ChannelLocations, coordinator.ChannelMapLocations:
		return p.Locations, nil
	case coordinator.ChannelLocationsInArea:
		return p.LocationsInArea, nil
	case coordinator.ChannelSaveOption:
		return p.SaveOption, nil
	case coordinator.ChannelSaveCost:
		return p.SaveCosts, nil
	case coordinator.ChannelSavePhone:
		return p.SavePhoneNumber, nil
	}
	return "", fmt.Errorf("%w: %s", coordinator.ErrUnknownChannel, ch)
}

// Send posts params form-encoded to the endpoint of ch and returns the body.
func (c *Client) Send(ctx context.Context, ch coordinator.Channel, params url.Values) ([]byte, error) {
	path, err := c.path(ch)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	for k, v := range params {
		form[k] = v
	}
	form.Set("isAjax", "true")

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.Debug("upstream call",
		zap.String("channel", string(ch)),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)),
	)
	return body, nil
}
