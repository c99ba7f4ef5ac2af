package footballdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/omarshaarawi/survivorbot/internal/config"
	"github.com/omarshaarawi/survivorbot/internal/retry"
	"github.com/tidwall/gjson"
)

const source = "football-data"

type Client struct {
	httpClient *http.Client
	Config     config.FootballData
	Policy     retry.Policy
}

func NewClient(cfg config.FootballData) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		Config:     cfg,
		Policy:     retry.DefaultPolicy(),
	}
}

// Get fetches endpoint and returns the parsed body. Rate limits and server
// errors are retried.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (gjson.Result, error) {
	var result gjson.Result
	err := retry.Do(ctx, source, c.Policy, func(ctx context.Context) error {
		var err error
		result, err = c.get(ctx, endpoint, params)
		return err
	})
	return result, err
}

func (c *Client) get(ctx context.Context, endpoint string, params map[string]string) (gjson.Result, error) {
	url := fmt.Sprintf("%s%s", strings.TrimRight(c.Config.BaseURL, "/"), endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("error creating request: %w", err)
	}

	q := req.URL.Query()
	for key, value := range params {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("X-Auth-Token", c.Config.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, &retry.StatusError{Code: resp.StatusCode, Message: snippet(body)}
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("error decoding response: invalid JSON from %s", endpoint)
	}

	return gjson.ParseBytes(body), nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
