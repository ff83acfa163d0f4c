package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrQuota sinaliza 401/402/429 do provedor: o laço de batch deve parar,
	// não insistir requisição a requisição
	ErrQuota = errors.New("odds provider quota exceeded")
)

// Client consome o The Odds API (ou o provider-simulator local).
// Todas as chamadas passam pelo rate limiter antes de ir à rede.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	limiter *rate.Limiter
}

func New(baseURL, apiKey string, rps float64) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 2),
	}
}

// ListOdds busca os eventos de um esporte com cotações h2h de uma região
func (c *Client) ListOdds(ctx context.Context, sportKey, region string) ([]Fixture, error) {
	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("regions", region)
	q.Set("markets", "h2h")
	q.Set("oddsFormat", "american")

	var out []Fixture
	path := fmt.Sprintf("/v4/sports/%s/odds/", sportKey)
	if err := c.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListScores busca placares (ao vivo e finais) dos últimos daysFrom dias
func (c *Client) ListScores(ctx context.Context, sportKey string, daysFrom int) ([]Score, error) {
	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("daysFrom", fmt.Sprintf("%d", daysFrom))

	var out []Score
	path := fmt.Sprintf("/v4/sports/%s/scores/", sportKey)
	if err := c.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized,
		res.StatusCode == http.StatusPaymentRequired,
		res.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: http %d", ErrQuota, res.StatusCode)
	case res.StatusCode >= 300:
		return fmt.Errorf("odds provider http %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(dst)
}
