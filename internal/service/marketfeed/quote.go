package marketfeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	xhttp "asdts/pkg/http"
)

// QuoteFetcher pulls last-price snapshots over the provider's REST
// API. Used once at startup to seed marks before the first WS print
// arrives.
type QuoteFetcher struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// NewQuoteFetcher derives the REST base URL from the WS URL when one
// is not configured separately.
func NewQuoteFetcher(wsURL, apiKey string) *QuoteFetcher {
	base := strings.Replace(wsURL, "wss://", "https://", 1)
	base = strings.Replace(base, "ws://", "http://", 1)
	base = strings.TrimSuffix(base, "/ws")
	return &QuoteFetcher{
		baseURL: base,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
	}
}

type quoteResponse struct {
	Current float64 `json:"c"`
}

// Quote fetches the current price for symbol. Returns an error when
// the provider has no price.
func (q *QuoteFetcher) Quote(ctx context.Context, symbol string) (float64, error) {
	var resp quoteResponse
	err := q.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: "GET",
		URL:    q.baseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {q.apiKey},
		},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("quote %s: %w", symbol, err)
	}
	if resp.Current <= 0 {
		return 0, fmt.Errorf("quote %s: no price", symbol)
	}
	return resp.Current, nil
}
