package zeroex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// WETH is the canonical mainnet wrapped-ether address used as the ETH leg in
// every swap request.
const WETH = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"

// weiPerEth as a float is exact enough for indicative pricing; execution
// would need integer math, which this scanner never does.
const weiPerEth = 1e18

// Client is the price source backed by the 0x swap aggregator. It asks the
// indicative /swap/v1/price endpoint, never /quote, so no allowances or
// commitments are involved.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ domain.PriceSource = (*Client)(nil)

// NewClient creates a 0x API client.
//
// baseURL is the API root, e.g. "https://api.0x.org". apiKey goes into the
// 0x-api-key header on every request.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name identifies the venue in quotes and logs.
func (c *Client) Name() string { return "0x" }

// Quote prices a trade of size ETH-equivalent against the aggregator. Buying
// swaps WETH into the token; selling swaps the token back into WETH (LST
// sizes are near enough 1:1 with ETH for an indicative read). The returned
// price is always ETH per token.
func (c *Client) Quote(ctx context.Context, token domain.Token, size float64, direction domain.Direction) (domain.Quote, error) {
	if size <= 0 {
		return domain.Quote{}, fmt.Errorf("zeroex: size %v: %w", size, domain.ErrInvalidSize)
	}
	if token.Address == "" {
		return domain.Quote{}, fmt.Errorf("zeroex: token %s has no address: %w", token.Symbol, domain.ErrUnknownToken)
	}

	params := url.Values{}
	switch direction {
	case domain.DirectionBuy:
		params.Set("sellToken", WETH)
		params.Set("buyToken", token.Address)
	case domain.DirectionSell:
		params.Set("sellToken", token.Address)
		params.Set("buyToken", WETH)
	default:
		return domain.Quote{}, fmt.Errorf("zeroex: direction %q: %w", direction, domain.ErrInvalidSize)
	}
	params.Set("sellAmount", strconv.FormatFloat(size*weiPerEth, 'f', 0, 64))

	body, err := c.doGet(ctx, "/swap/v1/price?"+params.Encode())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("zeroex: price %s %s: %w", token.Symbol, direction, err)
	}

	var resp priceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		// A body we cannot parse is a venue that cannot answer.
		return domain.Quote{}, fmt.Errorf("zeroex: decode price: %w: %v", domain.ErrNoLiquidity, err)
	}

	rate, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil || rate <= 0 {
		return domain.Quote{}, fmt.Errorf("zeroex: price %q for %s: %w", resp.Price, token.Symbol, domain.ErrNoLiquidity)
	}

	// The API reports buyAmount/sellAmount. Buying gives token per ETH, so
	// invert; selling already reads ETH per token.
	price := rate
	if direction == domain.DirectionBuy {
		price = 1 / rate
	}

	return domain.Quote{
		Venue:     c.Name(),
		Token:     token.Symbol,
		Direction: direction,
		Size:      size,
		Price:     price,
		Source:    "0x_api",
	}, nil
}

// priceResponse is the subset of the /swap/v1/price payload the scanner uses.
type priceResponse struct {
	Price      string `json:"price"`
	BuyAmount  string `json:"buyAmount"`
	SellAmount string `json:"sellAmount"`
}

// errorResponse is the 0x validation error shape; a failed route lookup comes
// back as a 400 with a reason rather than a 5xx.
type errorResponse struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("0x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The scan loop owns cancellation; everything else (timeouts, DNS,
		// refused connections) is the venue being unreachable.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("http request: %w: %v", domain.ErrNoLiquidity, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read response: %w: %v", domain.ErrNoLiquidity, err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, string(body))
	case http.StatusBadRequest, http.StatusNotFound:
		// No route, unsupported pair, or amount too large to fill.
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			return fmt.Errorf("%w: %s", domain.ErrNoLiquidity, apiErr.Reason)
		}
		return fmt.Errorf("%w: HTTP %d", domain.ErrNoLiquidity, statusCode)
	default:
		// 5xx and friends mean the venue cannot answer right now; treat it
		// the same as no route so one flaky aggregator never fails the pass.
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrNoLiquidity, statusCode, string(body))
	}
}
