package lifi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	clierr "github.com/nvalverde/bridgescout/internal/errors"
	"github.com/nvalverde/bridgescout/internal/httpx"
	"github.com/nvalverde/bridgescout/internal/model"
	"github.com/nvalverde/bridgescout/internal/registry"
)

type Client struct {
	http    *httpx.Client
	baseURL string
	apiKey  string
	now     func() time.Time
}

func New(httpClient *httpx.Client, apiKey string) *Client {
	return &Client{http: httpClient, baseURL: registry.LiFiBaseURL, apiKey: apiKey, now: time.Now}
}

// SetBaseURL points the client at a different endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:        "lifi",
		Type:        "route-aggregator",
		RequiresKey: false,
		Capabilities: []string{
			"token.resolve",
			"routes.quote",
			"routes.compare",
			"bridges.list",
		},
	}
}

func (c *Client) headers() map[string]string {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil
	}
	return map[string]string{"x-lifi-api-key": c.apiKey}
}

type tokenResponse struct {
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
	Symbol   string `json:"symbol"`
	ChainID  int64  `json:"chainId"`
	PriceUSD string `json:"priceUSD"`
}

// TokenLookup resolves a symbol on a chain to its on-chain address, decimal
// precision and spot price as reported by the route provider.
func (c *Client) TokenLookup(ctx context.Context, chainID, symbol string) (model.ResolvedToken, error) {
	vals := url.Values{}
	vals.Set("chain", chainID)
	vals.Set("token", symbol)

	var resp tokenResponse
	if _, err := c.http.GetJSON(ctx, c.baseURL+"/token?"+vals.Encode(), c.headers(), &resp); err != nil {
		return model.ResolvedToken{}, err
	}
	if strings.TrimSpace(resp.Address) == "" {
		return model.ResolvedToken{}, clierr.New(clierr.CodeUnavailable, "lifi token lookup returned no address")
	}

	out := model.ResolvedToken{
		Symbol:   strings.ToUpper(strings.TrimSpace(resp.Symbol)),
		Address:  resp.Address,
		Decimals: resp.Decimals,
		ChainID:  chainID,
		PriceUSD: resp.PriceUSD,
		Source:   "lifi",
	}
	if out.Symbol == "" {
		out.Symbol = strings.ToUpper(strings.TrimSpace(symbol))
	}
	if strings.TrimSpace(out.PriceUSD) == "" {
		out.PriceUSD = "unknown"
	}
	return out, nil
}

// FeeItem is a single fee line of a route, in USD. Name carries the fee
// issuer and drives the protocol-vs-aggregator decomposition downstream.
type FeeItem struct {
	Name      string
	AmountUSD float64
}

// Route is one candidate transfer route in provider ranking order.
type Route struct {
	BridgeKey  string
	BridgeName string
	AmountOut  string
	GasCostUSD float64
	FeeItems   []FeeItem
	DurationS  int64
}

type RoutesRequest struct {
	FromChainID      string
	ToChainID        string
	FromTokenAddress string
	ToTokenAddress   string
	// FromAmount is the atomic amount, forwarded verbatim.
	FromAmount string
	MaxResults int
}

type routesRequestBody struct {
	FromChainID      string            `json:"fromChainId"`
	ToChainID        string            `json:"toChainId"`
	FromTokenAddress string            `json:"fromTokenAddress"`
	ToTokenAddress   string            `json:"toTokenAddress"`
	FromAmount       string            `json:"fromAmount"`
	Options          routesRequestOpts `json:"options"`
}

type routesRequestOpts struct {
	Order      string `json:"order"`
	MaxResults int    `json:"maxResults"`
}

type feeCost struct {
	Name      string `json:"name"`
	AmountUSD string `json:"amountUSD"`
}

type gasCost struct {
	AmountUSD string `json:"amountUSD"`
}

type routeStep struct {
	Tool        string `json:"tool"`
	ToolDetails struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"toolDetails"`
	Estimate struct {
		ToAmount          string    `json:"toAmount"`
		FeeCosts          []feeCost `json:"feeCosts"`
		GasCosts          []gasCost `json:"gasCosts"`
		ExecutionDuration int64     `json:"executionDuration"`
	} `json:"estimate"`
}

type routeEntry struct {
	ID         string      `json:"id"`
	ToAmount   string      `json:"toAmount"`
	GasCostUSD string      `json:"gasCostUSD"`
	Steps      []routeStep `json:"steps"`
}

type routesResponse struct {
	Routes []routeEntry `json:"routes"`
}

// Routes fetches a ranked set of candidate routes. The response order is the
// provider's recommendation ranking and is preserved as-is.
func (c *Client) Routes(ctx context.Context, req RoutesRequest) ([]Route, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	body := routesRequestBody{
		FromChainID:      req.FromChainID,
		ToChainID:        req.ToChainID,
		FromTokenAddress: req.FromTokenAddress,
		ToTokenAddress:   req.ToTokenAddress,
		FromAmount:       req.FromAmount,
		Options:          routesRequestOpts{Order: "RECOMMENDED", MaxResults: maxResults},
	}

	var resp routesResponse
	if _, err := c.http.PostJSON(ctx, c.baseURL+"/advanced/routes", body, c.headers(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, clierr.New(clierr.CodeUnavailable, "lifi returned no routes for this transfer")
	}

	out := make([]Route, 0, len(resp.Routes))
	for _, entry := range resp.Routes {
		route, err := convertRoute(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

type quoteResponse struct {
	Tool        string `json:"tool"`
	ToolDetails struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"toolDetails"`
	Estimate struct {
		ToAmount          string    `json:"toAmount"`
		FeeCosts          []feeCost `json:"feeCosts"`
		GasCosts          []gasCost `json:"gasCosts"`
		ExecutionDuration int64     `json:"executionDuration"`
	} `json:"estimate"`
}

// Quote fetches the provider's single best route for a transfer.
func (c *Client) Quote(ctx context.Context, req RoutesRequest) (Route, error) {
	vals := url.Values{}
	vals.Set("fromChain", req.FromChainID)
	vals.Set("toChain", req.ToChainID)
	vals.Set("fromToken", req.FromTokenAddress)
	vals.Set("toToken", req.ToTokenAddress)
	vals.Set("fromAmount", req.FromAmount)

	var resp quoteResponse
	if _, err := c.http.GetJSON(ctx, c.baseURL+"/quote?"+vals.Encode(), c.headers(), &resp); err != nil {
		return Route{}, err
	}
	if resp.Estimate.ToAmount == "" {
		return Route{}, clierr.New(clierr.CodeUnavailable, "lifi quote missing output amount")
	}

	route := Route{
		BridgeKey:  firstNonEmpty(resp.ToolDetails.Key, resp.Tool),
		BridgeName: resp.ToolDetails.Name,
		AmountOut:  resp.Estimate.ToAmount,
		DurationS:  resp.Estimate.ExecutionDuration,
	}
	for _, item := range resp.Estimate.FeeCosts {
		v, _ := strconv.ParseFloat(item.AmountUSD, 64)
		route.FeeItems = append(route.FeeItems, FeeItem{Name: item.Name, AmountUSD: v})
	}
	for _, item := range resp.Estimate.GasCosts {
		v, _ := strconv.ParseFloat(item.AmountUSD, 64)
		route.GasCostUSD += v
	}
	if route.BridgeKey == "" {
		return Route{}, clierr.New(clierr.CodeUnavailable, "lifi quote missing bridge identity")
	}
	return route, nil
}

type toolsResponse struct {
	Bridges []struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"bridges"`
}

// Tools lists the bridges the route provider can currently use.
func (c *Client) Tools(ctx context.Context) ([]model.BridgeTool, error) {
	var resp toolsResponse
	if _, err := c.http.GetJSON(ctx, c.baseURL+"/tools", c.headers(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Bridges) == 0 {
		return nil, clierr.New(clierr.CodeUnavailable, "lifi returned no bridge tools")
	}
	out := make([]model.BridgeTool, 0, len(resp.Bridges))
	for _, b := range resp.Bridges {
		out = append(out, model.BridgeTool{Key: b.Key, Name: b.Name})
	}
	return out, nil
}

func convertRoute(entry routeEntry) (Route, error) {
	if len(entry.Steps) == 0 {
		return Route{}, clierr.New(clierr.CodeUnavailable, fmt.Sprintf("lifi route %s has no steps", entry.ID))
	}

	route := Route{
		BridgeKey:  firstNonEmpty(entry.Steps[0].ToolDetails.Key, entry.Steps[0].Tool),
		BridgeName: entry.Steps[0].ToolDetails.Name,
		AmountOut:  entry.ToAmount,
	}
	if route.BridgeKey == "" {
		return Route{}, clierr.New(clierr.CodeUnavailable, fmt.Sprintf("lifi route %s missing bridge identity", entry.ID))
	}
	if route.AmountOut == "" {
		route.AmountOut = entry.Steps[len(entry.Steps)-1].Estimate.ToAmount
	}
	if route.AmountOut == "" {
		return Route{}, clierr.New(clierr.CodeUnavailable, fmt.Sprintf("lifi route %s missing output amount", entry.ID))
	}

	stepGasUSD := 0.0
	for _, step := range entry.Steps {
		route.DurationS += step.Estimate.ExecutionDuration
		for _, item := range step.Estimate.FeeCosts {
			v, _ := strconv.ParseFloat(item.AmountUSD, 64)
			route.FeeItems = append(route.FeeItems, FeeItem{Name: item.Name, AmountUSD: v})
		}
		for _, item := range step.Estimate.GasCosts {
			v, _ := strconv.ParseFloat(item.AmountUSD, 64)
			stepGasUSD += v
		}
	}
	// Prefer the route-level gas figure; fall back to per-step sums.
	route.GasCostUSD, _ = strconv.ParseFloat(entry.GasCostUSD, 64)
	if route.GasCostUSD == 0 {
		route.GasCostUSD = stepGasUSD
	}
	return route, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
