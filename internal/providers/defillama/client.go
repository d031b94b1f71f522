package defillama

import (
	"context"
	"encoding/json"
	"net/url"
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
	now     func() time.Time
}

func New(httpClient *httpx.Client) *Client {
	return &Client{http: httpClient, baseURL: registry.LlamaBaseURL, now: time.Now}
}

// SetBaseURL points the client at a different endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

func (c *Client) Info() model.ProviderInfo {
	return model.ProviderInfo{
		Name:        "defillama",
		Type:        "security-data",
		RequiresKey: false,
		Capabilities: []string{
			"protocols.directory",
			"protocols.tvl",
			"incidents.history",
		},
	}
}

type protocolEntry struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Protocols fetches the full protocol directory (slug + display name). The
// endpoint is expensive; callers cache the result for the process lifetime.
func (c *Client) Protocols(ctx context.Context) ([]model.ProtocolEntry, error) {
	var resp []protocolEntry
	if _, err := c.http.GetJSON(ctx, c.baseURL+"/protocols", nil, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, clierr.New(clierr.CodeUnavailable, "defillama returned an empty protocol directory")
	}
	out := make([]model.ProtocolEntry, 0, len(resp))
	for _, p := range resp {
		if strings.TrimSpace(p.Slug) == "" {
			continue
		}
		out = append(out, model.ProtocolEntry{Slug: p.Slug, Name: p.Name})
	}
	return out, nil
}

type protocolTVLResponse struct {
	CurrentChainTVLs map[string]float64 `json:"currentChainTvls"`
	TVL              json.RawMessage    `json:"tvl"`
}

type tvlSeriesPoint struct {
	Date              int64   `json:"date"`
	TotalLiquidityUSD float64 `json:"totalLiquidityUSD"`
}

// ProtocolTVL returns the protocol's total value locked in USD. The endpoint
// serves two shapes depending on the protocol: a per-chain breakdown map or a
// liquidity series list; both are summed. When neither shape is present the
// second return value is false and the TVL must be treated as unknown, never
// as zero.
func (c *Client) ProtocolTVL(ctx context.Context, slug string) (float64, bool, error) {
	clean := strings.TrimSpace(slug)
	if clean == "" {
		return 0, false, clierr.New(clierr.CodeUsage, "protocol slug is required")
	}

	var resp protocolTVLResponse
	if _, err := c.http.GetJSON(ctx, c.baseURL+"/protocol/"+url.PathEscape(clean), nil, &resp); err != nil {
		return 0, false, err
	}

	if len(resp.CurrentChainTVLs) > 0 {
		total := 0.0
		for _, v := range resp.CurrentChainTVLs {
			total += v
		}
		return total, true, nil
	}

	if len(resp.TVL) > 0 {
		var series []tvlSeriesPoint
		if err := json.Unmarshal(resp.TVL, &series); err == nil && len(series) > 0 {
			total := 0.0
			for _, point := range series {
				total += point.TotalLiquidityUSD
			}
			return total, true, nil
		}
	}

	return 0, false, nil
}

type hackEntry struct {
	Name           string  `json:"name"`
	Date           int64   `json:"date"`
	Classification string  `json:"classification"`
	Amount         float64 `json:"amount"`
}

// Incidents fetches the global incident history (name, epoch date,
// classification, USD lost). Filtering by protocol happens in the caller.
func (c *Client) Incidents(ctx context.Context) ([]model.Incident, error) {
	var resp []hackEntry
	if _, err := c.http.GetJSON(ctx, c.baseURL+"/hacks", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]model.Incident, 0, len(resp))
	for _, h := range resp {
		out = append(out, model.Incident{
			Name:           h.Name,
			Date:           h.Date,
			Classification: h.Classification,
			AmountLostUSD:  h.Amount,
		})
	}
	return out, nil
}
