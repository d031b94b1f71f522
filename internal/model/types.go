package model

import "time"

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	RequestID string           `json:"request_id"`
	Timestamp time.Time        `json:"timestamp"`
	Command   string           `json:"command"`
	Providers []ProviderStatus `json:"providers,omitempty"`
	Cache     CacheStatus      `json:"cache"`
	Partial   bool             `json:"partial"`
}

type ProviderStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

type CacheStatus struct {
	Status string `json:"status"`
	AgeMS  int64  `json:"age_ms"`
	Stale  bool   `json:"stale"`
}

type ProviderInfo struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	RequiresKey  bool     `json:"requires_key"`
	Capabilities []string `json:"capabilities"`
}

// ResolvedToken is the authoritative on-chain identity of a token on one
// chain. PriceUSD is a string because "unknown (fallback)" is a valid state
// distinct from any numeric price.
type ResolvedToken struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
	ChainID  string `json:"chain_id"`
	PriceUSD string `json:"price_usd"`
	Source   string `json:"source"`
}

type ChainInfo struct {
	Alias   string `json:"alias"`
	ChainID string `json:"chain_id"`
}

// BridgeTool is one entry of the route provider's tool directory.
type BridgeTool struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ProtocolEntry is one entry of the security provider's protocol directory.
type ProtocolEntry struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Incident struct {
	Name           string  `json:"name"`
	Date           int64   `json:"date"`
	Classification string  `json:"classification"`
	AmountLostUSD  float64 `json:"amount_lost_usd"`
}

// SecurityStats joins TVL and incident history for one resolved protocol.
// TVLUSD is nil when no usable TVL shape came back; that state must survive
// into scoring and never collapse to zero. Unavailable is set only when both
// sub-fetches failed.
type SecurityStats struct {
	BridgeKey       string     `json:"bridge_key"`
	ProtocolSlug    string     `json:"protocol_slug"`
	TVLUSD          *float64   `json:"tvl_usd"`
	RecentIncidents []Incident `json:"recent_incidents"`
	Unavailable     bool       `json:"unavailable,omitempty"`
	FetchedAt       string     `json:"fetched_at"`
}

const (
	VerdictSecure  = "SECURE"
	VerdictCaution = "CAUTION"
	VerdictDanger  = "DANGER"
)

type RiskAssessment struct {
	Score       int      `json:"score"`
	Verdict     string   `json:"verdict"`
	Explanation []string `json:"explanation"`
}

// RouteOption is one candidate route with its fee decomposition and risk
// verdict. Risk is nil with RiskError set when the security fetch for this
// route failed; the route itself is still reported.
type RouteOption struct {
	BridgeKey          string          `json:"bridge_key"`
	BridgeName         string          `json:"bridge_name,omitempty"`
	AmountOut          string          `json:"amount_out"`
	AmountOutDecimal   string          `json:"amount_out_decimal,omitempty"`
	GasCostUSD         float64         `json:"gas_cost_usd"`
	ProtocolFeeUSD     float64         `json:"protocol_fee_usd"`
	AggregatorFeeUSD   float64         `json:"aggregator_fee_usd"`
	EstimatedDurationS int64           `json:"estimated_duration_s"`
	ProtocolSlug       string          `json:"protocol_slug,omitempty"`
	Risk               *RiskAssessment `json:"risk,omitempty"`
	RiskError          string          `json:"risk_error,omitempty"`
}

// RouteComparison preserves the upstream aggregator's ranking order.
type RouteComparison struct {
	FromChainID     string        `json:"from_chain_id"`
	ToChainID       string        `json:"to_chain_id"`
	FromToken       ResolvedToken `json:"from_token"`
	ToToken         ResolvedToken `json:"to_token"`
	AmountBaseUnits string        `json:"amount_base_units"`
	Routes          []RouteOption `json:"routes"`
	FetchedAt       string        `json:"fetched_at"`
}

type RouteQuote struct {
	FromChainID        string  `json:"from_chain_id"`
	ToChainID          string  `json:"to_chain_id"`
	BridgeKey          string  `json:"bridge_key"`
	BridgeName         string  `json:"bridge_name,omitempty"`
	AmountIn           string  `json:"amount_in"`
	AmountOut          string  `json:"amount_out"`
	GasCostUSD         float64 `json:"gas_cost_usd"`
	ProtocolFeeUSD     float64 `json:"protocol_fee_usd"`
	AggregatorFeeUSD   float64 `json:"aggregator_fee_usd"`
	EstimatedDurationS int64   `json:"estimated_duration_s"`
	FetchedAt          string  `json:"fetched_at"`
}

// RiskReport is the structured result of the risk assess operation.
type RiskReport struct {
	Stats      SecurityStats   `json:"stats"`
	Assessment *RiskAssessment `json:"assessment,omitempty"`
}
