package routes

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	clierr "github.com/nvalverde/bridgescout/internal/errors"
	"github.com/nvalverde/bridgescout/internal/model"
	"github.com/nvalverde/bridgescout/internal/providers/lifi"
)

type fakeSource struct {
	routes  []lifi.Route
	err     error
	lastReq lifi.RoutesRequest
}

func (f *fakeSource) Routes(ctx context.Context, req lifi.RoutesRequest) ([]lifi.Route, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.routes, nil
}

func (f *fakeSource) Quote(ctx context.Context, req lifi.RoutesRequest) (lifi.Route, error) {
	f.lastReq = req
	if f.err != nil {
		return lifi.Route{}, f.err
	}
	return f.routes[0], nil
}

type fakeTokens struct {
	tokens map[string]model.ResolvedToken
	err    error
}

func (f *fakeTokens) Resolve(ctx context.Context, chainID, ref string) (model.ResolvedToken, error) {
	if f.err != nil {
		return model.ResolvedToken{}, f.err
	}
	tok, ok := f.tokens[ref]
	if !ok {
		return model.ResolvedToken{}, clierr.New(clierr.CodeResolution, "unknown token "+ref)
	}
	tok.ChainID = chainID
	return tok, nil
}

type fakeRisk struct {
	unavailableFor map[string]bool
}

func (f *fakeRisk) Report(ctx context.Context, bridgeKey string) model.RiskReport {
	stats := model.SecurityStats{BridgeKey: bridgeKey, ProtocolSlug: bridgeKey}
	if f.unavailableFor[bridgeKey] {
		stats.Unavailable = true
		return model.RiskReport{Stats: stats}
	}
	tvl := 100_000_000.0
	stats.TVLUSD = &tvl
	return model.RiskReport{
		Stats:      stats,
		Assessment: &model.RiskAssessment{Score: 100, Verdict: model.VerdictSecure, Explanation: []string{"standard checks passed"}},
	}
}

func testTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]model.ResolvedToken{
		"USDC": {Symbol: "USDC", Address: "0xusdc", Decimals: 6, PriceUSD: "1.00", Source: "lifi"},
		"USDT": {Symbol: "USDT", Address: "0xusdt", Decimals: 6, PriceUSD: "1.00", Source: "lifi"},
	}}
}

func threeRoutes() []lifi.Route {
	return []lifi.Route{
		{BridgeKey: "across", BridgeName: "Across", AmountOut: "995000", GasCostUSD: 1.2, DurationS: 120,
			FeeItems: []lifi.FeeItem{{Name: "Relayer Fee", AmountUSD: 0.5}, {Name: "LIFI Fixed Fee", AmountUSD: 0.25}}},
		{BridgeKey: "stargateV2", BridgeName: "Stargate", AmountOut: "994000", GasCostUSD: 2.0, DurationS: 300},
		{BridgeKey: "hop", BridgeName: "Hop", AmountOut: "990000", GasCostUSD: 0.8, DurationS: 600},
	}
}

func newTestAggregator(source *fakeSource, risk RiskReporter) *Aggregator {
	a := NewAggregator(source, testTokens(), risk, zerolog.Nop())
	a.SetNow(func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) })
	return a
}

func compareReq() CompareRequest {
	return CompareRequest{
		FromChain:       "arbitrum",
		ToChain:         "base",
		FromToken:       "USDC",
		ToToken:         "USDT",
		AmountBaseUnits: "1000000",
	}
}

func TestComparePreservesProviderOrder(t *testing.T) {
	source := &fakeSource{routes: threeRoutes()}
	a := newTestAggregator(source, &fakeRisk{})

	got, err := a.Compare(context.Background(), compareReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Routes) != 3 {
		t.Fatalf("routes = %d, want 3", len(got.Routes))
	}
	wantOrder := []string{"across", "stargateV2", "hop"}
	for i, want := range wantOrder {
		if got.Routes[i].BridgeKey != want {
			t.Fatalf("route %d = %q, want %q", i, got.Routes[i].BridgeKey, want)
		}
	}
	if got.FromChainID != "42161" || got.ToChainID != "8453" {
		t.Fatalf("chains = %s -> %s", got.FromChainID, got.ToChainID)
	}
	if source.lastReq.FromAmount != "1000000" {
		t.Fatalf("amount forwarded = %q, want verbatim", source.lastReq.FromAmount)
	}
}

func TestCompareDegradedRiskKeepsRoute(t *testing.T) {
	source := &fakeSource{routes: threeRoutes()}
	a := newTestAggregator(source, &fakeRisk{unavailableFor: map[string]bool{"stargateV2": true}})

	got, err := a.Compare(context.Background(), compareReq())
	if err != nil {
		t.Fatalf("one degraded route must not fail the comparison: %v", err)
	}
	if len(got.Routes) != 3 {
		t.Fatalf("routes = %d, want all 3 kept", len(got.Routes))
	}
	degraded := got.Routes[1]
	if degraded.Risk != nil {
		t.Fatalf("degraded route should have no assessment, got %+v", degraded.Risk)
	}
	if degraded.RiskError == "" {
		t.Fatal("degraded route should carry a risk error marker")
	}
	for _, i := range []int{0, 2} {
		if got.Routes[i].Risk == nil {
			t.Fatalf("route %d should still be scored", i)
		}
	}
}

func TestCompareFeeDecomposition(t *testing.T) {
	source := &fakeSource{routes: threeRoutes()}
	a := newTestAggregator(source, &fakeRisk{})

	got, err := a.Compare(context.Background(), compareReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := got.Routes[0]
	if math.Abs(first.ProtocolFeeUSD-0.5) > 1e-9 {
		t.Fatalf("protocol fee = %f, want 0.5", first.ProtocolFeeUSD)
	}
	if math.Abs(first.AggregatorFeeUSD-0.25) > 1e-9 {
		t.Fatalf("aggregator fee = %f, want 0.25", first.AggregatorFeeUSD)
	}
	if first.AmountOutDecimal != "0.995" {
		t.Fatalf("amount out decimal = %q, want 0.995", first.AmountOutDecimal)
	}
}

func TestCompareRouteFetchFailure(t *testing.T) {
	source := &fakeSource{err: clierr.New(clierr.CodeUnavailable, "no routes")}
	a := newTestAggregator(source, &fakeRisk{})

	_, err := a.Compare(context.Background(), compareReq())
	cErr, ok := clierr.As(err)
	if !ok || cErr.Code != clierr.CodeUnavailable {
		t.Fatalf("error = %v, want unavailable", err)
	}
}

func TestCompareTokenResolutionFailure(t *testing.T) {
	source := &fakeSource{routes: threeRoutes()}
	a := newTestAggregator(source, &fakeRisk{})

	req := compareReq()
	req.FromToken = "NOPE"
	_, err := a.Compare(context.Background(), req)
	cErr, ok := clierr.As(err)
	if !ok || cErr.Code != clierr.CodeResolution {
		t.Fatalf("error = %v, want resolution error", err)
	}
}

func TestQuote(t *testing.T) {
	source := &fakeSource{routes: threeRoutes()}
	a := newTestAggregator(source, &fakeRisk{})

	got, err := a.Quote(context.Background(), compareReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BridgeKey != "across" {
		t.Fatalf("bridge = %q, want across", got.BridgeKey)
	}
	if got.AmountIn != "1000000" {
		t.Fatalf("amount in = %q", got.AmountIn)
	}
	if math.Abs(got.ProtocolFeeUSD-0.5) > 1e-9 || math.Abs(got.AggregatorFeeUSD-0.25) > 1e-9 {
		t.Fatalf("fees = %f / %f", got.ProtocolFeeUSD, got.AggregatorFeeUSD)
	}
}

func TestSplitFees(t *testing.T) {
	cases := []struct {
		name           string
		items          []lifi.FeeItem
		wantProtocol   float64
		wantAggregator float64
	}{
		{"empty list", nil, 0, 0},
		{"all protocol", []lifi.FeeItem{{Name: "Relayer Fee", AmountUSD: 1}}, 1, 0},
		{"marker case-insensitive", []lifi.FeeItem{{Name: "LiFi Fixed Fee", AmountUSD: 0.3}}, 0, 0.3},
		{"mixed", []lifi.FeeItem{
			{Name: "Bridge Fee", AmountUSD: 2},
			{Name: "LIFI Shared Fee", AmountUSD: 0.5},
			{Name: "Gas Subsidy", AmountUSD: 0.1},
		}, 2.1, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			protocol, aggregator := SplitFees(tc.items)
			if math.Abs(protocol-tc.wantProtocol) > 1e-9 {
				t.Fatalf("protocol = %f, want %f", protocol, tc.wantProtocol)
			}
			if math.Abs(aggregator-tc.wantAggregator) > 1e-9 {
				t.Fatalf("aggregator = %f, want %f", aggregator, tc.wantAggregator)
			}
		})
	}
}

func TestSplitFeesSumInvariant(t *testing.T) {
	items := []lifi.FeeItem{
		{Name: "Bridge Fee", AmountUSD: 1.25},
		{Name: "LIFI Fixed Fee", AmountUSD: 0.75},
		{Name: "Relayer Fee", AmountUSD: 0.5},
	}
	total := 0.0
	for _, item := range items {
		total += item.AmountUSD
	}
	protocol, aggregator := SplitFees(items)
	if math.Abs((protocol+aggregator)-total) > 1e-9 {
		t.Fatalf("decomposition must sum to total: %f + %f != %f", protocol, aggregator, total)
	}
}
