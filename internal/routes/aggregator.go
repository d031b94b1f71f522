package routes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	clierr "github.com/nvalverde/bridgescout/internal/errors"
	"github.com/nvalverde/bridgescout/internal/id"
	"github.com/nvalverde/bridgescout/internal/model"
	"github.com/nvalverde/bridgescout/internal/providers/lifi"
)

// DefaultMaxRoutes bounds the candidate set requested from the provider.
const DefaultMaxRoutes = 3

// aggregatorFeeMarker identifies fee line items charged by the route
// aggregator service itself; every other fee is attributed to the bridge
// protocol.
const aggregatorFeeMarker = "lifi"

// Source is the slice of the route provider the aggregator needs.
type Source interface {
	Routes(ctx context.Context, req lifi.RoutesRequest) ([]lifi.Route, error)
	Quote(ctx context.Context, req lifi.RoutesRequest) (lifi.Route, error)
}

// TokenResolver resolves a symbol-or-address token reference on a chain.
type TokenResolver interface {
	Resolve(ctx context.Context, chainID, ref string) (model.ResolvedToken, error)
}

// RiskReporter produces a security report for a bridge key. It degrades
// internally and never fails the caller.
type RiskReporter interface {
	Report(ctx context.Context, bridgeKey string) model.RiskReport
}

// Aggregator orchestrates token resolution, route fetching, fee
// decomposition and per-route risk assessment.
type Aggregator struct {
	source    Source
	tokens    TokenResolver
	risk      RiskReporter
	log       zerolog.Logger
	now       func() time.Time
	maxRoutes int
}

func NewAggregator(source Source, tokens TokenResolver, risk RiskReporter, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		source:    source,
		tokens:    tokens,
		risk:      risk,
		log:       log,
		now:       time.Now,
		maxRoutes: DefaultMaxRoutes,
	}
}

// SetNow overrides the clock. Used by tests.
func (a *Aggregator) SetNow(now func() time.Time) { a.now = now }

type CompareRequest struct {
	FromChain string
	ToChain   string
	FromToken string
	ToToken   string
	// AmountBaseUnits is the atomic amount, forwarded to the provider
	// verbatim. Unit conversion is the caller's responsibility.
	AmountBaseUnits string
}

// Compare returns the provider's top-ranked candidate routes joined with a
// fee decomposition and a risk verdict per route, preserving the provider's
// ranking order. Chain normalization, token resolution and the route fetch
// are fatal steps; a per-route risk failure only degrades that route.
func (a *Aggregator) Compare(ctx context.Context, req CompareRequest) (model.RouteComparison, error) {
	fromChain := id.NormalizeChain(req.FromChain)
	toChain := id.NormalizeChain(req.ToChain)

	// Both resolutions are attempted regardless of the other's outcome so
	// the caller sees every resolution failure, not just the first.
	fromToken, fromErr := a.tokens.Resolve(ctx, fromChain, req.FromToken)
	toToken, toErr := a.tokens.Resolve(ctx, toChain, req.ToToken)
	if fromErr != nil {
		return model.RouteComparison{}, clierr.Wrap(clierr.CodeResolution, "resolve source token", fromErr)
	}
	if toErr != nil {
		return model.RouteComparison{}, clierr.Wrap(clierr.CodeResolution, "resolve destination token", toErr)
	}

	candidates, err := a.source.Routes(ctx, lifi.RoutesRequest{
		FromChainID:      fromChain,
		ToChainID:        toChain,
		FromTokenAddress: fromToken.Address,
		ToTokenAddress:   toToken.Address,
		FromAmount:       req.AmountBaseUnits,
		MaxResults:       a.maxRoutes,
	})
	if err != nil {
		return model.RouteComparison{}, clierr.Wrap(clierr.CodeUnavailable, "fetch candidate routes", err)
	}

	// Per-route risk assessment fans out concurrently so total latency stays
	// near one round-trip instead of N.
	options := make([]model.RouteOption, len(candidates))
	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(index int, route lifi.Route) {
			defer wg.Done()
			options[index] = a.buildOption(ctx, route, toToken.Decimals)
		}(i, candidate)
	}
	wg.Wait()

	return model.RouteComparison{
		FromChainID:     fromChain,
		ToChainID:       toChain,
		FromToken:       fromToken,
		ToToken:         toToken,
		AmountBaseUnits: req.AmountBaseUnits,
		Routes:          options,
		FetchedAt:       a.now().UTC().Format(time.RFC3339),
	}, nil
}

func (a *Aggregator) buildOption(ctx context.Context, route lifi.Route, outDecimals int) model.RouteOption {
	protocolFeeUSD, aggregatorFeeUSD := SplitFees(route.FeeItems)
	option := model.RouteOption{
		BridgeKey:          route.BridgeKey,
		BridgeName:         route.BridgeName,
		AmountOut:          route.AmountOut,
		GasCostUSD:         route.GasCostUSD,
		ProtocolFeeUSD:     protocolFeeUSD,
		AggregatorFeeUSD:   aggregatorFeeUSD,
		EstimatedDurationS: route.DurationS,
	}
	if outDecimals > 0 {
		option.AmountOutDecimal = id.FormatDecimal(route.AmountOut, outDecimals)
	}

	report := a.risk.Report(ctx, route.BridgeKey)
	option.ProtocolSlug = report.Stats.ProtocolSlug
	if report.Stats.Unavailable || report.Assessment == nil {
		option.RiskError = "security data unavailable"
		a.log.Debug().Str("bridge_key", route.BridgeKey).Msg("route kept with degraded risk data")
		return option
	}
	option.Risk = report.Assessment
	return option
}

// Quote returns the provider's single best route with its fee decomposition.
func (a *Aggregator) Quote(ctx context.Context, req CompareRequest) (model.RouteQuote, error) {
	fromChain := id.NormalizeChain(req.FromChain)
	toChain := id.NormalizeChain(req.ToChain)

	fromToken, fromErr := a.tokens.Resolve(ctx, fromChain, req.FromToken)
	toToken, toErr := a.tokens.Resolve(ctx, toChain, req.ToToken)
	if fromErr != nil {
		return model.RouteQuote{}, clierr.Wrap(clierr.CodeResolution, "resolve source token", fromErr)
	}
	if toErr != nil {
		return model.RouteQuote{}, clierr.Wrap(clierr.CodeResolution, "resolve destination token", toErr)
	}

	route, err := a.source.Quote(ctx, lifi.RoutesRequest{
		FromChainID:      fromChain,
		ToChainID:        toChain,
		FromTokenAddress: fromToken.Address,
		ToTokenAddress:   toToken.Address,
		FromAmount:       req.AmountBaseUnits,
	})
	if err != nil {
		return model.RouteQuote{}, clierr.Wrap(clierr.CodeUnavailable, "fetch route quote", err)
	}

	protocolFeeUSD, aggregatorFeeUSD := SplitFees(route.FeeItems)
	return model.RouteQuote{
		FromChainID:        fromChain,
		ToChainID:          toChain,
		BridgeKey:          route.BridgeKey,
		BridgeName:         route.BridgeName,
		AmountIn:           req.AmountBaseUnits,
		AmountOut:          route.AmountOut,
		GasCostUSD:         route.GasCostUSD,
		ProtocolFeeUSD:     protocolFeeUSD,
		AggregatorFeeUSD:   aggregatorFeeUSD,
		EstimatedDurationS: route.DurationS,
		FetchedAt:          a.now().UTC().Format(time.RFC3339),
	}, nil
}

// SplitFees decomposes a fee list into protocol and aggregator subtotals in
// USD. The two subtotals always sum to the total of the input list.
func SplitFees(items []lifi.FeeItem) (protocolUSD, aggregatorUSD float64) {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), aggregatorFeeMarker) {
			aggregatorUSD += item.AmountUSD
			continue
		}
		protocolUSD += item.AmountUSD
	}
	return protocolUSD, aggregatorUSD
}
