package token

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	clierr "github.com/nvalverde/bridgescout/internal/errors"
	"github.com/nvalverde/bridgescout/internal/id"
	"github.com/nvalverde/bridgescout/internal/model"
)

// Lookup is the slice of the route provider the resolver needs.
type Lookup interface {
	TokenLookup(ctx context.Context, chainID, symbol string) (model.ResolvedToken, error)
}

type fallbackKey struct {
	ChainID string
	Symbol  string
}

// fallbackTokens covers (chain, symbol) pairs the route provider's symbol
// lookup is known to get wrong or reject, mostly bridged-asset variants.
// Entries synthesized from this table carry no price data.
var fallbackTokens = map[fallbackKey]model.ResolvedToken{
	{ChainID: "42161", Symbol: "USDC.E"}: {Symbol: "USDC.E", Address: "0xff970a61a04b1ca14834a43f5de4533ebddb5cc8", Decimals: 6, ChainID: "42161"},
	{ChainID: "137", Symbol: "USDC.E"}:   {Symbol: "USDC.E", Address: "0x2791bca1f2de4661ed88a30c99a7a9449aa84174", Decimals: 6, ChainID: "137"},
	{ChainID: "10", Symbol: "USDC.E"}:    {Symbol: "USDC.E", Address: "0x7f5c764cbc14f9669b88837ca1490cca17c31607", Decimals: 6, ChainID: "10"},
	{ChainID: "8453", Symbol: "USDBC"}:   {Symbol: "USDBC", Address: "0xd9aaec86b65d86f6a7b5b1b0c42ffa531710b6ca", Decimals: 6, ChainID: "8453"},
	{ChainID: "43114", Symbol: "USDT.E"}: {Symbol: "USDT.E", Address: "0xc7198437980c041c805a1edcba50c1ce5db95118", Decimals: 6, ChainID: "43114"},
	{ChainID: "56", Symbol: "BTCB"}:      {Symbol: "BTCB", Address: "0x7130d2a12b9bcbfae4f2634d864a1ee1ce3ead9c", Decimals: 18, ChainID: "56"},
}

// Resolver turns a token reference (symbol or address) into an authoritative
// on-chain identity. The route provider's symbol lookup is the primary path;
// the static fallback table keeps common bridged-asset symbols usable when
// that lookup fails.
type Resolver struct {
	source Lookup
	log    zerolog.Logger
}

func NewResolver(source Lookup, log zerolog.Logger) *Resolver {
	return &Resolver{source: source, log: log}
}

// Resolve returns the token identity for ref on the given chain.
// Address-shaped input passes through without any network lookup; the caller
// already holds the canonical identifier. Symbols go to the provider first
// and to the fallback table on any failure.
func (r *Resolver) Resolve(ctx context.Context, chainID, ref string) (model.ResolvedToken, error) {
	clean := strings.TrimSpace(ref)
	if clean == "" {
		return model.ResolvedToken{}, clierr.New(clierr.CodeUsage, "token is required")
	}

	if id.IsAddress(clean) {
		return model.ResolvedToken{
			Address:  id.NormalizeAddress(clean),
			ChainID:  chainID,
			PriceUSD: "unknown",
			Source:   "input",
		}, nil
	}

	symbol := strings.ToUpper(clean)
	resolved, err := r.source.TokenLookup(ctx, chainID, symbol)
	if err == nil {
		return resolved, nil
	}

	if fallback, ok := fallbackTokens[fallbackKey{ChainID: chainID, Symbol: symbol}]; ok {
		r.log.Debug().Str("chain", chainID).Str("symbol", symbol).Err(err).Msg("token lookup failed, using fallback table")
		fallback.PriceUSD = "unknown (fallback)"
		fallback.Source = "fallback"
		return fallback, nil
	}

	return model.ResolvedToken{}, clierr.Wrap(clierr.CodeResolution, fmt.Sprintf("resolve token %s on chain %s", symbol, chainID), err)
}
