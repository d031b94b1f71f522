package id

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ChainSolana is the route provider's token for its only supported non-EVM
// chain; every other canonical chain ID is a numeric string.
const ChainSolana = "SOL"

// DefaultChain is used when no chain input was supplied at all.
const DefaultChain = "1"

var numericPattern = regexp.MustCompile(`^[0-9]+$`)

// chainAliases maps user-facing lowercase aliases to canonical chain IDs.
var chainAliases = map[string]string{
	"eth":       "1",
	"ethereum":  "1",
	"mainnet":   "1",
	"optimism":  "10",
	"op":        "10",
	"bsc":       "56",
	"bnb":       "56",
	"binance":   "56",
	"polygon":   "137",
	"matic":     "137",
	"base":      "8453",
	"arbitrum":  "42161",
	"arb":       "42161",
	"avalanche": "43114",
	"avax":      "43114",
	"solana":    ChainSolana,
	"sol":       ChainSolana,
}

// NormalizeChain maps a chain alias to its canonical ID. Unrecognized input
// is trimmed, lowercased and returned as-is: the caller may already hold a
// canonical ID, so unknown values pass through instead of failing. Empty
// input defaults to Ethereum mainnet.
func NormalizeChain(input string) string {
	norm := strings.ToLower(strings.TrimSpace(input))
	if norm == "" {
		return DefaultChain
	}
	if canonical, ok := chainAliases[norm]; ok {
		return canonical
	}
	if numericPattern.MatchString(norm) {
		return norm
	}
	return norm
}

// KnownChains lists the alias table in a stable order for discovery output.
func KnownChains() []ChainAlias {
	out := make([]ChainAlias, 0, len(chainAliases))
	for alias, canonical := range chainAliases {
		out = append(out, ChainAlias{Alias: alias, ChainID: canonical})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChainID != out[j].ChainID {
			return out[i].ChainID < out[j].ChainID
		}
		return out[i].Alias < out[j].Alias
	})
	return out
}

type ChainAlias struct {
	Alias   string `json:"alias"`
	ChainID string `json:"chain_id"`
}

// IsAddress reports whether input is an address-shaped token reference. The
// resolver must never hit the network for these; they pass through verbatim.
func IsAddress(input string) bool {
	return common.IsHexAddress(strings.TrimSpace(input))
}

// NormalizeAddress lowercases EVM addresses so downstream comparisons are
// case-insensitive. Non-address input is returned trimmed.
func NormalizeAddress(input string) string {
	clean := strings.TrimSpace(input)
	if common.IsHexAddress(clean) {
		return strings.ToLower(clean)
	}
	return clean
}
