package protocols

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nvalverde/bridgescout/internal/model"
)

// overrides handles bridge keys whose security-provider slug cannot be
// derived from the name at all. Hand-maintained; checked before any
// directory search.
var overrides = map[string]string{
	"cbridge":        "celer-cbridge",
	"hop":            "hop-protocol",
	"omni":           "omni-bridge",
	"arbitrum":       "arbitrum-bridge",
	"gnosis":         "gnosis-xdai-bridge",
	"polygonbridge":  "polygon-pos-bridge",
	"optimismbridge": "optimism-gateway",
}

var versionSuffixPattern = regexp.MustCompile(`v[0-9]+$`)

// Resolver maps a route provider bridge key onto the security provider's
// protocol slug. The two namespaces are maintained independently, so the
// mapping is an ordered chain of heuristics; the first rule that produces a
// slug wins and no candidate ranking is attempted.
type Resolver struct {
	dir *Directory
	log zerolog.Logger
}

func NewResolver(dir *Directory, log zerolog.Logger) *Resolver {
	return &Resolver{dir: dir, log: log}
}

// ResolveSlug applies, in order: the override table, an exact match against
// slug or lowercased display name, a substring match in directory order, and
// the same two matches again after stripping a trailing version suffix
// ("stargatev2" -> "stargate"). When everything misses, the original key is
// returned as a best-effort slug; callers must tolerate a slug that yields
// no security data. Directory fetch failure degrades to overrides plus
// pass-through and never surfaces as an error.
func (r *Resolver) ResolveSlug(ctx context.Context, bridgeKey string) string {
	key := strings.ToLower(strings.TrimSpace(bridgeKey))
	if key == "" {
		return bridgeKey
	}

	if slug, ok := overrides[key]; ok {
		r.log.Debug().Str("bridge_key", key).Str("slug", slug).Str("rule", "override").Msg("protocol slug resolved")
		return slug
	}

	entries, err := r.dir.Entries(ctx)
	if err != nil {
		r.log.Debug().Str("bridge_key", key).Err(err).Msg("protocol directory unavailable, passing bridge key through")
		return key
	}

	for _, candidate := range []string{key, stripVersionSuffix(key)} {
		if candidate == "" {
			continue
		}
		if slug, rule, ok := matchDirectory(entries, candidate); ok {
			r.log.Debug().Str("bridge_key", key).Str("slug", slug).Str("rule", rule).Msg("protocol slug resolved")
			return slug
		}
	}

	r.log.Debug().Str("bridge_key", key).Msg("protocol slug unresolved, passing bridge key through")
	return key
}

func matchDirectory(entries []model.ProtocolEntry, key string) (string, string, bool) {
	for _, entry := range entries {
		slug := strings.ToLower(strings.TrimSpace(entry.Slug))
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		if slug == key || name == key {
			return entry.Slug, "exact", true
		}
	}
	// First satisfying entry in directory order wins. Multiple protocols can
	// plausibly contain the key; no ranking is attempted.
	for _, entry := range entries {
		slug := strings.ToLower(strings.TrimSpace(entry.Slug))
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		if slug == "" {
			continue
		}
		if strings.Contains(key, slug) || strings.Contains(slug, key) || strings.Contains(name, key) {
			return entry.Slug, "substring", true
		}
	}
	return "", "", false
}

func stripVersionSuffix(key string) string {
	stripped := versionSuffixPattern.ReplaceAllString(key, "")
	if stripped == key {
		return ""
	}
	return stripped
}
