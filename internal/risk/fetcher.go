package risk

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nvalverde/bridgescout/internal/model"
)

// SecurityData is the slice of the security provider the fetcher needs.
type SecurityData interface {
	ProtocolTVL(ctx context.Context, slug string) (float64, bool, error)
	Incidents(ctx context.Context) ([]model.Incident, error)
}

// SlugResolver maps a route provider bridge key to a security provider slug.
type SlugResolver interface {
	ResolveSlug(ctx context.Context, bridgeKey string) string
}

// incidentWindow restricts scoring to recent history; older incidents do not
// affect current risk.
const incidentWindowYears = 2

// Fetcher joins TVL and incident history for a bridge key. The two upstream
// calls run concurrently and complete independently: a failure on one side
// never cancels or fails the other.
type Fetcher struct {
	data  SecurityData
	slugs SlugResolver
	log   zerolog.Logger
	now   func() time.Time
}

func NewFetcher(data SecurityData, slugs SlugResolver, log zerolog.Logger) *Fetcher {
	return &Fetcher{data: data, slugs: slugs, log: log, now: time.Now}
}

// SetNow overrides the clock. Used by tests.
func (f *Fetcher) SetNow(now func() time.Time) { f.now = now }

// FetchStats resolves the protocol slug and gathers its security stats.
// Partial upstream failure degrades the affected field (nil TVL, empty
// incidents); only when both calls fail is the result marked unavailable.
func (f *Fetcher) FetchStats(ctx context.Context, bridgeKey string) model.SecurityStats {
	slug := f.slugs.ResolveSlug(ctx, bridgeKey)

	var (
		wg sync.WaitGroup

		tvl      float64
		tvlKnown bool
		tvlErr   error

		incidents    []model.Incident
		incidentsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		tvl, tvlKnown, tvlErr = f.data.ProtocolTVL(ctx, slug)
	}()
	go func() {
		defer wg.Done()
		incidents, incidentsErr = f.data.Incidents(ctx)
	}()
	wg.Wait()

	stats := model.SecurityStats{
		BridgeKey:       bridgeKey,
		ProtocolSlug:    slug,
		RecentIncidents: []model.Incident{},
		FetchedAt:       f.now().UTC().Format(time.RFC3339),
	}

	if tvlErr == nil && tvlKnown {
		v := tvl
		stats.TVLUSD = &v
	}
	if tvlErr != nil {
		f.log.Debug().Str("slug", slug).Err(tvlErr).Msg("tvl fetch failed")
	}

	if incidentsErr == nil {
		stats.RecentIncidents = filterIncidents(incidents, slug, f.now())
	} else {
		f.log.Debug().Str("slug", slug).Err(incidentsErr).Msg("incident fetch failed")
	}

	if tvlErr != nil && incidentsErr != nil {
		stats.Unavailable = true
	}
	return stats
}

// Report fetches stats and, when they are usable, scores them.
func (f *Fetcher) Report(ctx context.Context, bridgeKey string) model.RiskReport {
	stats := f.FetchStats(ctx, bridgeKey)
	if stats.Unavailable {
		return model.RiskReport{Stats: stats}
	}
	assessment := Score(stats)
	return model.RiskReport{Stats: stats, Assessment: &assessment}
}

func filterIncidents(incidents []model.Incident, slug string, now time.Time) []model.Incident {
	cutoff := now.AddDate(-incidentWindowYears, 0, 0).Unix()
	needle := strings.ToLower(strings.TrimSpace(slug))
	out := []model.Incident{}
	if needle == "" {
		return out
	}
	for _, incident := range incidents {
		if incident.Date < cutoff {
			continue
		}
		if !strings.Contains(strings.ToLower(incident.Name), needle) {
			continue
		}
		out = append(out, incident)
	}
	return out
}
