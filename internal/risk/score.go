package risk

import (
	"fmt"

	"github.com/nvalverde/bridgescout/internal/model"
)

// TVLThresholdUSD is the liquidity floor below which a protocol is penalized.
const TVLThresholdUSD = 10_000_000

const (
	scoreStart          = 100
	penaltyUnknownTVL   = 30
	penaltyLowTVL       = 20
	dangerBelow         = 40
	cautionBelow        = 80
	explanationAllClear = "standard checks passed"
)

// Score derives a risk assessment from security stats. It is pure and
// deterministic: identical input always yields identical output. Rules are
// evaluated in fixed order and a recent incident short-circuits everything
// else.
func Score(stats model.SecurityStats) model.RiskAssessment {
	if n := len(stats.RecentIncidents); n > 0 {
		return model.RiskAssessment{
			Score:   0,
			Verdict: model.VerdictDanger,
			Explanation: []string{
				fmt.Sprintf("CRITICAL: %d security incident(s) recorded within the last 2 years", n),
			},
		}
	}

	score := scoreStart
	explanation := []string{}
	if stats.TVLUSD == nil {
		score -= penaltyUnknownTVL
		explanation = append(explanation, "TVL data unavailable")
	} else if *stats.TVLUSD < TVLThresholdUSD {
		score -= penaltyLowTVL
		explanation = append(explanation, fmt.Sprintf("TVL $%.0f is below the $%d threshold", *stats.TVLUSD, TVLThresholdUSD))
	}

	if len(explanation) == 0 {
		explanation = append(explanation, explanationAllClear)
	}

	return model.RiskAssessment{
		Score:       score,
		Verdict:     verdictFor(score),
		Explanation: explanation,
	}
}

func verdictFor(score int) string {
	switch {
	case score < dangerBelow:
		return model.VerdictDanger
	case score < cautionBelow:
		return model.VerdictCaution
	default:
		return model.VerdictSecure
	}
}
