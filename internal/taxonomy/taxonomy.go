// Package taxonomy maps wire classification values onto display categories.
// Every function is total: unknown inputs degrade to a neutral category
// instead of failing, so new agent-side vocabulary never breaks rendering.
package taxonomy

import "github.com/groundcheck/groundcheck/internal/agent"

// ScoreBand groups a compliance score for display.
type ScoreBand string

const (
	BandGood     ScoreBand = "good"
	BandModerate ScoreBand = "moderate"
	BandPoor     ScoreBand = "poor"
)

// BandForScore maps a compliance score to its band. The boundary is
// asymmetric: a score of exactly 80 is moderate, only scores above it
// are good.
func BandForScore(score float64) ScoreBand {
	switch {
	case score > 80:
		return BandGood
	case score >= 50:
		return BandModerate
	default:
		return BandPoor
	}
}

// BandLabel returns the human label for a band.
func BandLabel(band ScoreBand) string {
	switch band {
	case BandGood:
		return "Good standing"
	case BandModerate:
		return "Needs review"
	case BandPoor:
		return "High risk"
	default:
		return "Unscored"
	}
}

// RiskCategory is the display category for a sentence risk level.
type RiskCategory string

const (
	RiskCategorySafe    RiskCategory = "safe"
	RiskCategoryWarning RiskCategory = "warning"
	RiskCategoryDanger  RiskCategory = "danger"
	RiskCategoryNeutral RiskCategory = "neutral"
)

// CategorizeRisk maps a wire risk level to its display category. Unknown
// levels land in the neutral category.
func CategorizeRisk(level string) RiskCategory {
	switch level {
	case agent.RiskSafe:
		return RiskCategorySafe
	case agent.RiskWarning:
		return RiskCategoryWarning
	case agent.RiskDanger:
		return RiskCategoryDanger
	default:
		return RiskCategoryNeutral
	}
}

// StatusIcon pairs a glyph with the meaning it conveys.
type StatusIcon struct {
	Glyph   string
	Meaning string
}

// IconForStatus maps a verification status to its icon. The second return
// is false for unknown statuses; callers render nothing in that case.
func IconForStatus(status string) (StatusIcon, bool) {
	switch status {
	case agent.VerificationVerified:
		return StatusIcon{Glyph: "✓", Meaning: "grounded in vault"}, true
	case agent.VerificationUnknown:
		return StatusIcon{Glyph: "?", Meaning: "not found in vault"}, true
	case agent.VerificationContradiction:
		return StatusIcon{Glyph: "✗", Meaning: "conflicts with vault"}, true
	default:
		return StatusIcon{}, false
	}
}
