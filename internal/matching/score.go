package matching

import "github.com/spigell/optiplan-ai/internal/vectorstore"

// NormalizeScore maps a provider's raw query score onto the canonical
// convention: [0,1], higher is better. It is applied once, at the store
// boundary; downstream components never see provider-specific scales.
//
// Distance-style scores are inverted (valid for normalized cosine distance);
// out-of-range inputs are clamped rather than propagated.
func NormalizeScore(raw float64, convention vectorstore.ScoreConvention) float64 {
	score := raw
	if convention == vectorstore.ConventionCosineDistance {
		score = 1 - raw
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
