package metrics

import (
	"fmt"

	"trajan/internal/model"
)

// Alignment tiers for the overall efficiency score.
const (
	alignmentHigh     = "high"
	alignmentModerate = "moderate"
	alignmentLow      = "low"
)

// Balance tiers for the mean pairwise separation.
const (
	balanceSynergy      = "synergy"
	balanceIndependence = "independence"
	balanceAntagonistic = "antagonistic"
)

// Tags for individual pairwise angles.
const (
	pairAligned     = "aligned"
	pairIndependent = "independent"
	pairConflicting = "conflicting"
)

// Threshold constants. These are fixed; round-trip compatibility of stored
// summaries depends on them never drifting.
const (
	scoreHighThreshold     = 0.5
	scoreLowThreshold      = 0.2
	balanceSynergyMax      = 60.0
	balanceAntagonisticMin = 120.0
	pairAlignedMax         = 45.0
	pairConflictingMin     = 135.0
)

// Evaluate maps raw metrics onto tiers, an overall classification, and the
// ordered human-readable interpretation. It is a pure function: identical
// inputs always yield identical output.
func Evaluate(raw RawMetrics) model.EfficiencySummary {
	alignment := alignmentTier(raw.EfficiencyScore)
	balance := balanceTier(raw.BalanceFactorDegrees)

	interpretation := make([]string, 0, 8)
	interpretation = append(interpretation, alignmentText(alignment, raw.EfficiencyScore))
	interpretation = append(interpretation, balanceText(balance, raw.BalanceFactorDegrees))
	interpretation = append(interpretation, pairLines(raw.PairwiseAngles)...)

	return model.EfficiencySummary{
		EfficiencyVector:     raw.Vectors.Efficiency,
		EfficiencyScore:      raw.EfficiencyScore,
		BalanceFactorDegrees: raw.BalanceFactorDegrees,
		PairwiseAngles:       raw.PairwiseAngles,
		Classification:       classify(alignment, balance),
		Interpretation:       interpretation,
	}
}

func classify(alignment, balance string) model.Classification {
	switch {
	case alignment == alignmentHigh && balance != balanceAntagonistic:
		return model.ClassificationAligned
	case alignment == alignmentLow || balance == balanceAntagonistic:
		return model.ClassificationFragmented
	default:
		return model.ClassificationImbalanced
	}
}

func alignmentTier(score float64) string {
	switch {
	case score > scoreHighThreshold:
		return alignmentHigh
	case score < scoreLowThreshold:
		return alignmentLow
	default:
		return alignmentModerate
	}
}

func balanceTier(degrees float64) string {
	switch {
	case degrees < balanceSynergyMax:
		return balanceSynergy
	case degrees > balanceAntagonisticMin:
		return balanceAntagonistic
	default:
		return balanceIndependence
	}
}

func pairTag(degrees float64) string {
	switch {
	case degrees < pairAlignedMax:
		return pairAligned
	case degrees > pairConflictingMin:
		return pairConflicting
	default:
		return pairIndependent
	}
}

func alignmentText(tier string, score float64) string {
	switch tier {
	case alignmentHigh:
		return fmt.Sprintf("Efficiency alignment is high (score %.3f): the efficiency direction closely tracks all three signals.", score)
	case alignmentModerate:
		return fmt.Sprintf("Efficiency alignment is moderate (score %.3f): the signals pull in partially compatible directions.", score)
	default:
		return fmt.Sprintf("Efficiency alignment is low (score %.3f): no single direction serves all three signals well.", score)
	}
}

func balanceText(tier string, degrees float64) string {
	switch tier {
	case balanceSynergy:
		return fmt.Sprintf("Signal balance shows synergy (mean separation %.1f deg): the signals reinforce one another.", degrees)
	case balanceIndependence:
		return fmt.Sprintf("Signal balance shows independence (mean separation %.1f deg): the signals operate on separate axes.", degrees)
	default:
		return fmt.Sprintf("Signal balance is antagonistic (mean separation %.1f deg): the signals work against one another.", degrees)
	}
}

func pairLines(angles model.PairwiseAngles) []string {
	pairs := []struct {
		first, second string
		degrees       float64
	}{
		{"influence", "productivity", angles.InfluenceProductivity},
		{"influence", "creativity", angles.InfluenceCreativity},
		{"productivity", "creativity", angles.ProductivityCreativity},
	}

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		tag := pairTag(p.degrees)
		line := fmt.Sprintf("%s vs %s: %s (%.1f deg)", p.first, p.second, tag, p.degrees)
		if tag == pairConflicting {
			line += fmt.Sprintf("; %s may be suppressing %s", p.first, p.second)
		}
		lines = append(lines, line)
	}
	return lines
}
