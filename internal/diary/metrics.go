package diary

import "math"

// Fixed classification thresholds. These are clinical UI constants, not
// configuration.
const (
	mixedStateFraction  = 0.30
	depressionMeanMood  = -0.5
	hypomaniaMeanMood   = 0.5
	crisisMoodMagnitude = 2
	volatilityJump      = 2
	sleepOutlierLow     = 5.0
	sleepOutlierHigh    = 10.0
)

// Tier is a coarse three-step severity used by metric cards.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// AggregateMetrics summarizes a window of normalized entries for the
// dashboard. It has no identity of its own and is recomputed on every
// filter change.
type AggregateMetrics struct {
	DominantState State `json:"dominant_state"`

	StabilityScore int  `json:"stability_score"`
	StabilityTier  Tier `json:"stability_tier"`

	CrisisDays        int `json:"crisis_days"`
	CrisisDaysPercent int `json:"crisis_days_percent"`

	AvgStress  float64 `json:"avg_stress"`
	StressTier Tier    `json:"stress_tier"`

	AvgSleepHours float64 `json:"avg_sleep_hours"`
	SleepOutliers int     `json:"sleep_outliers"`
	SleepTier     Tier    `json:"sleep_tier"`
}

// CalculateMetrics computes AggregateMetrics over the given entries.
// Chronological order is not required; volatility uses the provided order.
// An empty input yields the defined zero state, never an error.
func CalculateMetrics(entries []NormalizedEntry) AggregateMetrics {
	if len(entries) == 0 {
		return AggregateMetrics{
			DominantState: StateStable,
			StabilityTier: TierLow,
			StressTier:    TierLow,
			SleepTier:     TierLow,
		}
	}

	n := float64(len(entries))

	var moodSum, absMoodSum, stressSum, sleepSum float64
	mixedDays, crisisDays, sleepOutliers := 0, 0, 0
	for _, e := range entries {
		moodSum += float64(e.Mood)
		absMoodSum += math.Abs(float64(e.Mood))
		stressSum += float64(e.Stress)
		sleepSum += e.SleepHours
		if e.MixedState {
			mixedDays++
		}
		if e.Mood >= crisisMoodMagnitude || e.Mood <= -crisisMoodMagnitude {
			crisisDays++
		}
		if e.SleepHours < sleepOutlierLow || e.SleepHours > sleepOutlierHigh {
			sleepOutliers++
		}
	}
	avgMood := moodSum / n

	state := StateStable
	switch {
	case float64(mixedDays)/n > mixedStateFraction:
		state = StateMixed
	case avgMood < depressionMeanMood:
		state = StateDepression
	case avgMood > hypomaniaMeanMood:
		state = StateHypomania
	}

	// Stability blends volatility (share of consecutive pairs with a mood
	// jump of 2 or more, inverted) with neutrality (distance of the mean
	// absolute mood from the neutral zero, inverted). A single entry has
	// no pairs to violate, so its volatility score is 1.
	volatilityScore := 1.0
	if len(entries) > 1 {
		jumps := 0
		for i := 1; i < len(entries); i++ {
			if math.Abs(float64(entries[i].Mood-entries[i-1].Mood)) >= volatilityJump {
				jumps++
			}
		}
		volatilityScore = 1 - float64(jumps)/float64(len(entries)-1)
	}
	neutralityScore := 1 - absMoodSum/n/3
	stability := int(math.Round(100 * (0.5*volatilityScore + 0.5*neutralityScore)))

	avgStress := roundTo1(stressSum / n)
	avgSleep := roundTo1(sleepSum / n)

	return AggregateMetrics{
		DominantState: state,

		StabilityScore: stability,
		StabilityTier:  stabilityTier(stability),

		CrisisDays:        crisisDays,
		CrisisDaysPercent: int(math.Round(100 * float64(crisisDays) / n)),

		AvgStress:  avgStress,
		StressTier: stressTier(avgStress),

		AvgSleepHours: avgSleep,
		SleepOutliers: sleepOutliers,
		SleepTier:     sleepTier(sleepOutliers, len(entries)),
	}
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

func stabilityTier(score int) Tier {
	switch {
	case score > 70:
		return TierHigh
	case score > 40:
		return TierMedium
	default:
		return TierLow
	}
}

func stressTier(avg float64) Tier {
	switch {
	case avg > 3.5:
		return TierHigh
	case avg > 2.5:
		return TierMedium
	default:
		return TierLow
	}
}

func sleepTier(outliers, total int) Tier {
	if total == 0 {
		return TierLow
	}
	if float64(outliers) > 0.2*float64(total) {
		return TierHigh
	}
	return TierLow
}
