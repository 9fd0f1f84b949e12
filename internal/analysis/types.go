package analysis

// DayRecord is one diary day in the shape the external analyzer consumes.
// The key names are part of the published contract and must not change.
type DayRecord struct {
	Date         string   `json:"date"`
	MoodNum      int      `json:"mood_num"`
	MoodLabel    string   `json:"mood_label"`
	Energy       string   `json:"energy"`
	Fatigue      string   `json:"fatigue"`
	SleepHours   *float64 `json:"sleep_hours"`
	SleepQuality string   `json:"sleep_quality"`
	Stress       int      `json:"stress_1_5"`
	Overload     int      `json:"overload_0_3"`
	HypoSymptoms []string `json:"hypo_symptoms"`
	DepSymptoms  []string `json:"dep_symptoms"`
	Trigger      string   `json:"trigger"`
	Helped       string   `json:"helped"`
	Note         string   `json:"note"`
}

// Usage reports the analyzer's token accounting for one invocation.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Period spans the analyzed window.
type Period struct {
	From         string `json:"from"`
	To           string `json:"to"`
	CoverageDays int    `json:"coverage_days"`
	TotalDays    int    `json:"total_days"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type MoodMetrics struct {
	Avg                  float64 `json:"avg"`
	Min                  int     `json:"min"`
	Max                  int     `json:"max"`
	DaysGePlus2          int     `json:"days_ge_+2"`
	DaysLeMinus2         int     `json:"days_le_-2"`
	LongestStreakNonzero int     `json:"longest_streak_nonzero"`
}

type SleepMetrics struct {
	AvgHours    float64 `json:"avg_h"`
	OutliersLt5 int     `json:"outliers_lt5"`
	OutliersGt9 int     `json:"outliers_gt9_10"`
	QualityMode string  `json:"quality_mode"`
}

type StressMetrics struct {
	Avg     float64 `json:"avg_1_5"`
	DaysGe4 int     `json:"days_ge4"`
}

type OverloadMetrics struct {
	Avg float64 `json:"avg_0_3"`
}

type Metrics struct {
	Mood     MoodMetrics     `json:"mood"`
	Sleep    SleepMetrics    `json:"sleep"`
	Stress   StressMetrics   `json:"stress"`
	Overload OverloadMetrics `json:"overload"`
}

type MixedFeatures struct {
	Present bool   `json:"present"`
	Note    string `json:"note"`
}

type Symptoms struct {
	HypomanicTop  []LabelCount   `json:"hypomanic_top"`
	DepressiveTop []LabelCount   `json:"depressive_top"`
	MixedFeatures *MixedFeatures `json:"mixed_features,omitempty"`
}

type EventTrend struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Trend    string `json:"post_24_72h_trend"`
}

// GeneralResult is the general clinical-summary schema variant.
type GeneralResult struct {
	Period           Period       `json:"period"`
	Metrics          Metrics      `json:"metrics"`
	Symptoms         Symptoms     `json:"symptoms"`
	Events           []EventTrend `json:"events"`
	HelpedTop        []LabelCount `json:"helped_top"`
	RedFlags         []string     `json:"red_flags"`
	DiscussionPoints []string     `json:"discussion_points"`
	MarkdownSummary  string       `json:"markdown_summary"`
}

type CriticalWarning struct {
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Metric      string `json:"metric"`
}

type MixedStateCombination struct {
	Combination string `json:"combination"`
	Count       int    `json:"count"`
}

type MixedStates struct {
	FrequencyPercent float64                 `json:"frequency_percent"`
	DaysCount        int                     `json:"days_count"`
	TotalDays        int                     `json:"total_days"`
	TopCombinations  []MixedStateCombination `json:"top_combinations"`
}

type TriggerImpact struct {
	Name         string   `json:"name"`
	Icon         string   `json:"icon"`
	Frequency    int      `json:"frequency"`
	ImpactScore  float64  `json:"impact_score"`
	MoodChange   float64  `json:"mood_change"`
	StressChange float64  `json:"stress_change"`
	Timeframe    string   `json:"timeframe"`
	Examples     []string `json:"examples"`
}

// BPIIResult is the BP-II-specialized schema variant with quantified
// warnings, mixed-state frequency and per-trigger impact scoring.
type BPIIResult struct {
	Period           Period            `json:"period"`
	CriticalWarnings []CriticalWarning `json:"critical_warnings"`
	MixedStates      MixedStates       `json:"mixed_states"`
	Triggers         []TriggerImpact   `json:"triggers"`
	HelpedTop        []LabelCount      `json:"helped_top"`
	Metrics          Metrics           `json:"metrics"`
	Symptoms         Symptoms          `json:"symptoms"`
}
