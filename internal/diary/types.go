package diary

import "time"

// Mood bands as stored in the diary. The journal itself is kept in Czech,
// so the band labels are the literal strings the patient and clinician see.
const (
	BandSevereDepression    = "Těžká deprese"
	BandDepression          = "Deprese"
	BandMildDepression      = "Lehká deprese"
	BandStable              = "Stabilní"
	BandMildHypomania       = "Lehká hypománie"
	BandHypomania           = "Hypománie"
	BandPronouncedHypomania = "Výrazná hypománie"
	BandUnknown             = "Neznámý"
)

// Dominant state over a window of entries.
type State string

const (
	StateDepression State = "Deprese"
	StateStable     State = "Stabilní"
	StateHypomania  State = "Hypománie"
	StateMixed      State = "Smíšené"
)

// RawEntry is one diary day exactly as the row-store returns it. Field
// names are the store's literal column names; numeric columns can arrive
// as either numbers or strings, which is why several fields are typed any.
type RawEntry struct {
	ID                 int     `json:"Id"`
	Date               string  `json:"Datum"`
	Mood               string  `json:"Dominatní nálada"`
	Energy             string  `json:"Energie"`
	Fatigue            string  `json:"Únava"`
	SleepHours         any     `json:"Spánek (délka)"`
	SleepQuality       string  `json:"Spánek"`
	Stress             any     `json:"Stres (1–5)"`
	Overload           string  `json:"Přetížení"`
	HypomanicSymptoms  string  `json:"Hypomanické příznaky"`
	DepressiveSymptoms string  `json:"Depresivní příznaky"`
	Trigger            *string `json:"Výrazný spouštěč dne"`
	Helped             *string `json:"Co pomohlo?"`
	Note               *string `json:"Poznámka"`
}

// NormalizedEntry is the immutable typed view of one RawEntry. It is
// recomputed from scratch whenever raw data refreshes and never mutated.
//
// The Defaulted/Missing flags distinguish a field that genuinely read zero
// from one the parser could not make sense of, so downstream consumers can
// report "missing data" instead of a silent zero.
type NormalizedEntry struct {
	ID   int
	Date time.Time
	// DateString keeps the store's literal date for cache keys and wire
	// payloads, which compare dates lexically.
	DateString string

	Mood          int
	MoodDefaulted bool
	MoodLabel     string

	Energy       string
	Fatigue      string
	SleepHours   float64
	SleepMissing bool
	SleepQuality string

	Stress        int
	StressMissing bool

	Overload          int
	OverloadDefaulted bool

	HypomanicSymptoms  []string
	DepressiveSymptoms []string
	// MixedState is the same-day co-occurrence signal: both symptom lists
	// non-empty. The analyzer applies its own, stricter 48-hour swing
	// heuristic on top; the two are deliberately separate properties.
	MixedState bool

	Trigger string
	Helped  string
	Note    string
}
