package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Variant selects which of the two published output schemas the analyzer
// is instructed to produce. Both ride the same extraction rules and
// time-pattern heuristics; only the output shape differs.
type Variant string

const (
	VariantGeneral Variant = "general"
	VariantBPII    Variant = "bpii"
)

// ParseVariant resolves a request value, defaulting to the general summary.
func ParseVariant(s string) (Variant, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", string(VariantGeneral):
		return VariantGeneral, nil
	case string(VariantBPII):
		return VariantBPII, nil
	default:
		return "", fmt.Errorf("unknown analysis variant %q", s)
	}
}

// EventCategories are the fixed normalization targets for trigger/note
// text. The analyzer may assign several to one day.
var EventCategories = []string{
	"návštěva_lékaře",
	"sociální_interakce",
	"pracovní_zátěž",
	"fyzická_zátěž/bolest",
	"spánkový_deficit",
	"konflikt/stresor",
	"cestování/změna_rutiny",
	"nemoc/somatika",
	"lékový_režim/ADL_změna",
	"počasí/teplo",
	"jiné",
}

// InterventionCategories are the fixed normalization targets for the
// "what helped" free text.
var InterventionCategories = []string{
	"KBT/techniky",
	"odpočinek",
	"spánek/nižší stimuly",
	"procházka/pohyb",
	"sociální opora",
	"organizace/plán",
	"meditace/dýchání",
	"farmako-adherence (bez doporučení)",
}

// requiredKeys lists the top-level keys each schema variant must contain.
// The external model is instructed to honor these names exactly; a response
// missing any of them is a contract violation, not something to coerce.
var requiredKeys = map[Variant][]string{
	VariantGeneral: {"period", "metrics", "symptoms", "events", "helped_top", "red_flags", "discussion_points", "markdown_summary"},
	VariantBPII:    {"period", "critical_warnings", "mixed_states", "triggers", "helped_top", "metrics", "symptoms"},
}

const extractionRules = `Extraktivní pravidla (pro text „trigger" a „note"):
- Detekuj události/kontexty a normalizuj je do kategorií (může jich být více v jednom dni):
  { "návštěva_lékaře", "sociální_interakce", "pracovní_zátěž",
    "fyzická_zátěž/bolest", "spánkový_deficit", "konflikt/stresor",
    "cestování/změna_rutiny", "nemoc/somatika", "lékový_režim/ADL_změna",
    "počasí/teplo", "jiné" }
- Příklady klíčových frází:
  - návštěva_lékaře: "doktor", "psychiatr", "praktik", "kontrola", "vyšetření"
  - sociální_interakce: "návštěva", "schůzka", "rodina", "kamarád", "crowd", "nákupy"
  - fyzická_zátěž/bolest: "bolest", "psoriatická artritida", "unava po zátěži", "cvičení"
  - spánkový_deficit: "málo spánku", "<5 h", "nespal", "ponocování"
  - konflikt/stresor: "hádka", "stres", "deadline", "přetížení"
  - cestování/změna_rutiny: "cesta", "řízení", "mimo domov", "změna režimu"
  - nemoc/somatika: "nachlazení", "zánět", "horečka", "zhoršené trávení"
  - lékový_režim/ADL_změna: "změna dávky", "vynechání", "nový lék", "NLPZ"
  - počasí/teplo: "vedro", "tlak", "fronta"
- Neomezuj se jen na klíčová slova – ber v potaz význam (synonyma, kontext).
- V části „co pomohlo" normalizuj intervence: {"KBT/techniky", "odpočinek", "spánek/nižší stimuly", "procházka/pohyb", "sociální opora", "organizace/plán", "meditace/dýchání", "farmako-adherence (bez doporučení)"}`

const timePatternRules = `Analýza časových vzorců (heuristiky, bez tvrdé kauzality):
- Clustery nálady: hypománie = mood_num ≥ +2 po ≥2 dnech; deprese = mood_num ≤ −2 po ≥3 dnech.
- Smíšené rysy: ve stejný den přítomny alespoň 1 hypomanický a 1 depresivní příznak NEBO skok nálady ≤−1 → ≥+1 (či opačně) v rámci 48 h.
- Spánek odlehlý: <5 h nebo >9–10 h.
- Vysoký stres: 4–5/5. Přetížení významné: overload ≥2.
- Pro každou z detekovaných událostí (např. „návštěva_lékaře", „sociální_interakce"):
  * spočti, kolikrát se vyskytla v období,
  * a zda v průměru do 24–72 h po události dochází k posunu nálady (Δmood) nebo nárůstu stresu/přetížení; uveď to jako orientační trend (např. „často následoval pokles o ~0.6 v 48 h").
  * pokud nejsou data dostatečná, uveď „trend nejednoznačný".`

const inputSchemaBlock = `Vstup dostaneš jako JSON pole denních záznamů se schématem (CZE):
- date (YYYY-MM-DD)
- mood_num (−3..+3), mood_label (text)
- energy {Nízká|Střední|Vysoká}
- fatigue {Mírná|Střední|Silná}
- sleep_hours (float), sleep_quality {Špatný|Průměrný|Dobrý}
- stress_1_5 (int)
- overload_0_3 (int)
- hypo_symptoms [text], dep_symptoms [text]
- trigger (text)
- helped (text)
- note (text)`

const safetyRules = `Bezpečnost a tón:
- Piš stručně, česky, klinicky; nepřidávej metodiku ani interní úvahy.
- Neuváděj léčebná doporučení ani změny farmakoterapie; v závěru pouze „Body k diskuzi" (neutrální formulace „zvážit/ověřit").
- Pokud něco chybí, explicitně napiš „chybějící data" u dané metriky.`

const generalOutputSchema = `JSON schéma:
{
  "period": { "from": "YYYY-MM-DD", "to": "YYYY-MM-DD", "coverage_days": 0, "total_days": 0 },
  "metrics": {
    "mood": { "avg": 0, "min": 0, "max": 0, "days_ge_+2": 0, "days_le_-2": 0, "longest_streak_nonzero": 0 },
    "sleep": { "avg_h": 0, "outliers_lt5": 0, "outliers_gt9_10": 0, "quality_mode": "Průměrný" },
    "stress": { "avg_1_5": 0, "days_ge4": 0 },
    "overload": { "avg_0_3": 0 }
  },
  "symptoms": {
    "hypomanic_top": [{"label": "…", "count": 0}],
    "depressive_top": [{"label": "…", "count": 0}],
    "mixed_features": { "present": false, "note": "" }
  },
  "events": [
    { "category": "návštěva_lékaře", "count": 0, "post_24_72h_trend": "nejednoznačné" }
  ],
  "helped_top": [{"label": "KBT/techniky", "count": 0}],
  "red_flags": ["…"],
  "discussion_points": ["…", "…", "…"],
  "markdown_summary": "…"
}`

const bpiiOutputSchema = `JSON schéma:
{
  "period": { "from": "YYYY-MM-DD", "to": "YYYY-MM-DD", "coverage_days": 0, "total_days": 0 },
  "critical_warnings": [
    { "priority": "high|medium|info", "title": "…", "description": "…", "metric": "např. 45% dní" }
  ],
  "mixed_states": {
    "frequency_percent": 0,
    "days_count": 0,
    "total_days": 0,
    "top_combinations": [{"combination": "Zrychlené myšlení + Silná únava", "count": 0}]
  },
  "triggers": [
    { "name": "…", "icon": "emoji", "frequency": 0, "impact_score": 0, "mood_change": 0, "stress_change": 0, "timeframe": "24h|48h|72h", "examples": ["…"] }
  ],
  "helped_top": [{"label": "KBT/techniky", "count": 0}],
  "metrics": {
    "mood": { "avg": 0, "min": 0, "max": 0, "days_ge_+2": 0, "days_le_-2": 0, "longest_streak_nonzero": 0 },
    "sleep": { "avg_h": 0, "outliers_lt5": 0, "outliers_gt9_10": 0, "quality_mode": "Průměrný" },
    "stress": { "avg_1_5": 0, "days_ge4": 0 },
    "overload": { "avg_0_3": 0 }
  },
  "symptoms": {
    "hypomanic_top": [{"label": "…", "count": 0}],
    "depressive_top": [{"label": "…", "count": 0}]
  }
}`

// SystemPrompt renders the fixed clinician-to-clinician instruction for
// one variant and period. The wording is part of the protocol; the model
// is expected to return strict JSON matching the embedded schema.
func SystemPrompt(v Variant, start, end string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Jsi klinický psychiatr. Píšeš stručný, datově podložený souhrn pro psychiatra („lékař-pro-lékaře\") z období %s–%s u pacienta s bipolární poruchou II. typu.\n\n", start, end)
	b.WriteString(inputSchemaBlock)
	b.WriteString("\n\n")

	switch v {
	case VariantBPII:
		b.WriteString(`Cíl:
1) Kvantifikuj kritická varování (prioritizovaná, s konkrétní metrikou).
2) Vyhodnoť smíšené stavy: frekvenci, počet dní a nejčastější kombinace příznaků.
3) Pro každý opakovaný spouštěč urči frekvenci, orientační dopad na náladu a stres (Δ v 24–72 h) a skóre dopadu 1–10 s konkrétními příklady z dat.`)
	default:
		b.WriteString(`Cíl:
1) Shrni metriky a časové vzorce (nálada, spánek, stres, přetížení).
2) Vytěž z volného textu (trigger, note, helped) opakovaná témata a „klíčové momenty" a popiš jejich možnou souvislost s vývojem (opatrná formulace, bez kauzálních tvrzení).
3) Identifikuj red flags a navrhni 3–5 stručných bodů k diskuzi na kontrole.`)
	}
	b.WriteString("\n\n")
	b.WriteString(extractionRules)
	b.WriteString("\n\n")
	b.WriteString(timePatternRules)
	b.WriteString("\n\n")
	b.WriteString(safetyRules)
	b.WriteString("\n\n")
	b.WriteString("Formát výstupu:\n- Vrať výhradně strukturovaný JSON dle schématu níže.\n- Drž se přesně daných klíčů; žádné klíče nepřidávej ani nevynechávej.\n\n")
	if v == VariantBPII {
		b.WriteString(bpiiOutputSchema)
	} else {
		b.WriteString(generalOutputSchema)
	}
	return b.String()
}

// UserPrompt renders the data payload message.
func UserPrompt(records []DayRecord, start, end string) (string, error) {
	blob, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal day records: %w", err)
	}
	return fmt.Sprintf("Zde jsou data za období %s až %s (%d záznamů za poslední 3 měsíce):\n\n%s\n\nProveď analýzu a vrať výsledek ve formátu JSON.", start, end, len(records), blob), nil
}

// ValidateResult checks that a returned body is parseable JSON carrying
// every required top-level key for the variant. Anything less is a hard
// contract violation: the caller must not cache or display it.
func ValidateResult(raw []byte, v Variant) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("analyzer returned invalid JSON: %w", err)
	}
	keys, ok := requiredKeys[v]
	if !ok {
		return fmt.Errorf("unknown analysis variant %q", v)
	}
	var missing []string
	for _, k := range keys {
		if _, present := obj[k]; !present {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("analyzer response missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// StripCodeFences removes a surrounding markdown code fence if the model
// wrapped its JSON in one.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
