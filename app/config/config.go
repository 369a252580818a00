package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AdjustmentWeights are the hand-tuned ranking adjustments applied on top of
// the raw similarity when several fuzzy candidates tie. They affect ranking
// only; the reported score is always the raw similarity. Values are kept
// equal to the legacy constants for behavioral compatibility.
type AdjustmentWeights struct {
	ExactBase        float64 `yaml:"exact_base" json:"exact_base"`                 // base name equals query
	QueryInBase      float64 `yaml:"query_in_base" json:"query_in_base"`           // query substring of base name
	BaseInQuery      float64 `yaml:"base_in_query" json:"base_in_query"`           // base name substring of query
	NoOverlap        float64 `yaml:"no_overlap" json:"no_overlap"`                 // penalty: none of the above
	RegionAgree      float64 `yaml:"region_agree" json:"region_agree"`             // candidate carries the query's region
	RegionConflict   float64 `yaml:"region_conflict" json:"region_conflict"`       // penalty: qualified candidate, unqualified query match
	LengthGap        float64 `yaml:"length_gap" json:"length_gap"`                 // penalty: |len diff| > 3
	LongerCandidate  float64 `yaml:"longer_candidate" json:"longer_candidate"`     // penalty: candidate longer by > 4
	LongNames        float64 `yaml:"long_names" json:"long_names"`                 // both names exceed 15 chars
	UnitKeywordBoth  float64 `yaml:"unit_keyword_both" json:"unit_keyword_both"`   // both carry an admin-unit keyword
	UnitKeywordQuery float64 `yaml:"unit_keyword_query" json:"unit_keyword_query"` // penalty: only the query carries one
}

// Thresholds control match acceptance and the exact/approximate boundary,
// both on the 0-100 raw score scale.
type Thresholds struct {
	Accept float64 `yaml:"accept" json:"accept"`
	Exact  float64 `yaml:"exact" json:"exact"`
}

// MatcherCfg is the full matcher configuration.
type MatcherCfg struct {
	CandidateLimit int               `yaml:"candidate_limit" json:"candidate_limit"` // first-word shortlist size
	FuzzyLimit     int               `yaml:"fuzzy_limit" json:"fuzzy_limit"`         // whole-string fallback shortlist size
	FirstWordJaro  float64           `yaml:"first_word_jaro" json:"first_word_jaro"` // fuzzy first-word gate (0-1)
	Weights        AdjustmentWeights `yaml:"weights" json:"weights"`
	Thresholds     Thresholds        `yaml:"thresholds" json:"thresholds"`
}

var C = Default()

// Default returns the configuration with the legacy constants.
func Default() MatcherCfg {
	return MatcherCfg{
		CandidateLimit: 20,
		FuzzyLimit:     10,
		FirstWordJaro:  0.90,
		Weights: AdjustmentWeights{
			ExactBase:        50,
			QueryInBase:      30,
			BaseInQuery:      20,
			NoOverlap:        30,
			RegionAgree:      40,
			RegionConflict:   25,
			LengthGap:        20,
			LongerCandidate:  25,
			LongNames:        5,
			UnitKeywordBoth:  15,
			UnitKeywordQuery: 15,
		},
		Thresholds: Thresholds{
			Accept: 85,
			Exact:  95,
		},
	}
}

// Load reads a yaml file over the defaults into C. ENV override
// MATCH_THRESHOLD adjusts the acceptance threshold.
func Load(path string) error {
	C = Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return err
	}
	if v := os.Getenv("MATCH_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			C.Thresholds.Accept = t
		}
	}
	return nil
}
