package sentiment

import (
	"math/rand/v2"
	"strings"
)

// Mood classifies the overall tenor of a single message.
type Mood string

const (
	Neutral     Mood = "neutral"
	Positive    Mood = "positive"
	Negative    Mood = "negative"
	Provocative Mood = "provocative"
)

// Result carries the per-message deltas a session may apply to its running
// relationship and anger counters. AngerDelta is meaningful only for the
// anger-tracking persona.
type Result struct {
	RelationshipDelta int  `json:"relationshipDelta"`
	AngerDelta        int  `json:"angerDelta"`
	Mood              Mood `json:"mood"`
}

const (
	relationshipGainCap  = 5
	relationshipLossCap  = 8
	provocativeIncrement = 15
	triggerIncrement     = 6
	calmingDecrement     = 5
	angerFloor           = -10
	idleDriftChance      = 0.2
)

var positiveWords = []string{
	"thanks", "thank you", "love", "great", "awesome", "amazing",
	"brilliant", "appreciate", "well done", "good job", "miss you",
	"sorry", "proud of you", "you're the best",
}

var negativeWords = []string{
	"hate", "stupid", "shut up", "annoying", "useless", "idiot",
	"terrible", "worst", "leave me alone", "boring", "whatever",
	"don't care", "go away",
}

// Banner-specific sets. Provocative phrases deliberately poke the other guy;
// trigger words raise baseline agitation; calming words lower it.
var provocativePhrases = []string{
	"hulk smash", "make you angry", "angry yet", "lose control",
	"big green", "turn green", "the other guy wants out", "let him out",
}

var angerTriggers = []string{
	"angry", "furious", "rage", "smash", "destroy", "fight", "break something",
}

var calmingPhrases = []string{
	"calm", "relax", "breathe", "peaceful", "meditate", "it's okay",
	"take it easy", "deep breath",
}

// Analyzer scores messages for relationship and anger deltas. The random
// source is injectable so tests can pin down drift and jitter.
type Analyzer struct {
	angerPersonaID string
	randFloat      func() float64
	randJitter     func() int // returns -1, 0, or +1
}

// NewAnalyzer builds an analyzer wired to the default random source.
// angerPersonaID names the single persona whose agitation is tracked.
func NewAnalyzer(angerPersonaID string) *Analyzer {
	return &Analyzer{
		angerPersonaID: angerPersonaID,
		randFloat:      rand.Float64,
		randJitter:     func() int { return rand.IntN(3) - 1 },
	}
}

// NewAnalyzerWithRand builds an analyzer with caller-supplied randomness.
func NewAnalyzerWithRand(angerPersonaID string, randFloat func() float64, randJitter func() int) *Analyzer {
	return &Analyzer{angerPersonaID: angerPersonaID, randFloat: randFloat, randJitter: randJitter}
}

// Analyze scores one message against the keyword tables. It never fails:
// empty or matchless input yields a neutral result.
func (a *Analyzer) Analyze(message, personaID string) Result {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return a.finish(Result{Mood: Neutral}, personaID, true)
	}

	positives := countHits(normalized, positiveWords)
	negatives := countHits(normalized, negativeWords)

	result := Result{Mood: Neutral}
	switch {
	case positives > negatives:
		result.RelationshipDelta = minInt(relationshipGainCap, 2*positives)
		result.Mood = Positive
	case negatives > positives:
		result.RelationshipDelta = -minInt(relationshipLossCap, 3*negatives)
		result.Mood = Negative
	}

	if personaID != a.angerPersonaID {
		return result
	}

	provocations := countHits(normalized, provocativePhrases)
	triggers := countHits(normalized, angerTriggers)
	calmings := countHits(normalized, calmingPhrases)

	result.AngerDelta = provocations*provocativeIncrement + triggers*triggerIncrement - calmings*calmingDecrement
	if provocations > 0 {
		result.Mood = Provocative
	}

	neutral := positives == 0 && negatives == 0 && provocations == 0 && triggers == 0 && calmings == 0
	return a.finish(result, personaID, neutral)
}

// finish applies the anger persona's idle drift, jitter, and floor clamp.
func (a *Analyzer) finish(result Result, personaID string, neutral bool) Result {
	if personaID != a.angerPersonaID {
		return result
	}
	if neutral && a.randFloat() < idleDriftChance {
		result.AngerDelta++
	}
	result.AngerDelta += a.randJitter()
	if result.AngerDelta < angerFloor {
		result.AngerDelta = angerFloor
	}
	return result
}

func countHits(normalized string, words []string) int {
	hits := 0
	for _, word := range words {
		if strings.Contains(normalized, word) {
			hits++
		}
	}
	return hits
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
