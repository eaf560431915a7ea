package sentiment

import "testing"

const angerID = "bruce-banner"

// fixed returns an analyzer with no drift and no jitter.
func fixed() *Analyzer {
	return NewAnalyzerWithRand(angerID,
		func() float64 { return 1.0 },
		func() int { return 0 },
	)
}

func TestAnalyzeNeutralMessage(t *testing.T) {
	result := fixed().Analyze("meet me at the workshop at noon", "pepper-potts")
	if result.RelationshipDelta != 0 {
		t.Fatalf("expected zero relationship delta, got %d", result.RelationshipDelta)
	}
	if result.AngerDelta != 0 {
		t.Fatalf("expected zero anger delta, got %d", result.AngerDelta)
	}
	if result.Mood != Neutral {
		t.Fatalf("expected neutral mood, got %s", result.Mood)
	}
}

func TestAnalyzeEmptyMessageIsNeutral(t *testing.T) {
	result := fixed().Analyze("   ", "pepper-potts")
	if result.Mood != Neutral || result.RelationshipDelta != 0 {
		t.Fatalf("expected neutral result, got %+v", result)
	}
}

func TestAnalyzePositiveOutweighsNegative(t *testing.T) {
	result := fixed().Analyze("thanks, you're the best, that was amazing", "pepper-potts")
	if result.RelationshipDelta <= 0 {
		t.Fatalf("expected positive delta, got %d", result.RelationshipDelta)
	}
	if result.RelationshipDelta > 5 {
		t.Fatalf("relationship delta exceeds cap: %d", result.RelationshipDelta)
	}
	if result.Mood != Positive {
		t.Fatalf("expected positive mood, got %s", result.Mood)
	}
}

func TestAnalyzeNegativeCappedAtMinusEight(t *testing.T) {
	result := fixed().Analyze("you are useless and annoying and boring, I hate this, whatever", "rhodey")
	if result.RelationshipDelta != -8 {
		t.Fatalf("expected capped -8, got %d", result.RelationshipDelta)
	}
	if result.Mood != Negative {
		t.Fatalf("expected negative mood, got %s", result.Mood)
	}
}

func TestAnalyzeTieProducesZero(t *testing.T) {
	result := fixed().Analyze("thanks but this is boring", "rhodey")
	if result.RelationshipDelta != 0 {
		t.Fatalf("expected 0 on tie, got %d", result.RelationshipDelta)
	}
	if result.Mood != Neutral {
		t.Fatalf("expected neutral mood on tie, got %s", result.Mood)
	}
}

func TestAnalyzeProvocativeForcesMood(t *testing.T) {
	result := fixed().Analyze("come on, hulk smash something for me", angerID)
	if result.Mood != Provocative {
		t.Fatalf("expected provocative mood, got %s", result.Mood)
	}
	if result.AngerDelta < provocativeIncrement {
		t.Fatalf("expected large anger increment, got %d", result.AngerDelta)
	}
}

func TestAnalyzeAngerIgnoredForOtherPersonas(t *testing.T) {
	result := fixed().Analyze("hulk smash", "nick-fury")
	if result.AngerDelta != 0 {
		t.Fatalf("anger tracked for wrong persona: %d", result.AngerDelta)
	}
	if result.Mood == Provocative {
		t.Fatal("provocative mood should only apply to the anger persona")
	}
}

func TestAnalyzeCalmingClampedAtFloor(t *testing.T) {
	result := fixed().Analyze("calm down, relax, breathe, meditate, take it easy, it's okay", angerID)
	if result.AngerDelta < -10 {
		t.Fatalf("anger delta below floor: %d", result.AngerDelta)
	}
	if result.AngerDelta >= 0 {
		t.Fatalf("expected net calming, got %d", result.AngerDelta)
	}
}

func TestAnalyzeIdleDriftOnNeutral(t *testing.T) {
	drifting := NewAnalyzerWithRand(angerID,
		func() float64 { return 0.0 }, // always below the drift chance
		func() int { return 0 },
	)
	result := drifting.Analyze("what's the weather like", angerID)
	if result.AngerDelta != 1 {
		t.Fatalf("expected +1 idle drift, got %d", result.AngerDelta)
	}
	if result.Mood != Neutral {
		t.Fatalf("drift should not change mood, got %s", result.Mood)
	}
}

func TestAnalyzeJitterBounded(t *testing.T) {
	jittery := NewAnalyzerWithRand(angerID,
		func() float64 { return 1.0 },
		func() int { return -1 },
	)
	result := jittery.Analyze("what's the weather like", angerID)
	if result.AngerDelta != -1 {
		t.Fatalf("expected jitter of -1, got %d", result.AngerDelta)
	}
}

func TestRelationshipDeltaAlwaysInRange(t *testing.T) {
	messages := []string{
		"", "thanks thanks thanks amazing great awesome brilliant",
		"hate hate stupid useless idiot terrible worst",
		"normal message", "hulk smash calm relax",
	}
	a := fixed()
	for _, personaID := range []string{angerID, "pepper-potts", "unknown"} {
		for _, msg := range messages {
			r := a.Analyze(msg, personaID)
			if r.RelationshipDelta < -8 || r.RelationshipDelta > 5 {
				t.Fatalf("relationship delta out of range for %q: %d", msg, r.RelationshipDelta)
			}
		}
	}
}
