package ageband

import "testing"

func TestLookup_AllBands(t *testing.T) {
	for _, band := range All() {
		p := Lookup(band)
		if p.Band != band {
			t.Errorf("Lookup(%s) returned profile for %s", band, p.Band)
		}
		if p.StepCount < 3 || p.StepCount > 6 {
			t.Errorf("band %s: step count %d out of range [3,6]", band, p.StepCount)
		}
		if p.QuizQuestionCount == 0 {
			t.Errorf("band %s: zero quiz questions", band)
		}
		if p.StepStyle == "" || p.FeedbackTone == "" || p.Vocabulary == "" {
			t.Errorf("band %s: incomplete prompt guidance", band)
		}
	}
}

func TestLookup_UnknownDefaultsTo8to10(t *testing.T) {
	p := Lookup("42-99")
	if p.Band != Band8to10 {
		t.Fatalf("expected default band 8-10, got %s", p.Band)
	}

	if Lookup("") != Lookup("nonsense") {
		t.Fatal("unknown bands should all map to the same default")
	}
}

func TestLookup_Stable(t *testing.T) {
	a := Lookup(Band11to13)
	b := Lookup(Band11to13)
	if a != b {
		t.Fatal("Lookup must be stable across calls")
	}
}

func TestStepCountsAscendWithAge(t *testing.T) {
	prev := 0
	for _, band := range All() {
		p := Lookup(band)
		if p.StepCount < prev {
			t.Fatalf("step count decreased at band %s", band)
		}
		prev = p.StepCount
	}
}
