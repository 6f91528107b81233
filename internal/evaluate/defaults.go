package evaluate

import "stepquest/internal/ageband"

// defaultFeedback holds the canned positive feedback used when grading
// itself fails, phrased per band.
var defaultFeedback = map[ageband.Band]string{
	ageband.Band5to7:   "Great try! You're doing wonderful thinking. Let's keep going!",
	ageband.Band8to10:  "Nice work! You're clearly thinking about this. Let's see what comes next.",
	ageband.Band11to13: "Good effort — you're engaging with the idea. Let's build on that in the next step.",
	ageband.Band14to17: "Solid attempt. You're working through the concept; let's push further in the next step.",
}

// defaultResult is the deterministic substitute when the grading call
// fails: positive, score 75, counts as correct so the journey moves on.
func defaultResult(band ageband.Band) Result {
	msg, ok := defaultFeedback[band]
	if !ok {
		msg = defaultFeedback[ageband.DefaultBand]
	}
	return Result{
		Message:   msg,
		IsCorrect: true,
		Score:     DefaultScore,
	}
}
