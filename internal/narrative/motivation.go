package narrative

import "math/rand"

// Motivation message pools by the recipient's standing.
var (
	MotivationHigh = []string{
		"Your valor is unmatched! The kingdom sings your praises!",
		"You are a true knight of the realm! Keep leading the charge!",
		"The bards will write songs of your deeds!",
	}
	MotivationGood = []string{
		"Your shield is strong and your sword is sharp!",
		"The kingdom grows stronger with your every action!",
		"Your efforts inspire your allies!",
	}
	MotivationAverage = []string{
		"Every step forward is a victory!",
		"The path is long, but you walk it with courage!",
		"Your persistence is the kingdom's hope!",
	}
	MotivationLow = []string{
		"The kingdom needs your strength—rise up, brave soul!",
		"Even the mightiest knights stumble. Tomorrow is a new day!",
		"Your allies believe in you! Rally to the cause!",
	}
	MotivationPositiveStreak = []string{
		"Your good deeds shine like a beacon!",
		"The light of your habits wards off the darkness!",
		"You are a paragon of virtue!",
	}
	MotivationNegativeStreak = []string{
		"Beware, the vampires grow stronger!",
		"Darkness creeps in—turn the tide!",
		"The kingdom needs your resolve to resist temptation!",
	}
)

// EligibleMotivations returns the message pool for a recipient:
// a band chosen by their progress percentage, extended with streak
// pools when the recipient's completions are one-sided.
func EligibleMotivations(progress, posCount, negCount int) []string {
	var pool []string
	switch {
	case progress >= 80:
		pool = MotivationHigh
	case progress >= 60:
		pool = MotivationGood
	case progress >= 40:
		pool = MotivationAverage
	default:
		pool = MotivationLow
	}
	out := make([]string, len(pool))
	copy(out, pool)
	if posCount >= 5 && negCount == 0 {
		out = append(out, MotivationPositiveStreak...)
	}
	if negCount >= 5 && posCount == 0 {
		out = append(out, MotivationNegativeStreak...)
	}
	return out
}

// MotivationMessage draws one eligible message for the recipient.
func MotivationMessage(progress, posCount, negCount int, rng *rand.Rand) string {
	pool := EligibleMotivations(progress, posCount, negCount)
	return pool[rng.Intn(len(pool))]
}
