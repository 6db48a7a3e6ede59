package narrative

import "math/rand"

// KingdomTitleFallbacks is the pool used when no rule matches.
var KingdomTitleFallbacks = []string{
	"Aspirant Collective", "Hearthbound Band", "Vigorous Keep", "Emberwatch",
}

// KingdomTitleInput carries the kingdom-level stats the title rules
// read.
type KingdomTitleInput struct {
	Members        int
	AvgCompletions float64
	WinStreak      int
	MedievalWins   int
	VampireWins    int
}

// KingdomTitle ranks the kingdom's current standing into a weekly
// title. The rule ladder is deterministic; only the fallback draw is
// random.
func KingdomTitle(in KingdomTitleInput, rng *rand.Rand) string {
	switch {
	case in.WinStreak >= 5:
		return "The Unbroken Vanguard"
	case in.WinStreak >= 3:
		return "The Streakbound"
	case in.AvgCompletions >= 5 && in.Members >= 3:
		return "Steadfast Order"
	case in.Members >= 8:
		return "Rising Legion"
	case in.MedievalWins > in.VampireWins+2:
		return "Proud Defenders"
	case in.VampireWins > in.MedievalWins+2:
		return "Nightborn Coven"
	case in.AvgCompletions >= 3:
		return "Consistent Keep"
	}
	return KingdomTitleFallbacks[rng.Intn(len(KingdomTitleFallbacks))]
}
