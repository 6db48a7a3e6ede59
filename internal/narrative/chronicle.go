package narrative

import (
	"fmt"
	"strings"

	"habithold/internal/model"
	"habithold/internal/scoring"
)

// WeekReport feeds the single-week chronicle.
type WeekReport struct {
	KingdomName string
	WeekKey     string
	Members     int
	Stats       model.WeekStats
	Good        int
	Bad         int
}

// WeekChronicle renders the battle log for one recorded week.
func WeekChronicle(r WeekReport) string {
	name := r.KingdomName
	if name == "" {
		name = "the Kingdom"
	}
	winner, winnerDesc := "Vampire", "seized control of the night"
	if r.Stats.Winner == model.WinnerKingdom {
		winner, winnerDesc = "Medieval", "triumphed over the darkness"
	}
	mvp := r.Stats.MVPName
	if mvp == "" {
		mvp = "a steadfast warrior"
	}
	mvpDesc := r.Stats.MVPDesc
	if mvpDesc == "" {
		mvpDesc = "defender of the realm"
	}
	return fmt.Sprintf(
		"The chronicles tell of %s when %s faced the eternal struggle. %d valiant souls answered the call to battle.\n\n"+
			"The Keep scored %d%% against the forces of darkness. In this week's campaign, warriors completed %d positive habits while succumbing to %d negative temptations.\n\n"+
			"Our brightest champion was %s — honored as %s for their unwavering dedication.\n\n"+
			"The realm's most tended virtues: %s. The shadows most neglected: %s.\n\n"+
			"Thus %s forces %s, and the week passed into legend.",
		r.WeekKey, name, r.Members,
		r.Stats.Percent, r.Good, r.Bad,
		mvp, mvpDesc,
		habitList(r.Stats.TopHabits), habitList(r.Stats.Neglected),
		winner, winnerDesc,
	)
}

// OverallReport feeds the all-time chronicle.
type OverallReport struct {
	KingdomName string
	Summary     scoring.OverallSummary
	Good        int
	Bad         int
}

// OverallChronicle renders the kingdom's all-time battle log.
func OverallChronicle(r OverallReport) string {
	name := r.KingdomName
	if name == "" {
		name = "the Kingdom"
	}
	topMVP := r.Summary.TopMVP
	if topMVP == "" {
		topMVP = "unknown champion"
	}
	topHabit := r.Summary.TopHabit
	if topHabit == "" {
		topHabit = "various virtues"
	}
	neglected := r.Summary.MostNeglected
	if neglected == "" {
		neglected = "various shadows"
	}
	dominantDesc := "shadows have grown stronger"
	if r.Summary.MedievalWins > r.Summary.VampireWins {
		dominantDesc = "light has prevailed over darkness"
	}
	return fmt.Sprintf(
		"The grand chronicle of %s spans %d weeks of eternal struggle between light and shadow.\n\n"+
			"Across all battles, the realm achieved an average score of %d%% against the forces of darkness. In total, %d positive habits were forged while %d negative temptations claimed victory.\n\n"+
			"The eternal conflict stands: %d Medieval victories against %d Vampire conquests. Thus far, %s in this age-long war.\n\n"+
			"Our most celebrated champion: %s, who has risen to glory most frequently. The realm's most practiced virtue: %s. The most persistent shadow: %s.\n\n"+
			"So the chronicle continues, each week adding to the legend of %s...",
		name, r.Summary.Weeks,
		r.Summary.AvgPercent, r.Good, r.Bad,
		r.Summary.MedievalWins, r.Summary.VampireWins, dominantDesc,
		topMVP, topHabit, neglected,
		name,
	)
}

func habitList(habits []string) string {
	if len(habits) == 0 {
		return "none recorded"
	}
	return strings.Join(habits, ", ")
}
