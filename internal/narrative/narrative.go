// Package narrative holds the flavor-text vocabulary: weekly titles,
// battle narration, motivation messages. Every random pick goes
// through a caller-supplied rand source so tests can pin the draw; the
// eligible pool for a given condition is the contract, not the pick.
package narrative

import (
	"math/rand"

	"habithold/internal/model"
)

// FunTitles is the pool of per-user weekly titles.
var FunTitles = []string{
	"The Relentless", "The Dawnbringer", "The Shadowbane", "The Habit Hero", "The Unyielding",
	"The Night Conqueror", "The Hopebringer", "The Ironwilled", "The Motivator", "The Steadfast",
	"The Vampire Vanquisher", "The Resilient", "The Streakmaster", "The Redeemer", "The Unbreakable",
	"The Comeback Kid", "The Consistent", "The Phoenix", "The Sanguine", "The Lightkeeper",
}

// Week-name words by outcome.
var (
	RealmWeekWords   = []string{"Valor", "Virtue", "Unity", "Courage", "Glory"}
	VampireWeekWords = []string{"Shadows", "Temptation", "Bloodlust", "Nightfall", "Despair"}
)

// FunTitle draws a weekly title for a user.
func FunTitle(rng *rand.Rand) string {
	return FunTitles[rng.Intn(len(FunTitles))]
}

// WeekTitle names the completed week after its outcome.
func WeekTitle(winner string, rng *rand.Rand) string {
	if winner == model.WinnerKingdom {
		return "Defenders of the Realm: The Week of " + RealmWeekWords[rng.Intn(len(RealmWeekWords))]
	}
	return "Vampire Ascendancy: The Week of " + VampireWeekWords[rng.Intn(len(VampireWeekWords))]
}

// MVPTitle is the honorific for the week's MVP.
func MVPTitle(winner string) string {
	if winner == model.WinnerKingdom {
		return "Champion of the Realm"
	}
	return "Dread Lord of the Night"
}

// Hook teases the next week.
func Hook(winner string) string {
	if winner == model.WinnerKingdom {
		return "A new week dawns—will your valor hold?"
	}
	return "The vampires grow bolder... can you turn the tide?"
}

// Intro opens the weekly summary.
func Intro(winner string) string {
	if winner == model.WinnerKingdom {
		return "The kingdom has triumphed over the darkness!"
	}
	return "The vampires have seized the night!"
}

// PersonalMessage addresses the current user based on their week.
func PersonalMessage(streak bool, net int) string {
	switch {
	case streak:
		return "You completed every habit this week! Unstoppable!"
	case net > 0:
		return "Your efforts helped defend the kingdom!"
	case net < 0:
		return "Beware, your habits aided the vampires..."
	default:
		return "Every bit counts—keep going!"
	}
}
