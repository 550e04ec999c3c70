package cards

import (
	"fmt"
	"sort"
)

var starterDecks = map[int][]string{
	1: {
		"Циклоп", "Гном-басаарг", "Хобгоблин", "Хранитель гор", "Хранитель гор",
		"Повелитель молний", "Гобрах", "Ледовый охотник", "Ледовый охотник",
		"Горный великан", "Горный великан", "Мастер топора", "Костедробитель",
		"Костедробитель", "Смотритель горнила", "Овражный гном", "Ловец удачи",
		"Борг", "Мразень", "Мразень",
	},
	2: {
		"Лёккен", "Эльфийский воин", "Бегущая по кронам", "Кобольд", "Клаэр",
		"Матросы Аделаиды", "Друид", "Корпит", "Корпит", "Оури", "Оури",
		"Паук-пересмешник", "Дракс",
	},
}

// StarterDeck returns a copy of the default deck for player.
func StarterDeck(player int) []string {
	deck := starterDecks[player]
	out := make([]string, len(deck))
	copy(out, deck)
	return out
}

// ValidateDeck checks that every name exists in the catalog and unique cards appear once.
func ValidateDeck(names []string) error {
	seen := make(map[string]int, len(names))
	for _, name := range names {
		stats, ok := catalog[name]
		if !ok {
			return fmt.Errorf("unknown card %q", name)
		}
		seen[name]++
		if stats.IsUnique && seen[name] > 1 {
			return fmt.Errorf("unique card %q listed %d times", name, seen[name])
		}
	}
	return nil
}

// SortByCost orders a hand from most to least expensive, ties broken by name.
func SortByCost(hand []*Card) {
	sort.SliceStable(hand, func(i, j int) bool {
		if hand[i].Stats.Cost != hand[j].Stats.Cost {
			return hand[i].Stats.Cost > hand[j].Stats.Cost
		}
		return hand[i].Stats.Name < hand[j].Stats.Name
	})
}
