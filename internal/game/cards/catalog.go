package cards

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/berserkgame/berserk-server-go/internal/game/abilities"
)

var catalog = map[string]*Stats{}

func define(s *Stats) {
	if s.Kind == "" {
		s.Kind = KindCreature
	}
	for _, id := range s.AbilityIDs {
		abilities.MustGet(id)
	}
	catalog[s.Name] = s
}

func init() {
	// Mountains
	define(&Stats{Name: "Циклоп", Cost: 8, Element: ElementMountains, Life: 14, Attack: [3]int{4, 5, 6}, Move: 1, IsElite: true,
		AbilityIDs: []string{"restricted_strike", "magical_strike", "direct_attack", "poison_immune", "magic_immune", "regeneration_1"},
		Image:      "01-101.jpg"})
	define(&Stats{Name: "Гном-басаарг", Cost: 7, Element: ElementMountains, Class: "Гном", Life: 12, Attack: [3]int{2, 3, 4}, Move: 1,
		AbilityIDs: []string{"ova_1", "stroi_atk_1", "tapped_bonus", "must_attack_tapped"},
		Image:      "01-053.jpg"})
	define(&Stats{Name: "Хобгоблин", Cost: 8, Element: ElementMountains, Life: 18, Attack: [3]int{3, 4, 5}, Move: 1, IsElite: true,
		AbilityIDs: []string{"tough_hide", "direct_attack", "poison_immune"},
		Image:      "01-100.jpg"})
	define(&Stats{Name: "Хранитель гор", Cost: 5, Element: ElementMountains, Life: 13, Attack: [3]int{2, 2, 3}, Move: 1,
		AbilityIDs: []string{"anti_swamp", "poison_immune"},
		Image:      "01-050.jpg"})
	define(&Stats{Name: "Повелитель молний", Cost: 7, Element: ElementMountains, Class: "Линунг", Life: 9, Attack: [3]int{2, 2, 3}, Move: 1, IsElite: true,
		AbilityIDs: []string{"gain_counter", "discharge"}, MaxCounters: 3,
		Image: "01-066.jpg"})
	define(&Stats{Name: "Гобрах", Cost: 7, Element: ElementMountains, Life: 10, Attack: [3]int{4, 4, 5}, Move: 2, IsElite: true,
		AbilityIDs: []string{"regeneration", "diagonal_defense"},
		Image:      "01-064.jpg"})
	define(&Stats{Name: "Ледовый охотник", Cost: 5, Element: ElementMountains, Life: 7, Attack: [3]int{1, 2, 3}, Move: 2,
		AbilityIDs: []string{"lunge_2", "valhalla_ova"},
		Image:      "01-045.jpg"})
	define(&Stats{Name: "Горный великан", Cost: 6, Element: ElementMountains, Life: 17, Attack: [3]int{2, 3, 5}, Move: 1, IsElite: true,
		AbilityIDs: []string{"stroi_ovz_1", "poison_immune"},
		Image:      "01-061.jpg"})
	define(&Stats{Name: "Мастер топора", Cost: 5, Element: ElementMountains, Class: "Гном", Life: 10, Attack: [3]int{2, 3, 3}, Move: 1,
		AbilityIDs: []string{"axe_counter", "axe_tap", "axe_strike"}, MaxCounters: 99, Armor: 1,
		Image: "01-046.jpg"})
	define(&Stats{Name: "Костедробитель", Cost: 6, Element: ElementMountains, Class: "Йордлинг", Life: 12, Attack: [3]int{3, 5, 6}, Move: 1, IsElite: true,
		AbilityIDs: []string{"ova_1", "ovz_1", "valhalla_strike"},
		Image:      "01-062.jpg"})
	define(&Stats{Name: "Смотритель горнила", Cost: 5, Element: ElementMountains, Class: "Гном", Life: 10, Attack: [3]int{2, 2, 2}, Move: 1,
		AbilityIDs: []string{"stroi_armor_elite", "stroi_ovz_common"},
		Image:      "01-048.jpg"})
	define(&Stats{Name: "Овражный гном", Cost: 3, Element: ElementMountains, Class: "Гном", Life: 6, Attack: [3]int{1, 1, 2}, Move: 1,
		AbilityIDs: []string{"hellish_stench", "closed_attack_bonus", "direct_attack"},
		Image:      "01-037.jpg"})
	define(&Stats{Name: "Борг", Cost: 4, Element: ElementMountains, Life: 10, Attack: [3]int{2, 3, 4}, Move: 1, IsElite: true,
		AbilityIDs: []string{"borg_counter", "borg_strike"}, MaxCounters: 1,
		Image: "01-055.jpg"})
	define(&Stats{Name: "Мразень", Cost: 4, Element: ElementMountains, Life: 7, Attack: [3]int{1, 2, 2}, Move: 1,
		AbilityIDs: []string{"icicle_throw"},
		Image:      "01-040.jpg"})

	// Forest
	define(&Stats{Name: "Лёккен", Cost: 6, Element: ElementForest, Class: "Страж леса", Life: 10, Attack: [3]int{2, 2, 3}, Move: 1,
		AbilityIDs: []string{"defender_no_tap", "unlimited_defender", "defense_exp", "discharge_immune"},
		Image:      "01-085.jpg"})
	define(&Stats{Name: "Эльфийский воин", Cost: 6, Element: ElementForest, Life: 10, Attack: [3]int{2, 3, 4}, Move: 1, IsElite: true,
		AbilityIDs: []string{"steppe_defense", "attack_exp", "counter_shot"},
		Image:      "01-097.jpg"})
	define(&Stats{Name: "Бегущая по кронам", Cost: 5, Element: ElementForest, Life: 9, Attack: [3]int{2, 3, 4}, Move: 2,
		AbilityIDs: []string{"crown_runner_shot", "front_row_bonus", "back_row_direct"},
		Image:      "01-079.jpg"})
	define(&Stats{Name: "Кобольд", Cost: 5, Element: ElementForest, Life: 11, Attack: [3]int{2, 3, 4}, Move: 1, IsElite: true,
		AbilityIDs: []string{"lunge", "heal_on_attack", "shot_immune"},
		Image:      "01-092.jpg"})
	define(&Stats{Name: "Клаэр", Cost: 5, Element: ElementForest, Class: "Дитя Кронга", Life: 11, Attack: [3]int{1, 2, 4}, Move: 1,
		AbilityIDs: []string{"shot_immune", "defender_buff"},
		Image:      "01-082.jpg"})
	define(&Stats{Name: "Друид", Cost: 4, Element: ElementForest, Life: 7, Attack: [3]int{1, 2, 2}, Move: 1,
		AbilityIDs: []string{"heal_ally", "poison_immune"},
		Image:      "01-073.jpg"})
	define(&Stats{Name: "Корпит", Cost: 4, Element: ElementForest, Kind: KindFlyer, Life: 6, Attack: [3]int{1, 2, 2}, Move: 0, IsFlying: true,
		AbilityIDs: []string{"flying", "direct_attack", "scavenging"},
		Image:      "01-074.jpg"})
	define(&Stats{Name: "Оури", Cost: 4, Element: ElementForest, Class: "Дитя Кронга", Life: 8, Attack: [3]int{1, 1, 2}, Move: 2,
		AbilityIDs: []string{"heal_1", "movement_shot", "discharge_immune"},
		Image:      "01-076.jpg"})
	define(&Stats{Name: "Паук-пересмешник", Cost: 4, Element: ElementForest, Life: 7, Attack: [3]int{1, 2, 2}, Move: 1,
		AbilityIDs: []string{"flyer_taunt", "web_throw"},
		Image:      "01-077.jpg"})
	define(&Stats{Name: "Дракс", Cost: 3, Element: ElementForest, Class: "Дракон", Life: 5, Attack: [3]int{1, 1, 2}, Move: 1, IsFlying: true,
		AbilityIDs: []string{"flying", "direct_attack", "anti_magic"},
		Image:      "01-070.jpg"})

	// Neutral
	define(&Stats{Name: "Ловец удачи", Cost: 5, Element: ElementNeutral, Life: 8, Attack: [3]int{1, 2, 3}, Move: 1,
		AbilityIDs: []string{"luck"},
		Image:      "01-181.jpg"})
	define(&Stats{Name: "Матросы Аделаиды", Cost: 5, Element: ElementNeutral, Class: "Пират", Life: 8, Attack: [3]int{2, 2, 3}, Move: 3,
		AbilityIDs: []string{"jump", "center_column_defense", "edge_column_attack"},
		Image:      "01-182.jpg"})
}

// Lookup returns the catalog entry for name.
func Lookup(name string) (*Stats, bool) {
	s, ok := catalog[name]
	return s, ok
}

// Names returns every catalog card name in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create instantiates a catalog card for player with the given ID.
func Create(name string, player, id int) (*Card, error) {
	stats, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown card %q", name)
	}
	return NewCard(stats, player, id), nil
}

// ContentHash fingerprints the card and ability catalogs so peers can detect
// mismatched game data before playing.
func ContentHash() string {
	h := sha256.New()
	for _, name := range Names() {
		s := catalog[name]
		fmt.Fprintf(h, "C|%s|%d|%s|%s|%d|%v|%d|%t|%t|%d|%d|%s\n",
			s.Name, s.Cost, s.Element, s.Kind, s.Life, s.Attack, s.Move,
			s.IsFlying, s.IsElite, s.MaxCounters, s.Armor, strings.Join(s.AbilityIDs, ","))
	}
	for _, id := range abilities.IDs() {
		a := abilities.MustGet(id)
		fmt.Fprintf(h, "A|%s|%s|%s|%d|%d|%s|%s|%d|%d|%v|%v|%d|%d|%d|%d\n",
			a.ID, a.Type, a.TargetType, a.Range, a.MinRange, a.Trigger, a.Effect,
			a.HealAmount, a.DamageAmount, a.RangedDamage, a.MagicDamage,
			a.DiceBonusAttack, a.DiceBonusDefense, a.DamageBonus, a.DamageReduction)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
