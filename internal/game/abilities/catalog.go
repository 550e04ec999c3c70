package abilities

import "sort"

var registry = map[string]*Ability{}

func register(a *Ability) *Ability {
	if a.TargetType == "" {
		a.TargetType = TargetNone
	}
	if a.Effect == "" {
		a.Effect = EffectNone
	}
	if a.RangedType == "" {
		a.RangedType = RangedShot
	}
	registry[a.ID] = a
	return a
}

// Get looks up an ability definition by ID.
func Get(id string) (*Ability, bool) {
	a, ok := registry[id]
	return a, ok
}

// MustGet returns the ability definition or panics; used for the static card catalog.
func MustGet(id string) *Ability {
	a, ok := registry[id]
	if !ok {
		panic("abilities: unknown ability " + id)
	}
	return a
}

// IDs returns every registered ability ID in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Active and healing abilities.
var (
	HealSelf = register(&Ability{
		ID: "heal_self", Name: "Исцеление", Description: "Restore 3 life",
		Type: TypeActive, TargetType: TargetSelf, Effect: EffectHealSelf, HealAmount: 3,
	})
	HealAlly = register(&Ability{
		ID: "heal_ally", Name: "Дыхание леса", Description: "Restore 2 life to any creature",
		Type: TypeActive, TargetType: TargetAny, Range: 99, Effect: EffectHealTarget, HealAmount: 2,
	})
	Heal1 = register(&Ability{
		ID: "heal_1", Name: "Лечение", Description: "Restore 1 life to any creature",
		Type: TypeActive, TargetType: TargetAny, Range: 99, Effect: EffectHealTarget, HealAmount: 1,
	})
	CrownRunnerShot = register(&Ability{
		ID: "crown_runner_shot", Name: "Выстрел", Description: "Shot 1-2-2 at any range except adjacent",
		Type: TypeActive, TargetType: TargetAny, Range: 99, MinRange: 2, RangedDamage: []int{1, 2, 2},
	})
	Lunge = register(&Ability{
		ID: "lunge", Name: "Удар через ряд", Description: "Deal 1 damage two cells away in a straight line",
		Type: TypeActive, TargetType: TargetAny, Range: 2, MinRange: 2, DamageAmount: 1,
	})
	Lunge2 = register(&Ability{
		ID: "lunge_2", Name: "Удар через ряд", Description: "Deal 2 damage two cells away in a straight line",
		Type: TypeActive, TargetType: TargetAny, Range: 2, MinRange: 2, DamageAmount: 2,
	})
	MagicalStrike = register(&Ability{
		ID: "magical_strike", Name: "Магический удар", Description: "Magical strike 2-2-2 at an adjacent creature",
		Type: TypeActive, TargetType: TargetAny, Range: 1, DamageAmount: 2,
		MagicDamage: []int{2, 2, 2}, IsMagic: true,
	})
	GainCounter = register(&Ability{
		ID: "gain_counter", Name: "Получить фишку", Description: "Tap to gain a counter",
		Type: TypeActive, TargetType: TargetSelf, Effect: EffectGainCounter, StatusText: "фишка",
	})
	Discharge = register(&Ability{
		ID: "discharge", Name: "Разряд", Description: "Deal 2 damage plus 3 per counter, lose 1 counter",
		Type: TypeActive, TargetType: TargetAny, Range: 99, MinRange: 2, DamageAmount: 2,
		IsMagic: true, StatusText: "разряд",
	})
	WebThrow = register(&Ability{
		ID: "web_throw", Name: "Паутина", Description: "Web a ground enemy at range 2",
		Type: TypeActive, TargetType: TargetEnemy, Range: 2, Effect: EffectApplyWebbed,
		StatusText: "паутина", TargetNotFlying: true,
	})
	Luck = register(&Ability{
		ID: "luck", Name: "Удача", Description: "Adjust a dice roll by one or reroll it",
		Type: TypeActive, Trigger: TriggerDiceRoll, TargetType: TargetSelf, IsInstant: true, StatusText: "удача",
	})
	BorgCounter = register(&Ability{
		ID: "borg_counter", Name: "Накопить фишку", Description: "Tap to gain a counter",
		Type: TypeActive, TargetType: TargetSelf, Effect: EffectGainCounter, StatusText: "фишка",
	})
	BorgStrike = register(&Ability{
		ID: "borg_strike", Name: "Особый удар", Description: "Spend a counter to deal 3 damage, stunning a tapped target",
		Type: TypeActive, TargetType: TargetAny, Range: 1, DamageAmount: 3, StatusText: "особый удар",
		RequiresCounters: 1, SpendsCounters: true,
	})
	AxeTap = register(&Ability{
		ID: "axe_tap", Name: "Накопить фишку", Description: "Tap to gain a counter",
		Type: TypeActive, TargetType: TargetSelf, Effect: EffectGainCounter, StatusText: "накопление",
	})
	AxeStrike = register(&Ability{
		ID: "axe_strike", Name: "Магический удар", Description: "Magical strike 0-1-2 plus 1 per spent counter",
		Type: TypeActive, TargetType: TargetAny, Range: 1, StatusText: "маг. удар",
		MagicDamage: []int{0, 1, 2}, MagicCounterBonus: 1, IsMagic: true,
	})
	IcicleThrow = register(&Ability{
		ID: "icicle_throw", Name: "Сосулька", Description: "Throw 1-2-2 at range 3, +1 against defensive creatures",
		Type: TypeActive, TargetType: TargetAny, Range: 3, MinRange: 2, RangedDamage: []int{1, 2, 2},
		RangedType: RangedThrow, BonusRangedVsDefensive: 1, StatusText: "метание дальность 3",
	})
)

// Triggered abilities.
var (
	MovementShot = register(&Ability{
		ID: "movement_shot", Name: "Выстрел при движении", Description: "After moving next to an ally costing 7+, shoot for 1",
		Type: TypeTriggered, Trigger: TriggerMove, DamageAmount: 1, Range: 3, StatusText: "выстрел при движении",
	})
	FrontRowBonus = register(&Ability{
		ID: "front_row_bonus", Name: "Бонус первого ряда", Description: "+1 ranged damage while in the front row",
		Type: TypeTriggered, Trigger: TriggerTurnStart, Effect: EffectBuffRanged, DamageBonus: 1, RequiresOwnRow: RowFront,
	})
	BackRowDirect = register(&Ability{
		ID: "back_row_direct", Name: "Прямой выстрел", Description: "Direct attacks while in the back row",
		Type: TypeTriggered, Trigger: TriggerTurnStart, Effect: EffectGrantDirect, GrantsDirect: true, RequiresOwnRow: RowBack,
	})
	Regeneration = register(&Ability{
		ID: "regeneration", Name: "Регенерация", Description: "Heal 3 at turn start",
		Type: TypeTriggered, Trigger: TriggerTurnStart, Effect: EffectHealSelf, HealAmount: 3,
		StatusText: "регенерация +3", RequiresDamaged: true,
	})
	Regeneration1 = register(&Ability{
		ID: "regeneration_1", Name: "Регенерация", Description: "Heal 1 at turn start",
		Type: TypeTriggered, Trigger: TriggerTurnStart, Effect: EffectHealSelf, HealAmount: 1,
		StatusText: "регенерация +1", RequiresDamaged: true,
	})
	ValhallaOva = register(&Ability{
		ID: "valhalla_ova", Name: "Вальхалла", Description: "From the graveyard give an ally +1 attack dice",
		Type: TypeTriggered, Trigger: TriggerValhalla, DiceBonusAttack: 1, StatusText: "Вальхалла",
	})
	ValhallaStrike = register(&Ability{
		ID: "valhalla_strike", Name: "Вальхалла", Description: "From the graveyard give an ally +1 damage",
		Type: TypeTriggered, Trigger: TriggerValhalla, DamageBonus: 1, StatusText: "Вальхалла",
	})
	CounterShot = register(&Ability{
		ID: "counter_shot", Name: "Ответный выстрел", Description: "After attacking, shoot a distant creature for 2",
		Type: TypeTriggered, Trigger: TriggerAttack, DamageAmount: 2, StatusText: "выстрел при ударе",
	})
	HealOnAttack = register(&Ability{
		ID: "heal_on_attack", Name: "Исцеление при ударе", Description: "After attacking, heal by the medium strike of the creature in front",
		Type: TypeTriggered, Trigger: TriggerAttack, StatusText: "лечение при ударе",
	})
	DefenderBuff = register(&Ability{
		ID: "defender_buff", Name: "Ярость защитника", Description: "When defending gain +2 damage and +1 attack dice",
		Type: TypeTriggered, Trigger: TriggerDefend, DamageBonus: 2, DiceBonusAttack: 1, StatusText: "ярость защитника",
	})
	Scavenging = register(&Ability{
		ID: "scavenging", Name: "Трупоедство", Description: "Fully heal after killing an enemy",
		Type: TypeTriggered, Trigger: TriggerKill, Effect: EffectFullHealSelf, StatusText: "трупоедство",
	})
	AxeCounter = register(&Ability{
		ID: "axe_counter", Name: "Накопление", Description: "Gain a counter at turn start while in formation",
		Type: TypeTriggered, Trigger: TriggerTurnStart, Effect: EffectGainCounter, IsFormation: true,
		StatusText: "накопление", RequiresFormation: true,
	})
	HellishStench = register(&Ability{
		ID: "hellish_stench", Name: "Адское зловоние", Description: "An untapped target must tap or take 2 damage",
		Type: TypeTriggered, Trigger: TriggerAttack, DamageAmount: 2, StatusText: "зловоние",
	})
)

// Passive abilities.
var (
	AttackExp = register(&Ability{
		ID: "attack_exp", Name: "Опыт в атаке", Type: TypePassive, DiceBonusAttack: 1, StatusText: "опыт в атаке",
	})
	DefenseExp = register(&Ability{
		ID: "defense_exp", Name: "Опыт в защите", Type: TypePassive, DiceBonusDefense: 1, StatusText: "опыт в защите",
	})
	Ova1 = register(&Ability{
		ID: "ova_1", Name: "ОвА+1", Type: TypePassive, DiceBonusAttack: 1, StatusText: "ОвА+1",
	})
	Ovz1 = register(&Ability{
		ID: "ovz_1", Name: "ОвЗ+1", Type: TypePassive, DiceBonusDefense: 1, StatusText: "ОвЗ+1",
	})
	ToughHide = register(&Ability{
		ID: "tough_hide", Name: "Толстая шкура", Type: TypePassive, DamageReduction: 2, CostThreshold: 3,
		StatusText: "-2 от дешёвых",
	})
	DirectAttack = register(&Ability{
		ID: "direct_attack", Name: "Направленный удар", Type: TypePassive, GrantsDirect: true, StatusText: "направленный",
	})
	PoisonImmune = register(&Ability{
		ID: "poison_immune", Name: "Защита от отравления", Type: TypePassive, StatusText: "иммунитет к яду",
	})
	DiagonalDefense = register(&Ability{
		ID: "diagonal_defense", Name: "Защита от диагонали", Type: TypePassive, DamageReduction: 2,
		StatusText: "-2 от диагонали",
	})
	RestrictedStrike = register(&Ability{
		ID: "restricted_strike", Name: "Ограниченный удар", Type: TypePassive, StatusText: "только напротив",
	})
	CenterColumnDefense = register(&Ability{
		ID: "center_column_defense", Name: "Оборона в центре", Type: TypePassive, StatusText: "центр: +1 ОвЗ",
	})
	EdgeColumnAttack = register(&Ability{
		ID: "edge_column_attack", Name: "Атака с флангов", Type: TypePassive, DiceBonusAttack: 1,
		StatusText: "фланг: +1 ОвА", RequiresEdgeColumn: true,
	})
	Jump = register(&Ability{
		ID: "jump", Name: "Прыжок", Type: TypePassive, Range: 3, StatusText: "прыжок",
	})
	MagicImmune = register(&Ability{
		ID: "magic_immune", Name: "Защита от магии", Type: TypePassive, StatusText: "защита от магии",
	})
	SteppeDefense = register(&Ability{
		ID: "steppe_defense", Name: "Защита от степи", Type: TypePassive, DamageReduction: 1,
		TargetElement: "PLAINS", StatusText: "-1 от степи",
	})
	ShotImmune = register(&Ability{
		ID: "shot_immune", Name: "Защита от выстрелов", Type: TypePassive, StatusText: "защита от выстрелов",
	})
	DefenderNoTap = register(&Ability{
		ID: "defender_no_tap", Name: "Стойкий защитник", Type: TypePassive, StatusText: "не закрывается",
	})
	UnlimitedDefender = register(&Ability{
		ID: "unlimited_defender", Name: "Многократная защита", Type: TypePassive, StatusText: "защитник",
	})
	DischargeImmune = register(&Ability{
		ID: "discharge_immune", Name: "Защита от разрядов", Type: TypePassive, StatusText: "защита от разрядов",
	})
	Flying = register(&Ability{
		ID: "flying", Name: "Летающий", Type: TypePassive, StatusText: "летающий",
	})
	AntiMagic = register(&Ability{
		ID: "anti_magic", Name: "Пожиратель магии", Type: TypePassive, StatusText: "антимагия",
	})
	FlyerTaunt = register(&Ability{
		ID: "flyer_taunt", Name: "Приманка летунов", Type: TypePassive, StatusText: "приманка летунов",
	})
	TappedBonus = register(&Ability{
		ID: "tapped_bonus", Name: "Охотник на закрытых", Type: TypePassive, DamageBonus: 1, StatusText: "+1 vs закрытых",
	})
	MustAttackTapped = register(&Ability{
		ID: "must_attack_tapped", Name: "Охота на закрытых", Type: TypePassive, StatusText: "охота",
	})
	AntiSwamp = register(&Ability{
		ID: "anti_swamp", Name: "Враг болот", Type: TypePassive, BonusDamageVsElement: 2, TargetElement: "SWAMPS",
		StatusText: "+2 vs болота",
	})
	FrontRowStrong = register(&Ability{
		ID: "front_row_strong", Name: "Натиск", Type: TypePassive, DamageBonus: 1, RequiresOwnRow: RowFront,
		StatusText: "+1 к сильному удару в первом ряду",
	})
	ClosedAttackBonus = register(&Ability{
		ID: "closed_attack_bonus", Name: "Бьёт лежачих", Type: TypePassive, DamageBonus: 1, StatusText: "+1 vs закрытых",
	})
)

// Formation abilities.
var (
	StroiDmg1 = register(&Ability{
		ID: "stroi_dmg_1", Name: "Строй", Type: TypePassive, IsFormation: true, FormationDamageReduction: 1,
		StatusText: "строй -1 урон",
	})
	StroiOvz1 = register(&Ability{
		ID: "stroi_ovz_1", Name: "Строй", Type: TypePassive, IsFormation: true, FormationDiceBonus: 1,
		StatusText: "строй ОвЗ+1",
	})
	StroiAtk1 = register(&Ability{
		ID: "stroi_atk_1", Name: "Строй", Type: TypePassive, IsFormation: true, FormationAttackBonus: 1,
		StatusText: "строй +1 атака",
	})
	StroiArmorElite = register(&Ability{
		ID: "stroi_armor_elite", Name: "Строй", Type: TypePassive, IsFormation: true, FormationArmorBonus: 2,
		RequiresEliteAlly: true, StatusText: "строй броня",
	})
	StroiOvzCommon = register(&Ability{
		ID: "stroi_ovz_common", Name: "Строй", Type: TypePassive, IsFormation: true, FormationDiceBonus: 2,
		RequiresCommonAlly: true, StatusText: "строй ОвЗ+2",
	})
)
