package abilities

// Type indicates how an ability is activated.
type Type string

const (
	TypeActive    Type = "ACTIVE"
	TypePassive   Type = "PASSIVE"
	TypeTriggered Type = "TRIGGERED"
)

// Trigger identifies the moment a triggered ability fires.
type Trigger string

const (
	TriggerNone       Trigger = ""
	TriggerTurnStart  Trigger = "ON_TURN_START"
	TriggerAttack     Trigger = "ON_ATTACK"
	TriggerDefend     Trigger = "ON_DEFEND"
	TriggerTakeDamage Trigger = "ON_TAKE_DAMAGE"
	TriggerDealDamage Trigger = "ON_DEAL_DAMAGE"
	TriggerDeath      Trigger = "ON_DEATH"
	TriggerKill       Trigger = "ON_KILL"
	TriggerValhalla   Trigger = "VALHALLA"
	TriggerMove       Trigger = "ON_MOVE"
	TriggerDiceRoll   Trigger = "ON_DICE_ROLL"
)

// TargetType describes which cards an active ability may target.
type TargetType string

const (
	TargetNone  TargetType = "NONE"
	TargetSelf  TargetType = "SELF"
	TargetAlly  TargetType = "ALLY"
	TargetEnemy TargetType = "ENEMY"
	TargetAny   TargetType = "ANY"
)

// EffectType names the data-driven effect of abilities without a custom handler.
type EffectType string

const (
	EffectNone         EffectType = "NONE"
	EffectHealTarget   EffectType = "HEAL_TARGET"
	EffectHealSelf     EffectType = "HEAL_SELF"
	EffectFullHealSelf EffectType = "FULL_HEAL_SELF"
	EffectBuffAttack   EffectType = "BUFF_ATTACK"
	EffectBuffRanged   EffectType = "BUFF_RANGED"
	EffectBuffDice     EffectType = "BUFF_DICE"
	EffectGrantDirect  EffectType = "GRANT_DIRECT"
	EffectGainCounter  EffectType = "GAIN_COUNTER"
	EffectApplyWebbed  EffectType = "APPLY_WEBBED"
)

// RangedType distinguishes shots from throws; shot immunity only stops shots.
type RangedType string

const (
	RangedShot  RangedType = "shot"
	RangedThrow RangedType = "throw"
)

// Row requirements for RequiresOwnRow, counted from the owner's side.
const (
	RowAny    = 0
	RowFront  = 1
	RowMiddle = 2
	RowBack   = 3
)

// Ability is an immutable ability definition shared by every card that lists it.
type Ability struct {
	ID          string
	Name        string
	Description string
	Type        Type
	TargetType  TargetType
	Range       int
	MinRange    int
	Cooldown    int
	Trigger     Trigger
	Effect      EffectType

	HealAmount   int
	DamageAmount int
	// RangedDamage holds weak/medium/strong values; nil means the card's attack is used.
	RangedDamage []int
	RangedType   RangedType
	GrantsDirect bool

	// MagicDamage holds weak/medium/strong values for magical attacks.
	MagicDamage       []int
	MagicCounterBonus int
	IsMagic           bool

	DiceBonusAttack  int
	DiceBonusDefense int
	DamageBonus      int

	DamageReduction int
	CostThreshold   int

	BonusDamageVsElement   int
	TargetElement          string
	BonusRangedVsDefensive int

	StatusText string
	IsInstant  bool

	IsFormation              bool
	FormationDamageReduction int
	FormationAttackBonus     int
	FormationDiceBonus       int
	FormationArmorBonus      int
	RequiresEliteAlly        bool
	RequiresCommonAlly       bool

	RequiresCounters     int
	SpendsCounters       bool
	RequiresOwnRow       int
	RequiresEdgeColumn   bool
	RequiresCenterColumn bool
	TargetMustBeTapped   bool
	TargetNotFlying      bool
	RequiresDamaged      bool
	RequiresFormation    bool
}

// IsActive reports whether the ability is activated by a command.
func (a *Ability) IsActive() bool { return a.Type == TypeActive }

// IsPassive reports whether the ability is always on.
func (a *Ability) IsPassive() bool { return a.Type == TypePassive }

// IsTriggered reports whether the ability fires on a game event.
func (a *Ability) IsTriggered() bool { return a.Type == TypeTriggered }

// IsRanged reports whether the ability resolves as a ranged dice attack.
func (a *Ability) IsRanged() bool { return len(a.RangedDamage) == 3 }

// TierValue returns the value at tier (0 weak, 1 medium, 2 strong) of a three-value table.
func TierValue(values []int, tier int) int {
	if tier < 0 || tier >= len(values) {
		return 0
	}
	return values[tier]
}
