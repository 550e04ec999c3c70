package game

import "fmt"

// CommandType is the closed set of verbs a player may send.
type CommandType string

const (
	CmdMove               CommandType = "MOVE"
	CmdAttack             CommandType = "ATTACK"
	CmdPrepareFlyerAttack CommandType = "PREPARE_FLYER_ATTACK"
	CmdUseAbility         CommandType = "USE_ABILITY"
	CmdUseInstant         CommandType = "USE_INSTANT"
	CmdConfirm            CommandType = "CONFIRM"
	CmdCancel             CommandType = "CANCEL"
	CmdChoosePosition     CommandType = "CHOOSE_POSITION"
	CmdChooseCard         CommandType = "CHOOSE_CARD"
	CmdChooseAmount       CommandType = "CHOOSE_AMOUNT"
	CmdPassPriority       CommandType = "PASS_PRIORITY"
	CmdSkip               CommandType = "SKIP"
	CmdEndTurn            CommandType = "END_TURN"
	CmdConcede            CommandType = "CONCEDE"
)

// CommandTypes lists every verb in a stable order.
var CommandTypes = []CommandType{
	CmdMove, CmdAttack, CmdPrepareFlyerAttack, CmdUseAbility, CmdUseInstant,
	CmdConfirm, CmdCancel, CmdChoosePosition, CmdChooseCard, CmdChooseAmount,
	CmdPassPriority, CmdSkip, CmdEndTurn, CmdConcede,
}

// Valid reports whether t is a known verb.
func (t CommandType) Valid() bool {
	for _, known := range CommandTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Command is one player intent. Only the fields relevant to Type are read;
// Position is -1 when unused and card ids start at 1.
type Command struct {
	Type      CommandType `json:"type"`
	Player    int         `json:"player"`
	CardID    int         `json:"card_id,omitempty"`
	Position  int         `json:"position"`
	AbilityID string      `json:"ability_id,omitempty"`
	Option    string      `json:"option,omitempty"`
	Amount    int         `json:"amount,omitempty"`
	Confirmed bool        `json:"confirmed,omitempty"`
}

func (c Command) String() string {
	return fmt.Sprintf("%s(player=%d card=%d pos=%d)", c.Type, c.Player, c.CardID, c.Position)
}

func newCommand(t CommandType, player int) Command {
	return Command{Type: t, Player: player, Position: -1}
}

func MoveCommand(player, cardID, position int) Command {
	c := newCommand(CmdMove, player)
	c.CardID, c.Position = cardID, position
	return c
}

func AttackCommand(player, cardID, position int) Command {
	c := newCommand(CmdAttack, player)
	c.CardID, c.Position = cardID, position
	return c
}

func PrepareFlyerAttackCommand(player, cardID int) Command {
	c := newCommand(CmdPrepareFlyerAttack, player)
	c.CardID = cardID
	return c
}

func UseAbilityCommand(player, cardID int, abilityID string) Command {
	c := newCommand(CmdUseAbility, player)
	c.CardID, c.AbilityID = cardID, abilityID
	return c
}

// UseInstantCommand plays cardID's instant with a luck option such as "atk_plus1".
func UseInstantCommand(player, cardID int, option string) Command {
	c := newCommand(CmdUseInstant, player)
	c.CardID, c.Option = cardID, option
	return c
}

func ConfirmCommand(player int, confirmed bool) Command {
	c := newCommand(CmdConfirm, player)
	c.Confirmed = confirmed
	return c
}

func CancelCommand(player int) Command { return newCommand(CmdCancel, player) }

func ChoosePositionCommand(player, position int) Command {
	c := newCommand(CmdChoosePosition, player)
	c.Position = position
	return c
}

func ChooseCardCommand(player, cardID int) Command {
	c := newCommand(CmdChooseCard, player)
	c.CardID = cardID
	return c
}

func ChooseAmountCommand(player, amount int) Command {
	c := newCommand(CmdChooseAmount, player)
	c.Amount = amount
	return c
}

func PassPriorityCommand(player int) Command { return newCommand(CmdPassPriority, player) }
func SkipCommand(player int) Command         { return newCommand(CmdSkip, player) }
func EndTurnCommand(player int) Command      { return newCommand(CmdEndTurn, player) }
func ConcedeCommand(player int) Command      { return newCommand(CmdConcede, player) }
