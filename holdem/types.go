package holdem

const InvalidSeat uint16 = 65535

// Street 游戏阶段
type Street byte

const (
	StreetPreflop  Street = 0
	StreetFlop     Street = 1
	StreetTurn     Street = 2
	StreetRiver    Street = 3
	StreetShowdown Street = 4
	StreetResult   Street = 5
)

var StreetDictionary = map[Street]string{
	StreetPreflop:  "preflop",
	StreetFlop:     "flop",
	StreetTurn:     "turn",
	StreetRiver:    "river",
	StreetShowdown: "showdown",
	StreetResult:   "result",
}

func (s Street) String() string {
	if name, ok := StreetDictionary[s]; ok {
		return name
	}
	return "unknown"
}

// ActionType 动作类型：0-NONE 1-CHECK 2-BET 3-CALL 4-RAISE 5-FOLD 6-ALLIN
type ActionType byte

const (
	ActionNone  ActionType = 0
	ActionCheck ActionType = 1
	ActionBet   ActionType = 2
	ActionCall  ActionType = 3
	ActionRaise ActionType = 4
	ActionFold  ActionType = 5
	ActionAllIn ActionType = 6
)

var ActionTypeDictionary = map[ActionType]string{
	ActionNone:  "NONE",
	ActionCheck: "CHECK",
	ActionBet:   "BET",
	ActionCall:  "CALL",
	ActionRaise: "RAISE",
	ActionFold:  "FOLD",
	ActionAllIn: "ALLIN",
}

func (a ActionType) String() string {
	if name, ok := ActionTypeDictionary[a]; ok {
		return name
	}
	return "UNKNOWN"
}

// Action is a tagged action value. Amount carries the street-total for
// Bet/Raise and is zero for everything else, so an amountless raise is
// unrepresentable through the constructors below.
type Action struct {
	Type   ActionType
	Amount int64
}

func Fold() Action          { return Action{Type: ActionFold} }
func Check() Action         { return Action{Type: ActionCheck} }
func Call() Action          { return Action{Type: ActionCall} }
func Bet(to int64) Action   { return Action{Type: ActionBet, Amount: to} }
func Raise(to int64) Action { return Action{Type: ActionRaise, Amount: to} }
func AllIn() Action         { return Action{Type: ActionAllIn} }

// Position 座位相对庄位的位置（6-max）
type Position byte

const (
	PositionUTG Position = iota
	PositionHJ
	PositionCO
	PositionBTN
	PositionSB
	PositionBB
	PositionNone Position = 255
)

var PositionDictionary = map[Position]string{
	PositionUTG: "UTG",
	PositionHJ:  "HJ",
	PositionCO:  "CO",
	PositionBTN: "BTN",
	PositionSB:  "SB",
	PositionBB:  "BB",
}

func (p Position) String() string {
	if name, ok := PositionDictionary[p]; ok {
		return name
	}
	return "?"
}

// ActionRecord is one entry of the append-only per-hand action log.
type ActionRecord struct {
	Street Street
	Seat   uint16
	Action ActionType
	// Amount is the street-total after the action (0 for check/fold).
	Amount int64
}
