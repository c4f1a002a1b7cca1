package holdem

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"holdem-trainer/card"
)

// Game is the single-table betting state machine. It owns the table state
// and is the only writer; readers get immutable snapshots. One action is
// processed at a time and each action either fully applies or leaves the
// state untouched.
type Game struct {
	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	// seats
	playersBySeat map[uint16]*Player
	seatNodes     map[uint16]*PlayerNode

	// hand state
	round          uint16
	street         Street
	communityCards card.CardList
	deck           *card.Deck

	dealerNode     *PlayerNode
	smallBlindNode *PlayerNode
	bigBlindNode   *PlayerNode
	curNode        *PlayerNode

	activeCount int
	allinCount  int

	// 剩余必须表态人数
	needActionCount int
	// 当前合法加注底线（delta）
	minRaise int64
	// 最近一次有效加注者（reopen 判定）
	lastAggressor uint16

	curBet           int64
	lastPlayerAction ActionType

	noShowdown bool
	ended      bool
	halted     bool

	potManager potManager

	actionLog []ActionRecord

	// 手牌开始时全桌筹码总量，用于守恒校验
	handStartChips int64

	lastSettlement *SettlementResult
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(seed)),
		playersBySeat: make(map[uint16]*Player, cfg.MaxPlayers),
		seatNodes:     make(map[uint16]*PlayerNode, cfg.MaxPlayers),
		street:        StreetPreflop,
		lastAggressor: InvalidSeat,
	}
	g.potManager.resetPots()
	return g, nil
}

func (g *Game) Config() Config { return g.cfg }

// SitDown seats a player with an initial stack.
func (g *Game) SitDown(seat uint16, playerID uint64, name string, stack int64, hero bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if seat >= uint16(g.cfg.MaxPlayers) {
		return fmt.Errorf("invalid seat %d", seat)
	}
	if stack < 0 {
		return fmt.Errorf("stack must be >= 0")
	}
	if g.playersBySeat[seat] != nil {
		return fmt.Errorf("seat %d already occupied", seat)
	}
	g.playersBySeat[seat] = &Player{
		ID:       playerID,
		Seat:     seat,
		Name:     name,
		Hero:     hero,
		stack:    stack,
		position: PositionNone,
	}
	return nil
}

// StandUp removes a player from a seat between hands.
func (g *Game) StandUp(seat uint16) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if seat >= uint16(g.cfg.MaxPlayers) {
		return fmt.Errorf("invalid seat %d", seat)
	}
	if g.playersBySeat[seat] == nil {
		return fmt.Errorf("seat %d is empty", seat)
	}
	// Keep gameplay state deterministic: no seat mutation during an active hand.
	if g.round > 0 && !g.ended {
		return ErrHandInProgress
	}

	delete(g.playersBySeat, seat)
	delete(g.seatNodes, seat)

	if g.dealerNode != nil && g.dealerNode.Seat == seat {
		g.dealerNode = nil
	}
	if g.smallBlindNode != nil && g.smallBlindNode.Seat == seat {
		g.smallBlindNode = nil
	}
	if g.bigBlindNode != nil && g.bigBlindNode.Seat == seat {
		g.bigBlindNode = nil
	}
	if g.curNode != nil && g.curNode.Seat == seat {
		g.curNode = nil
	}

	return nil
}

func (g *Game) Player(seat uint16) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playersBySeat[seat]
}

// StartHand resets per-hand state, rotates the button, posts blinds and
// deals hole cards. A pending hand must have ended first.
func (g *Game) StartHand() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.halted {
		return ErrInvariant("engine halted by previous violation")
	}
	if g.round > 0 && !g.ended {
		return ErrHandInProgress
	}

	g.ended = false
	g.lastSettlement = nil
	g.noShowdown = false
	g.communityCards = nil
	g.actionLog = g.actionLog[:0]

	// Build active players list (stack > 0)
	active := make([]*Player, 0, g.cfg.MaxPlayers)
	for seat := uint16(0); seat < uint16(g.cfg.MaxPlayers); seat++ {
		p := g.playersBySeat[seat]
		if p == nil || p.stack <= 0 {
			continue
		}
		p.ResetForNewHand()
		active = append(active, p)
	}
	if len(active) < g.cfg.MinPlayers {
		return fmt.Errorf("not enough players: %d < %d", len(active), g.cfg.MinPlayers)
	}

	g.round++

	// Reset per-hand state
	g.street = StreetPreflop
	g.potManager.resetPots()
	g.activeCount = len(active)
	g.allinCount = 0
	g.curBet = 0
	g.minRaise = 0
	g.needActionCount = 0
	g.lastAggressor = InvalidSeat
	g.lastPlayerAction = ActionNone

	g.handStartChips = 0
	for _, p := range active {
		g.handStartChips += p.stack
	}

	// Rebuild ring list nodes in seat order
	g.seatNodes = make(map[uint16]*PlayerNode, len(active))
	var first, last *PlayerNode
	for seat := uint16(0); seat < uint16(g.cfg.MaxPlayers); seat++ {
		p := g.playersBySeat[seat]
		if p == nil || p.stack <= 0 {
			continue
		}
		node := &PlayerNode{Seat: seat, Player: p}
		g.seatNodes[seat] = node
		if first == nil {
			first = node
		}
		if last != nil {
			last.Next = node
		}
		last = node
	}
	if first != nil && last != nil {
		last.Next = first
	}

	// Fresh deck
	if len(g.cfg.DeckOverride) > 0 {
		g.deck = card.NewDeckFromCards(g.cfg.DeckOverride)
	} else {
		g.deck = card.NewDeck(g.rng)
		g.deck.Shuffle()
	}

	g.selectDealer()
	g.selectBlindsByDealer(g.dealerNode)
	g.assignPositions()

	if err := g.dealHoleCards(); err != nil {
		return g.haltLocked(err)
	}

	// Antes
	if g.cfg.Ante > 0 && g.autoBetAntes() {
		if err := g.advanceToShowdownLocked(); err != nil {
			return g.haltLocked(err)
		}
		_, err := g.endHandLocked()
		return err
	}

	// Blinds
	if g.autoBetBlinds() {
		g.collectBetsLocked()
		if err := g.advanceToShowdownLocked(); err != nil {
			return g.haltLocked(err)
		}
		_, err := g.endHandLocked()
		return err
	}

	// Skip players already all-in from blinds/antes
	g.curNode = g.curNode.WalkOnce(func(cur *PlayerNode) bool {
		return cur.Player.stack > 0 && !cur.Player.folded
	})

	g.onStreetStartLocked()
	return nil
}

// LegalActions enumerates the legal action set for a seat plus the
// minimum total a bet/raise must reach. Pure projection, no mutation.
func (g *Game) LegalActions(seat uint16) ([]ActionType, int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ended {
		return nil, 0, ErrHandEnded
	}
	p := g.playersBySeat[seat]
	if p == nil {
		return nil, 0, fmt.Errorf("player not found")
	}
	acts := g.legalActionsLocked(p)
	minTo := g.curBet + g.minRaise
	if g.curBet == 0 {
		minTo = g.cfg.BigBlind
	}
	return acts, minTo, nil
}

// legalActionsLocked 必须是当前状态的纯函数投影:
// - fold 仅在需要跟注时提供
// - check 仅在无需跟注时提供
// - call 需要跟注且还有筹码
// - bet 仅在本街无人下注时提供
// - raise 需要已有下注、筹码超过所欠、且本街行动对该玩家重新开放
// - allin 只要还有筹码就始终提供
func (g *Game) legalActionsLocked(p *Player) []ActionType {
	if p.stack <= 0 || p.folded {
		return nil
	}
	owed := g.curBet - p.bet

	acts := make([]ActionType, 0, 4)
	if owed > 0 {
		acts = append(acts, ActionFold, ActionCall)
	} else {
		acts = append(acts, ActionCheck)
	}
	if g.curBet == 0 {
		acts = append(acts, ActionBet)
	} else if p.stack > owed && !p.acted {
		acts = append(acts, ActionRaise)
	}
	acts = append(acts, ActionAllIn)
	return acts
}

// Act applies one action for the seat to act. amount 表示“该玩家在本轮的
// 总下注额”。handEnd != nil 表示本手已结束并返回结算结果。
func (g *Game) Act(seat uint16, action Action) (handEnd *SettlementResult, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ended {
		return nil, ErrHandEnded
	}
	if g.curNode == nil || g.curNode.Player == nil {
		return nil, ErrInvalidState("no current player")
	}
	if seat != g.curNode.Seat {
		return nil, ErrOutOfTurn
	}

	player := g.curNode.Player

	legal := g.legalActionsLocked(player)
	valid := false
	for _, a := range legal {
		if a == action.Type {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidAction(fmt.Sprintf("%s not legal for seat %d", action.Type, seat))
	}

	actionType := action.Type
	amount := action.Amount

	switch actionType {
	case ActionCall:
		amount = g.curBet
	case ActionAllIn:
		amount = player.stack + player.bet
	case ActionCheck, ActionFold:
		amount = player.bet
	}

	if (actionType == ActionBet || actionType == ActionRaise) && amount <= g.curBet {
		return nil, ErrInvalidAction(fmt.Sprintf("%s to %d does not exceed current bet %d", actionType, amount, g.curBet))
	}

	// A bet/raise beyond the stack is clamped to all-in, not rejected.
	if amount-player.bet > player.stack {
		amount = player.stack + player.bet
		actionType = ActionAllIn
	}

	// Validate sizing and update betting state on any increase.
	if amount > g.curBet {
		validRaise := true
		switch actionType {
		case ActionAllIn:
			// 不足最小加注的 all-in 不 reopen
			if g.curBet > 0 && amount-g.curBet < g.minRaise {
				validRaise = false
			}
		case ActionBet:
			if amount-g.curBet < g.cfg.BigBlind {
				return nil, ErrInvalidAction(fmt.Sprintf("bet %d below minimum %d", amount, g.cfg.BigBlind))
			}
		case ActionRaise:
			if amount-g.curBet < g.minRaise {
				return nil, ErrInvalidAction(fmt.Sprintf("raise to %d below minimum %d", amount, g.curBet+g.minRaise))
			}
		}

		if validRaise {
			g.minRaise = amount - g.curBet
			g.lastAggressor = seat
			// A full raise reopens the action for everyone else.
			for _, p := range g.playersBySeat {
				if p != nil && p != player {
					p.acted = false
				}
			}
		}
		g.curBet = amount
		g.setNeedActionCountLocked()
	}

	player.setLastAction(actionType)
	player.acted = true

	switch actionType {
	case ActionBet, ActionRaise:
		player.placeBet(amount - player.bet)
	case ActionCall:
		player.placeBet(amount - player.bet)
	case ActionCheck:
		// no-op
	case ActionFold:
		player.setFolded(true)
		g.activeCount--
		g.potManager.removeSeat(seat)
	case ActionAllIn:
		player.placeBet(player.stack)
	}
	if player.allIn && actionType != ActionFold {
		g.allinCount++
	}

	g.appendLogLocked(seat, actionType, player.bet)

	if err := g.checkChipInvariantLocked(); err != nil {
		return nil, g.haltLocked(err)
	}

	if actionType == ActionFold && g.activeCount <= 1 {
		g.noShowdown = true
		return g.endHandLocked()
	}

	if actionType != ActionFold {
		g.lastPlayerAction = actionType
	}

	g.needActionCount--
	nextNode, bettingEnd := g.nextActorOrStreetEndLocked()
	g.curNode = nextNode

	if bettingEnd {
		g.collectBetsLocked()

		if g.allInRunoutLocked() || g.street == StreetRiver {
			if err := g.advanceToShowdownLocked(); err != nil {
				return nil, g.haltLocked(err)
			}
			return g.endHandLocked()
		}

		g.street++
		if err := g.dealCommunityCardsLocked(); err != nil {
			return nil, g.haltLocked(err)
		}
		g.onStreetStartLocked()
		return nil, nil
	}

	if g.curNode == nil || g.curNode.Player == nil {
		return nil, g.haltLocked(ErrInvariant("next player not found"))
	}
	return nil, nil
}

func (g *Game) onStreetStartLocked() {
	g.setNeedActionCountLocked()
	g.lastAggressor = InvalidSeat
	for _, p := range g.playersBySeat {
		if p != nil {
			p.setLastAction(ActionNone)
			p.acted = false
		}
	}

	switch g.street {
	case StreetPreflop:
		// Blinds play as a live bet; minRaise already set by the BB post.
		g.lastPlayerAction = ActionBet
	default:
		g.lastPlayerAction = ActionNone
		g.minRaise = g.cfg.BigBlind
		g.curBet = 0
		// First to act postflop: first live seat left of the button.
		if g.dealerNode != nil {
			g.curNode = g.dealerNode.Next.WalkOnce(func(n *PlayerNode) bool {
				return n.Player != nil && !n.Player.folded && n.Player.stack > 0
			})
		}
	}
}

func (g *Game) selectDealer() {
	nodes := make([]*PlayerNode, 0, len(g.seatNodes))
	for _, n := range g.seatNodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Seat < nodes[j].Seat })
	if len(nodes) == 0 {
		g.dealerNode = nil
		return
	}

	if g.cfg.ForcedDealerSeat != nil {
		if node, ok := g.seatNodes[*g.cfg.ForcedDealerSeat]; ok {
			g.dealerNode = node
			return
		}
	}

	// first hand: random dealer
	if g.round == 1 || g.dealerNode == nil {
		g.dealerNode = nodes[g.rng.Intn(len(nodes))]
		return
	}

	// move button to next active seat (based on previous dealer seat)
	prevSeat := g.dealerNode.Seat
	if prevNode, ok := g.seatNodes[prevSeat]; ok && prevNode.Next != nil {
		g.dealerNode = prevNode.Next
		return
	}
	// previous dealer busted: next occupied seat clockwise
	for offset := uint16(1); offset <= uint16(g.cfg.MaxPlayers); offset++ {
		seat := (prevSeat + offset) % uint16(g.cfg.MaxPlayers)
		if node, ok := g.seatNodes[seat]; ok {
			g.dealerNode = node
			return
		}
	}
	g.dealerNode = nodes[0]
}

func (g *Game) selectBlindsByDealer(dealer *PlayerNode) {
	if dealer == nil {
		return
	}
	if g.activeCount == 2 {
		// Heads-Up: button posts the small blind and acts first preflop.
		g.smallBlindNode = dealer
		g.bigBlindNode = dealer.Next
		g.curNode = dealer
	} else {
		g.smallBlindNode = dealer.Next
		g.bigBlindNode = g.smallBlindNode.Next
		g.curNode = g.bigBlindNode.Next
	}
}

// assignPositions labels every dealt seat with its trainer position,
// clockwise from the button.
func (g *Game) assignPositions() {
	if g.dealerNode == nil {
		return
	}
	var order []Position
	switch g.activeCount {
	case 2:
		order = []Position{PositionBTN, PositionBB}
	case 3:
		order = []Position{PositionBTN, PositionSB, PositionBB}
	case 4:
		order = []Position{PositionBTN, PositionSB, PositionBB, PositionUTG}
	case 5:
		order = []Position{PositionBTN, PositionSB, PositionBB, PositionUTG, PositionCO}
	default:
		order = []Position{PositionBTN, PositionSB, PositionBB, PositionUTG, PositionHJ, PositionCO}
	}
	node := g.dealerNode
	for _, pos := range order {
		if node == nil || node.Player == nil {
			return
		}
		node.Player.setPosition(pos)
		node = node.Next
	}
}

func (g *Game) dealHoleCards() error {
	start := g.smallBlindNode
	if start == nil {
		return ErrInvalidState("no small blind position")
	}
	for i := 0; i < 2; i++ {
		var dealErr error
		start.WalkAll(func(cur *PlayerNode) {
			if dealErr != nil {
				return
			}
			cards, err := g.deck.Deal(1)
			if err != nil {
				dealErr = ErrInvariant("deck underflow dealing hole cards")
				return
			}
			cur.Player.AddHoleCard(cards...)
		})
		if dealErr != nil {
			return dealErr
		}
	}
	return nil
}

// dealCommunityCardsLocked burns one card and deals the street's cards.
func (g *Game) dealCommunityCardsLocked() error {
	shouldDeal := 0
	switch g.street {
	case StreetFlop:
		shouldDeal = 3
	case StreetTurn, StreetRiver:
		shouldDeal = 1
	}
	if shouldDeal <= 0 {
		return nil
	}
	if err := g.deck.Burn(); err != nil {
		return ErrInvariant("deck underflow on burn")
	}
	cards, err := g.deck.Deal(shouldDeal)
	if err != nil {
		return ErrInvariant("deck underflow dealing community cards")
	}
	g.communityCards = append(g.communityCards, cards...)
	return nil
}

func (g *Game) autoBetAntes() bool {
	notAllIn := 0
	for _, p := range g.playersBySeat {
		if p == nil || p.stack <= 0 {
			continue
		}
		p.placeBet(g.cfg.Ante)
		if p.stack > 0 {
			notAllIn++
		}
	}
	g.allinCount = g.activeCount - notAllIn
	g.collectBetsLocked()
	return notAllIn <= 1
}

func (g *Game) autoBetBlinds() bool {
	if g.smallBlindNode != nil && g.smallBlindNode.Player.stack > 0 && g.cfg.SmallBlind > 0 {
		g.smallBlindNode.Player.placeBet(g.cfg.SmallBlind)
		if g.smallBlindNode.Player.stack <= 0 {
			g.allinCount++
		}
	}
	if g.bigBlindNode != nil && g.bigBlindNode.Player.stack > 0 {
		g.bigBlindNode.Player.placeBet(g.cfg.BigBlind)
		if g.bigBlindNode.Player.stack <= 0 {
			g.allinCount++
		}
	}

	if g.activeCount == g.allinCount {
		return true
	}

	g.lastPlayerAction = ActionBet
	g.minRaise = g.cfg.BigBlind
	g.curBet = g.cfg.BigBlind
	return false
}

func (g *Game) collectBetsLocked() {
	playersWithBets := make([]*Player, 0, g.activeCount)
	for seat := uint16(0); seat < uint16(g.cfg.MaxPlayers); seat++ {
		p := g.playersBySeat[seat]
		if p == nil {
			continue
		}
		if p.bet > 0 {
			playersWithBets = append(playersWithBets, p)
		}
	}
	g.potManager.collectBets(playersWithBets)
	for _, p := range playersWithBets {
		p.resetBet()
	}
	g.curBet = 0
}

func (g *Game) setNeedActionCountLocked() {
	g.needActionCount = g.activeCount - g.allinCount
}

// nextActorOrStreetEndLocked 计算下一个行动玩家和是否结束下注
func (g *Game) nextActorOrStreetEndLocked() (*PlayerNode, bool) {
	if g.needActionCount <= 0 {
		return nil, true
	}

	nextNode := g.curNode.Next.WalkOnce(func(n *PlayerNode) bool {
		return n.Player != nil && !n.Player.folded && n.Player.stack > 0
	})
	if nextNode == nil {
		return nil, true
	}
	// Everyone matched and only one non-allin player remains: nothing left
	// to contest on this street.
	if nextNode.Player.bet >= g.curBet && g.needActionCount == 1 && g.activeCount-g.allinCount == 1 {
		return nextNode, true
	}
	return nextNode, false
}

func (g *Game) allInRunoutLocked() bool {
	return g.allinCount >= g.activeCount-1
}

// advanceToShowdownLocked runs the board out with no further action.
func (g *Game) advanceToShowdownLocked() error {
	for g.street < StreetRiver && len(g.communityCards) < 5 {
		g.street++
		if err := g.dealCommunityCardsLocked(); err != nil {
			return err
		}
	}
	g.street = StreetShowdown
	return nil
}

func (g *Game) endHandLocked() (*SettlementResult, error) {
	settle, err := g.settleLocked()
	if err != nil {
		if IsFatal(err) {
			return nil, g.haltLocked(err)
		}
		return nil, err
	}
	g.street = StreetResult
	g.lastSettlement = settle
	g.ended = true

	if err := g.checkChipInvariantLocked(); err != nil {
		return nil, g.haltLocked(err)
	}
	return settle, nil
}

func (g *Game) appendLogLocked(seat uint16, action ActionType, streetTotal int64) {
	amount := streetTotal
	if action == ActionCheck || action == ActionFold {
		amount = 0
	}
	g.actionLog = append(g.actionLog, ActionRecord{
		Street: g.street,
		Seat:   seat,
		Action: action,
		Amount: amount,
	})
}

// checkChipInvariantLocked verifies chip conservation: the chips dealt
// into the hand equal stacks + live bets + collected pots at all times.
func (g *Game) checkChipInvariantLocked() error {
	var sum int64
	for _, p := range g.playersBySeat {
		if p == nil {
			continue
		}
		sum += p.stack + p.bet
	}
	sum += g.potManager.total()
	if sum != g.handStartChips {
		return ErrInvariant(fmt.Sprintf("chip conservation broken: have %d want %d", sum, g.handStartChips))
	}
	return nil
}

// haltLocked marks the engine dead after an invariant violation. The hand
// cannot continue; the caller gets the diagnostic.
func (g *Game) haltLocked(err error) error {
	g.halted = true
	g.ended = true
	g.street = StreetResult
	return err
}
