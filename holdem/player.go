package holdem

import "holdem-trainer/card"

type Player struct {
	ID   uint64
	Seat uint16
	Name string
	Hero bool

	position Position

	stack int64
	// bet 本街已下注额
	bet int64
	// invested 本手累计投入（用于筹码守恒校验和战报）
	invested int64

	allIn      bool
	folded     bool
	lastAction ActionType
	// acted 本街是否已表态（完整加注后清空，用于 reopen 判定）
	acted bool

	holeCards card.CardList
	evalRes   *HandResult
}

func (p *Player) SeatID() uint16           { return p.Seat }
func (p *Player) IsHero() bool             { return p.Hero }
func (p *Player) Position() Position       { return p.position }
func (p *Player) Stack() int64             { return p.stack }
func (p *Player) Bet() int64               { return p.bet }
func (p *Player) Invested() int64          { return p.invested }
func (p *Player) AllIn() bool              { return p.allIn }
func (p *Player) Folded() bool             { return p.folded }
func (p *Player) HoleCards() card.CardList { return p.holeCards }

func (p *Player) ResetForNewHand() {
	p.bet = 0
	p.invested = 0
	p.allIn = false
	p.folded = false
	p.lastAction = ActionNone
	p.acted = false
	p.position = PositionNone
	p.holeCards = make([]card.Card, 0, 2)
	p.evalRes = nil
}

func (p *Player) AddHoleCard(cards ...card.Card) {
	p.holeCards = append(p.holeCards, cards...)
}

func (p *Player) setLastAction(a ActionType) { p.lastAction = a }

// placeBet moves chips from stack to the street bet. Short stacks go
// all-in for whatever remains.
func (p *Player) placeBet(amount int64) {
	if amount <= 0 {
		return
	}
	if p.stack <= amount {
		p.allIn = true
		amount = p.stack
	}
	p.stack -= amount
	p.bet += amount
	p.invested += amount
}

func (p *Player) addBet(amount int64) {
	p.bet += amount
	p.invested += amount
}

func (p *Player) resetBet() {
	p.bet = 0
}

func (p *Player) addStack(amount int64) {
	p.stack += amount
}

func (p *Player) setFolded(v bool) { p.folded = v }

func (p *Player) setPosition(pos Position) { p.position = pos }

func (p *Player) setEvalResult(r *HandResult) { p.evalRes = r }

type PlayerNode struct {
	Player *Player
	Seat   uint16
	Next   *PlayerNode
}

// WalkOnce 遍历链表一圈（可从任意 start 开始），支持 break。
// fn 返回 true 表示“找到/停止”，false 表示继续。
func (n *PlayerNode) WalkOnce(fn func(*PlayerNode) bool) *PlayerNode {
	if n == nil {
		return nil
	}
	cur := n
	for {
		if fn(cur) {
			return cur
		}
		cur = cur.Next
		if cur == nil || cur == n {
			break
		}
	}
	return nil
}

// WalkAll 遍历一圈，不中断
func (n *PlayerNode) WalkAll(fn func(cur *PlayerNode)) {
	n.WalkOnce(func(cur *PlayerNode) bool {
		fn(cur)
		return false
	})
}
