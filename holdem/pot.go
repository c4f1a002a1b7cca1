package holdem

import "sort"

type pot struct {
	amount        int64
	eligibleSeats map[uint16]bool
}

type potManager struct {
	pots         []pot
	excessSeat   uint16
	excessAmount int64
}

func (pm *potManager) resetPots() {
	pm.pots = make([]pot, 0)
	pm.excessSeat = InvalidSeat
	pm.excessAmount = 0
}

func (pm *potManager) addPot(p ...pot) {
	pm.pots = append(pm.pots, p...)
}

// total 所有彩池金额之和
func (pm *potManager) total() int64 {
	var sum int64
	for _, p := range pm.pots {
		sum += p.amount
	}
	return sum
}

func (pm *potManager) removeSeat(seat uint16) {
	for i := range pm.pots {
		delete(pm.pots[i].eligibleSeats, seat)
	}
}

// collectBets buckets the street's bets into pots by contribution level:
// refund the unmatched top of the largest bet, sort the rest ascending,
// cut one layer per distinct all-in level, and make every player who
// contributed at least that level eligible. Folded players pay into a
// layer without gaining eligibility.
func (pm *potManager) collectBets(playersWithBets []*Player) {
	// 按照玩家下注金额排序
	sort.Slice(playersWithBets, func(i, j int) bool {
		return playersWithBets[i].Bet() < playersWithBets[j].Bet()
	})

	// 处理超额下注，将多余的筹码返还给玩家
	pm.excessSeat = InvalidSeat
	pm.excessAmount = 0
	if len(playersWithBets) > 0 {
		lastPlayer := playersWithBets[len(playersWithBets)-1]
		maxBet := lastPlayer.Bet()

		var secondMaxBet int64
		if len(playersWithBets) > 1 {
			secondMaxBet = playersWithBets[len(playersWithBets)-2].Bet()
		}

		excess := maxBet - secondMaxBet
		if excess > 0 {
			lastPlayer.addStack(excess)
			lastPlayer.addBet(-excess)

			pm.excessSeat = lastPlayer.SeatID()
			pm.excessAmount = excess
		}
	}

	totalContributed := int64(0)
	for i, player := range playersWithBets {
		bet := player.Bet()

		// 计算这一层级的贡献额度
		contribution := bet - totalContributed
		if contribution <= 0 {
			continue
		}

		newPot := pot{
			amount:        0,
			eligibleSeats: make(map[uint16]bool),
		}

		for j := i; j < len(playersWithBets); j++ {
			playerJ := playersWithBets[j]
			actualContribution := contribution
			if actualContribution > playerJ.Bet()-totalContributed {
				actualContribution = playerJ.Bet() - totalContributed
			}

			newPot.amount += actualContribution
			if !playerJ.Folded() {
				newPot.eligibleSeats[playerJ.SeatID()] = true
			}
		}

		// 检查最后一个底池是否具有相同参与者，如果是则合并金额
		merged := false
		if len(pm.pots) > 0 {
			lastPot := &pm.pots[len(pm.pots)-1]
			if sameSeatSet(lastPot.eligibleSeats, newPot.eligibleSeats) {
				lastPot.amount += newPot.amount
				merged = true
			}
		}

		if !merged && len(newPot.eligibleSeats) > 0 {
			pm.addPot(newPot)
		}

		totalContributed += contribution
	}
}

func sameSeatSet(a, b map[uint16]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for seat := range b {
		if !a[seat] {
			return false
		}
	}
	return true
}
