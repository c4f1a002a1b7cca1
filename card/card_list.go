package card

type CardList []Card

func (ds *CardList) Init(cards []Card) {
	*ds = make([]Card, len(cards))
	copy(*ds, cards)
}

// Count 获取总牌数
func (ds CardList) Count() int {
	return len(ds)
}

func (ds CardList) Contains(c Card) bool {
	for _, cc := range ds {
		if cc == c {
			return true
		}
	}
	return false
}

func (ds *CardList) Add(cards ...Card) {
	*ds = append(*ds, cards...)
}

func (ds CardList) Shorts() []string {
	out := make([]string, 0, len(ds))
	for _, c := range ds {
		out = append(out, c.Short())
	}
	return out
}
