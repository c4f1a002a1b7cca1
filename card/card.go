package card

import (
	"fmt"
	"strings"
)

// Card 牌枚举
//
// 编码规则:
// - 高4位: 花色 (0:Spade, 1:Heart, 2:Club, 3:Diamond)
// - 低4位: 点数 (1:A, 2..9, 10:T, 11:J, 12:Q, 13:K)
type Card byte

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	return fmt.Sprintf("%s%s", c.Suit(), rankString(c&0x0F))
}

// Short returns the two-character ASCII form used by hand-history exports,
// e.g. "As", "Td", "9h".
func (c Card) Short() string {
	if c == CardInvalid {
		return "??"
	}
	suitStr := "?"
	switch c.Suit() {
	case Spade:
		suitStr = "s"
	case Heart:
		suitStr = "h"
	case Club:
		suitStr = "c"
	case Diamond:
		suitStr = "d"
	}
	return rankString(c&0x0F) + suitStr
}

func rankString(rank Card) string {
	switch rank {
	case 1:
		return "A"
	case 10:
		return "T"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return fmt.Sprintf("%d", rank)
	}
}

// Rank 获取牌面值 1-13 (A=1, K=13)
func (c Card) Rank() byte {
	if c == CardInvalid {
		return 0
	}
	return byte(c & 0x0F)
}

// Suit 花色 (0:Spades, 1:Hearts, 2:Clubs, 3:Diamonds)
func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func (c Card) IsAce() bool {
	return c.Rank() == 1
}

// HighRank 返回用于比较大小的点数:
// - A 视为 14
// - 其它为原始点数
func (c Card) HighRank() int {
	r := int(c & 0x0F)
	if r == 1 {
		return 14
	}
	return r
}

// Parse 将字符串 (如 "As", "Td", "10h") 转换为 Card 常量
func Parse(cardStr string) (Card, error) {
	if len(cardStr) < 2 {
		return 0, fmt.Errorf("invalid card string: %s", cardStr)
	}

	suitChar := cardStr[len(cardStr)-1]
	var suitBase Card

	switch suitChar {
	case 's', 'S':
		suitBase = 0x00
	case 'h', 'H':
		suitBase = 0x10
	case 'c', 'C':
		suitBase = 0x20
	case 'd', 'D':
		suitBase = 0x30
	default:
		return 0, fmt.Errorf("invalid suit: %c", suitChar)
	}

	var rankVal Card
	switch strings.ToUpper(cardStr[:len(cardStr)-1]) {
	case "A":
		rankVal = 0x01
	case "2":
		rankVal = 0x02
	case "3":
		rankVal = 0x03
	case "4":
		rankVal = 0x04
	case "5":
		rankVal = 0x05
	case "6":
		rankVal = 0x06
	case "7":
		rankVal = 0x07
	case "8":
		rankVal = 0x08
	case "9":
		rankVal = 0x09
	case "T", "10":
		rankVal = 0x0A
	case "J":
		rankVal = 0x0B
	case "Q":
		rankVal = 0x0C
	case "K":
		rankVal = 0x0D
	default:
		return 0, fmt.Errorf("invalid rank: %s", cardStr[:len(cardStr)-1])
	}

	return suitBase + rankVal, nil
}

// MustParse is Parse for fixtures; panics on bad input.
func MustParse(cardStr string) Card {
	c, err := Parse(cardStr)
	if err != nil {
		panic(err)
	}
	return c
}
