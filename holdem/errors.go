package holdem

import "errors"

var (
	ErrHandEnded      = errors.New("hand already ended")
	ErrHandInProgress = errors.New("hand in progress")
	ErrOutOfTurn      = errors.New("action out of turn")
)

type InvalidActionError string

func (e InvalidActionError) Error() string { return "invalid action: " + string(e) }

func ErrInvalidAction(msg string) error { return InvalidActionError(msg) }

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }

// InvariantError 表示引擎内部不变量被破坏（筹码守恒、重复发牌等）。
// 这是引擎 bug，不是用户错误：当前手牌立即终止，不再继续。
type InvariantError string

func (e InvariantError) Error() string { return "invariant violation: " + string(e) }

func ErrInvariant(msg string) error { return InvariantError(msg) }

// IsFatal reports whether err indicates a broken engine invariant rather
// than a rejected player action.
func IsFatal(err error) bool {
	var ie InvariantError
	return errors.As(err, &ie)
}
