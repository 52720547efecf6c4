package domain

import "errors"

// The two error classes of the engine. Every error returned by this package and by the
// replicated core wraps exactly one of them.
var (
	// ErrProtocol marks a state/command mismatch: peers desynchronized or a caller broke the contract.
	ErrProtocol = errors.New("protocol violation")
	// ErrPrecondition marks input rejected before any state was produced or mutated.
	ErrPrecondition = errors.New("precondition violation")
)

var (
	ErrTooFewPlayers     = errors.New("at least two players are required")
	ErrHintCount         = errors.New("hint count does not match hints_num")
	ErrEmptyHints        = errors.New("player submitted no hints")
	ErrBarrierCapacity   = errors.New("barrier capacity must be at least 2")
	ErrBarrierOverflow   = errors.New("barrier would exceed its capacity")
	ErrDuplicateKey      = errors.New("key already contributed")
	ErrRoundLength       = errors.New("round lengths differ")
	ErrMissingOffer      = errors.New("player has no market offer")
	ErrCoinTargeted      = errors.New("a coin offer cannot be exchanged for")
	ErrSelfExchange      = errors.New("player cannot exchange with themself")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrHintNotOwned      = errors.New("hint is not owned by the player")
	ErrNoCoins           = errors.New("player has no coins to offer")
	ErrLedgerUnderflow   = errors.New("ledger would remove a hint or coin the player does not have")
	ErrDuplicateSubmitID = errors.New("player appears twice in one submission set")
)
