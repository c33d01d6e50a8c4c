package combat

import "errors"

var (
	// ErrNotPlayerTurn is returned when an action is submitted outside the player's turn.
	ErrNotPlayerTurn = errors.New("combat: not the player's turn")
	// ErrInvalidMove is returned when the move index is out of range.
	ErrInvalidMove = errors.New("combat: invalid move")
	// ErrInvalidTarget is returned when a single-target move names no living enemy.
	ErrInvalidTarget = errors.New("combat: invalid target")
	// ErrNoEnemies is returned when an encounter is built from an empty roster.
	ErrNoEnemies = errors.New("combat: roster is empty")
	// ErrNilPlayer is returned when an encounter is built without a player.
	ErrNilPlayer = errors.New("combat: player is nil")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("combat: already started")
)
