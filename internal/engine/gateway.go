package engine

import (
	"fmt"

	"github.com/quantline/ladderbot/internal/domain"
)

// The confirmation gateway: destructive and bulk mutations (cancel,
// square-off) are never applied directly. A Request* call stages an explicit
// command into the single dialog slot; ConfirmPending is the one entry point
// that commits it.

// RequestCancel stages a single-order cancel for confirmation.
func (e *Engine) RequestCancel(price int64) {
	key := domain.RoundToTick(price, e.settings.TickSize)
	e.stage(domain.ConfirmCommand{Action: domain.ConfirmCancelOne, Price: key},
		fmt.Sprintf("Cancel armed order at %.2f?", domain.FromMicros(key)))
}

// RequestCancelAll stages a cancel of every armed order.
func (e *Engine) RequestCancelAll() {
	e.stage(domain.ConfirmCommand{Action: domain.ConfirmCancelAll},
		fmt.Sprintf("Cancel all %d armed orders?", len(e.armed)))
}

// RequestSquareOff stages a square-off of the open position at price.
func (e *Engine) RequestSquareOff(price int64) {
	key := domain.RoundToTick(price, e.settings.TickSize)
	e.stage(domain.ConfirmCommand{Action: domain.ConfirmSquareOffOne, Price: key},
		fmt.Sprintf("Square off position at %.2f at market?", domain.FromMicros(key)))
}

// RequestSquareOffAll stages a square-off of every open position.
func (e *Engine) RequestSquareOffAll() {
	e.stage(domain.ConfirmCommand{Action: domain.ConfirmSquareOffAll},
		fmt.Sprintf("Square off all %d open positions at market?", e.OpenCount()))
}

func (e *Engine) stage(cmd domain.ConfirmCommand, message string) {
	e.dialog = domain.DialogState{Open: true, Command: cmd, Message: message}
}

// Dialog returns the current confirmation-dialog state.
func (e *Engine) Dialog() domain.DialogState {
	return e.dialog
}

// CloseDialog discards any staged command without side effects.
func (e *Engine) CloseDialog() {
	e.dialog = domain.DialogState{}
}

// ConfirmPending dispatches the staged command and clears the dialog. It
// returns false when no command is staged, and any trades created by a
// square-off command so callers can hand them on. The dispatched operations
// keep their usual no-op semantics against redundant state.
func (e *Engine) ConfirmPending() ([]domain.Trade, bool) {
	if !e.dialog.Open {
		return nil, false
	}
	cmd := e.dialog.Command
	e.dialog = domain.DialogState{}

	var closed []domain.Trade
	switch cmd.Action {
	case domain.ConfirmCancelOne:
		e.Cancel(cmd.Price)
	case domain.ConfirmCancelAll:
		e.CancelAll()
	case domain.ConfirmSquareOffOne:
		closed = e.SquareOff(cmd.Price)
	case domain.ConfirmSquareOffAll:
		closed = e.SquareOffAll()
	}
	return closed, true
}
