package domain

// ConfirmAction identifies a destructive mutation that must pass through the
// confirmation gateway before it commits.
type ConfirmAction string

const (
	ConfirmCancelOne    ConfirmAction = "CANCEL_ONE"
	ConfirmCancelAll    ConfirmAction = "CANCEL_ALL"
	ConfirmSquareOffOne ConfirmAction = "SQUAREOFF_ONE"
	ConfirmSquareOffAll ConfirmAction = "SQUAREOFF_ALL"
)

// ConfirmCommand is the explicit command object staged by a Request* call and
// dispatched by ConfirmPending. Price is ignored for the bulk actions.
type ConfirmCommand struct {
	Action ConfirmAction `json:"action"`
	Price  int64         `json:"price,omitempty"` // micros
}

// DialogState is the single confirmation-dialog slot. While Open is true a
// destructive command is staged and waiting for the explicit confirm step;
// closing the dialog discards it without side effects.
type DialogState struct {
	Open    bool           `json:"open"`
	Command ConfirmCommand `json:"command"`
	Message string         `json:"message"`
}
