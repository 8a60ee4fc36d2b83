package view

import "indigo/internal/models"

// Op names the command an Outcome belongs to.
type Op string

const (
	OpStart          Op = "start"
	OpSnapshot       Op = "snapshot"
	OpToggle         Op = "toggle_availability"
	OpOpenPinPad     Op = "open_pin_pad"
	OpCancelPinPad   Op = "cancel_pin_pad"
	OpSubmitPin      Op = "submit_pin"
	OpExitAdmin      Op = "exit_admin"
	OpBeginEdit      Op = "begin_edit"
	OpSaveEdit       Op = "save_edit"
	OpBeginAdd       Op = "begin_add"
	OpAddItem        Op = "add_item"
	OpMarkForDelete  Op = "mark_for_deletion"
	OpConfirmDelete  Op = "confirm_delete"
	OpAskAI          Op = "ask_ai"
	OpUpdateDraft    Op = "update_draft"
	OpCloseDialog    Op = "close_dialog"
	OpOpenAssistant  Op = "open_assistant"
	OpCloseAssistant Op = "close_assistant"
)

// Reason explains why a command did nothing or failed. Empty means success.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNotAdmin      Reason = "not_admin"
	ReasonNoTarget      Reason = "no_target"
	ReasonMissingFields Reason = "missing_fields"
	ReasonEmptyMood     Reason = "empty_mood"
	ReasonBusy          Reason = "busy"
	ReasonWrongPIN      Reason = "wrong_pin"
	ReasonWriteFailed   Reason = "write_failed"
	ReasonClosed        Reason = "closed"
	ReasonUnavailable   Reason = "unavailable"
)

// Outcome is the result of a controller command.
type Outcome struct {
	Op     Op
	Reason Reason
	Err    error
}

func ok(op Op) Outcome { return Outcome{Op: op} }

func skipped(op Op, reason Reason) Outcome { return Outcome{Op: op, Reason: reason} }

func failed(op Op, err error) Outcome { return Outcome{Op: op, Reason: ReasonWriteFailed, Err: err} }

// OK reports whether the command took effect.
func (o Outcome) OK() bool {
	return o.Reason == ReasonNone
}

// Alert returns the operator-facing message for outcomes that must be
// surfaced, and "" for success and silent no-ops.
func (o Outcome) Alert() string {
	switch o.Reason {
	case ReasonWrongPIN:
		return models.AlertWrongPassword
	case ReasonWriteFailed:
		switch o.Op {
		case OpToggle:
			return models.AlertAvailabilityFailed
		case OpSaveEdit:
			return models.AlertSaveFailed
		case OpAddItem:
			return models.AlertAddFailed
		case OpConfirmDelete:
			return models.AlertDeleteFailed
		}
	}
	return ""
}
