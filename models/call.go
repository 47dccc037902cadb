package models

// Channel identifies how a turn's input arrived.
type Channel string

const (
	ChannelKeypad     Channel = "keypad"
	ChannelSpeech     Channel = "speech"
	ChannelTranscript Channel = "realtime_transcript"
)

// TurnInput is one inbound event from the call-control provider. It is
// consumed by exactly one dialogue transition and never persisted.
type TurnInput struct {
	CallID  string
	Channel Channel
	Digit   string // single DTMF digit, keypad turns only
	Text    string // recognized speech or finalized transcript
}

// DialogueState enumerates where a call is in the conversation. In webhook
// mode the state is not held server-side; it round-trips through the
// continuation token and defaults to MainMenu when the token is absent.
type DialogueState string

const (
	StateMainMenu        DialogueState = "main_menu"
	StateAwaitingDetails DialogueState = "awaiting_details"
	StateAwaitingConfirm DialogueState = "awaiting_confirmation"
	StateEscalated       DialogueState = "escalated"
	StateTerminated      DialogueState = "terminated"
)

// CallState is the full snapshot carried between webhook turns.
type CallState struct {
	Dialogue          DialogueState     `json:"dialogue,omitempty"`
	Reservation       ReservationRecord `json:"reservation,omitempty"`
	Misunderstandings int               `json:"mis,omitempty"`
}

// ActionKind is what the call-control provider should do after speaking.
type ActionKind string

const (
	// ActionGather collects the caller's next utterance or keypress and
	// posts it back as the next turn.
	ActionGather ActionKind = "gather"
	// ActionTransfer dials the staff line and bridges the caller.
	ActionTransfer ActionKind = "transfer"
	// ActionEnd speaks the final utterance and hangs up.
	ActionEnd ActionKind = "end"
)

// Directive is the outcome of one dialogue transition: what to say, what to
// do next, and the snapshot to carry into the next turn.
type Directive struct {
	Say          string
	Action       ActionKind
	GatherDigits bool   // accept DTMF in addition to speech on the next gather
	TransferTo   string // staff number when Action == ActionTransfer
	Next         CallState
}
