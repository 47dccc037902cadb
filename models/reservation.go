package models

import "time"

// ReservationRecord is the partial record the extractor fills from one
// utterance. A record is sufficient to confirm only when the party size is
// known and at least one of the date or time cues is present.
type ReservationRecord struct {
	PartySize int    `json:"party_size,omitempty"`
	DateText  string `json:"date_text,omitempty"`
	TimeText  string `json:"time_text,omitempty"`
	Name      string `json:"name,omitempty"`
	Raw       string `json:"raw,omitempty"`
}

// Sufficient reports whether the record carries enough slots to read back a
// confirmation summary.
func (r ReservationRecord) Sufficient() bool {
	return r.PartySize > 0 && (r.DateText != "" || r.TimeText != "")
}

// Reservation is a committed booking, stored once the caller confirms.
type Reservation struct {
	ID           string    `bson:"id" json:"id"`
	CallSID      string    `bson:"callSid" json:"callSid"`
	Name         string    `bson:"name" json:"name"`
	PartySize    int       `bson:"partySize" json:"partySize"`
	DateText     string    `bson:"dateText" json:"dateText"`
	TimeText     string    `bson:"timeText" json:"timeText"`
	RawUtterance string    `bson:"rawUtterance" json:"rawUtterance"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ReminderPayload is the asynq task payload for a staff reminder about an
// upcoming reservation.
type ReminderPayload struct {
	ReservationID string `json:"reservationId"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	FireDate      string `json:"fireDate"`
}
