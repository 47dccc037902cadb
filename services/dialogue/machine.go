package dialogue

import (
	"context"
	"fmt"
	"strings"

	"cafedesk/models"
)

// Profile is the spoken-facts configuration for one café. The machine reads
// everything it says to callers from here so transitions stay config-free
// and testable.
type Profile struct {
	CafeName             string
	Hours                string
	Address              string
	WifiInfo             string
	MenuLink             string
	StaffNumber          string
	MaxMisunderstandings int
}

// HasStaffLine reports whether a human transfer target is configured.
func (p Profile) HasStaffLine() bool {
	return p.StaffNumber != ""
}

// confirmWords are the affirmations accepted at the confirmation step.
var confirmWords = []string{"confirm", "yes", "yeah", "yep", "correct"}

// Machine is the dialogue state machine. Advance is a pure function of the
// carried snapshot and the turn input; all per-call memory lives in the
// snapshot, which the caller round-trips between turns.
type Machine struct {
	Profile  Profile
	Classify Classifier
	Extract  Extractor
}

// Advance runs one turn: it decides what to say, what the provider should do
// next, and the snapshot to carry forward in Directive.Next.
func (m *Machine) Advance(ctx context.Context, state models.CallState, in models.TurnInput) models.Directive {
	if state.Dialogue == "" {
		state.Dialogue = models.StateMainMenu
	}

	switch state.Dialogue {
	case models.StateAwaitingDetails:
		return m.awaitDetails(ctx, state, in)
	case models.StateAwaitingConfirm:
		return m.awaitConfirm(state, in)
	case models.StateMainMenu:
		return m.mainMenu(ctx, state, in)
	default:
		// Terminated and Escalated calls that somehow post another turn
		// restart cleanly at the menu.
		return m.mainMenu(ctx, models.CallState{Dialogue: models.StateMainMenu}, in)
	}
}

func (m *Machine) mainMenu(ctx context.Context, state models.CallState, in models.TurnInput) models.Directive {
	if in.Digit != "" {
		switch in.Digit {
		case "1":
			return m.promptDetails()
		case "2":
			return m.answer(fmt.Sprintf("You can see our menu here: %s. Anything else I can help with?", m.Profile.MenuLink))
		case "3":
			return m.answer(fmt.Sprintf("Our opening hours are %s. Anything else I can help with?", m.Profile.Hours))
		case "4":
			return m.answer(fmt.Sprintf("We are at %s. Anything else I can help with?", m.Profile.Address))
		case "5":
			return m.answer(fmt.Sprintf("Here is the Wi-Fi information. %s. Anything else?", m.Profile.WifiInfo))
		case "0":
			return m.transferToStaff(state)
		default:
			return m.misunderstood(state)
		}
	}

	if strings.TrimSpace(in.Text) == "" {
		return m.misunderstood(state)
	}

	switch m.Classify.Classify(ctx, in.Text) {
	case IntentReservation:
		return m.promptDetails()
	case IntentMenu:
		return m.answer(fmt.Sprintf("You can see our menu here: %s. Anything else I can help with?", m.Profile.MenuLink))
	case IntentHours:
		return m.answer(fmt.Sprintf("Our opening hours are %s.", m.Profile.Hours))
	case IntentLocation:
		return m.answer(fmt.Sprintf("We are at %s.", m.Profile.Address))
	case IntentWifi:
		return m.answer(m.Profile.WifiInfo + ".")
	case IntentHuman:
		return m.transferToStaff(state)
	default:
		return m.misunderstood(state)
	}
}

func (m *Machine) awaitDetails(ctx context.Context, state models.CallState, in models.TurnInput) models.Directive {
	text := strings.TrimSpace(in.Text)
	if text != "" {
		if rec, ok := m.Extract.Extract(ctx, text); ok {
			// The record is read back once and never edited afterwards; a
			// "change" answer discards it and restarts the menu.
			return models.Directive{
				Say:    m.confirmSummary(rec),
				Action: models.ActionGather,
				Next: models.CallState{
					Dialogue:    models.StateAwaitingConfirm,
					Reservation: rec,
				},
			}
		}
	}

	state.Misunderstandings++
	if ShouldEscalate(state.Misunderstandings, m.Profile.MaxMisunderstandings, m.Profile.HasStaffLine()) {
		return m.transferToStaff(state)
	}
	return models.Directive{
		Say: "Sorry, I could not get the reservation details. Please say your booking like this: " +
			"'Book a table for two, tomorrow at 7 p.m., under the name Priya'.",
		Action: models.ActionGather,
		Next: models.CallState{
			Dialogue:          models.StateAwaitingDetails,
			Misunderstandings: state.Misunderstandings,
		},
	}
}

func (m *Machine) awaitConfirm(state models.CallState, in models.TurnInput) models.Directive {
	text := strings.ToLower(in.Text)
	for _, w := range confirmWords {
		if strings.Contains(text, w) {
			return models.Directive{
				Say:    "Awesome. Your table is booked. We look forward to seeing you!",
				Action: models.ActionEnd,
				Next: models.CallState{
					Dialogue:    models.StateTerminated,
					Reservation: state.Reservation,
				},
			}
		}
	}

	d := m.promptMainMenu(models.CallState{Dialogue: models.StateMainMenu})
	d.Say = "Okay, let's restart. " + d.Say
	return d
}

// PromptMainMenu is the greeting and menu read on call entry and after every
// canned answer.
func (m *Machine) PromptMainMenu(state models.CallState) models.Directive {
	return m.promptMainMenu(state)
}

func (m *Machine) promptMainMenu(state models.CallState) models.Directive {
	return models.Directive{
		Say: fmt.Sprintf("Hi, welcome to %s! ", m.Profile.CafeName) +
			"You can say things like 'book a table for two at 7 p.m. today', " +
			"or ask for 'today's menu' or 'opening hours'. " +
			"Or press 1 for reservations, 2 for menu, 3 for hours, 4 for location, 5 for Wi-Fi, 0 to talk to staff.",
		Action:       models.ActionGather,
		GatherDigits: true,
		Next: models.CallState{
			Dialogue:          models.StateMainMenu,
			Misunderstandings: state.Misunderstandings,
		},
	}
}

func (m *Machine) promptDetails() models.Directive {
	return models.Directive{
		Say: "Great. Please say your booking like this: " +
			"'Book a table for two, tomorrow at 7 p.m., under the name Priya'.",
		Action: models.ActionGather,
		Next:   models.CallState{Dialogue: models.StateAwaitingDetails},
	}
}

// answer handles a canned informational query: the turn succeeded, so the
// misunderstanding counter resets and the caller lands back on the menu.
func (m *Machine) answer(text string) models.Directive {
	d := m.promptMainMenu(models.CallState{Dialogue: models.StateMainMenu})
	d.Say = text + " " + d.Say
	return d
}

func (m *Machine) transferToStaff(state models.CallState) models.Directive {
	if !m.Profile.HasStaffLine() {
		d := m.promptMainMenu(models.CallState{
			Dialogue:          models.StateMainMenu,
			Misunderstandings: state.Misunderstandings,
		})
		d.Say = "Sorry, no staff member is available to take your call right now. " + d.Say
		return d
	}
	return models.Directive{
		Say:        "Connecting you to our staff. Please hold.",
		Action:     models.ActionTransfer,
		TransferTo: m.Profile.StaffNumber,
		Next:       models.CallState{Dialogue: models.StateEscalated},
	}
}

func (m *Machine) misunderstood(state models.CallState) models.Directive {
	state.Misunderstandings++
	if ShouldEscalate(state.Misunderstandings, m.Profile.MaxMisunderstandings, m.Profile.HasStaffLine()) {
		return m.transferToStaff(state)
	}
	d := m.promptMainMenu(models.CallState{
		Dialogue:          models.StateMainMenu,
		Misunderstandings: state.Misunderstandings,
	})
	d.Say = "Sorry, I didn't get that. " + d.Say
	return d
}

func (m *Machine) confirmSummary(rec models.ReservationRecord) string {
	date := rec.DateText
	if date == "" {
		date = "the selected date"
	}
	timeText := rec.TimeText
	if timeText == "" {
		timeText = "the selected time"
	}
	name := rec.Name
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("Let me confirm: %d people, on %s at %s under the name %s. "+
		"If this is correct, say 'confirm'. To change, say 'change'.",
		rec.PartySize, date, timeText, name)
}
