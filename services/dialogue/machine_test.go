package dialogue

import (
	"context"
	"strings"
	"testing"

	"cafedesk/models"
)

func testProfile() Profile {
	return Profile{
		CafeName:             "Test Café",
		Hours:                "8 AM to 9 PM",
		Address:              "12 Test Lane",
		WifiInfo:             "Network: test, Password: test123",
		MenuLink:             "https://example.com/menu",
		StaffNumber:          "+15550001111",
		MaxMisunderstandings: 2,
	}
}

func testMachine(p Profile) *Machine {
	return &Machine{
		Profile:  p,
		Classify: RuleClassifier{},
		Extract:  RuleExtractor{},
	}
}

func TestAdvanceDigitOneStartsReservation(t *testing.T) {
	m := testMachine(testProfile())
	d := m.Advance(context.Background(), models.CallState{}, models.TurnInput{
		Channel: models.ChannelKeypad, Digit: "1",
	})
	if d.Next.Dialogue != models.StateAwaitingDetails {
		t.Fatalf("Next.Dialogue = %q, want %q", d.Next.Dialogue, models.StateAwaitingDetails)
	}
	if d.Action != models.ActionGather {
		t.Fatalf("Action = %q, want %q", d.Action, models.ActionGather)
	}
}

func TestAdvanceCannedAnswersResetCounter(t *testing.T) {
	m := testMachine(testProfile())
	for _, digit := range []string{"2", "3", "4", "5"} {
		d := m.Advance(context.Background(), models.CallState{
			Dialogue:          models.StateMainMenu,
			Misunderstandings: 2,
		}, models.TurnInput{Channel: models.ChannelKeypad, Digit: digit})
		if d.Next.Dialogue != models.StateMainMenu {
			t.Errorf("digit %s: Next.Dialogue = %q, want main menu", digit, d.Next.Dialogue)
		}
		if d.Next.Misunderstandings != 0 {
			t.Errorf("digit %s: counter = %d, want reset to 0", digit, d.Next.Misunderstandings)
		}
	}
}

func TestAdvanceSpeechIntentAnswers(t *testing.T) {
	m := testMachine(testProfile())
	d := m.Advance(context.Background(), models.CallState{}, models.TurnInput{
		Channel: models.ChannelSpeech, Text: "what are your opening hours",
	})
	if !strings.Contains(d.Say, m.Profile.Hours) {
		t.Fatalf("Say = %q, want hours mentioned", d.Say)
	}
	if d.Next.Dialogue != models.StateMainMenu {
		t.Fatalf("Next.Dialogue = %q, want main menu", d.Next.Dialogue)
	}
}

func TestAdvanceMisunderstandingIncrements(t *testing.T) {
	m := testMachine(testProfile())
	d := m.Advance(context.Background(), models.CallState{}, models.TurnInput{
		Channel: models.ChannelSpeech, Text: "blargh",
	})
	if d.Next.Misunderstandings != 1 {
		t.Fatalf("counter = %d, want 1", d.Next.Misunderstandings)
	}
	if !strings.HasPrefix(d.Say, "Sorry, I didn't get that.") {
		t.Fatalf("Say = %q, want apology prefix", d.Say)
	}
}

func TestAdvanceEscalatesPastThreshold(t *testing.T) {
	m := testMachine(testProfile())

	// At the threshold: one more miss is still tolerated.
	d := m.Advance(context.Background(), models.CallState{
		Dialogue:          models.StateMainMenu,
		Misunderstandings: 1,
	}, models.TurnInput{Channel: models.ChannelSpeech, Text: "blargh"})
	if d.Action == models.ActionTransfer {
		t.Fatalf("escalated at counter == threshold, want one more chance")
	}
	if d.Next.Misunderstandings != 2 {
		t.Fatalf("counter = %d, want 2", d.Next.Misunderstandings)
	}

	// Past the threshold: transfer to staff.
	d = m.Advance(context.Background(), d.Next, models.TurnInput{
		Channel: models.ChannelSpeech, Text: "blargh",
	})
	if d.Action != models.ActionTransfer {
		t.Fatalf("Action = %q, want transfer", d.Action)
	}
	if d.TransferTo != m.Profile.StaffNumber {
		t.Fatalf("TransferTo = %q, want %q", d.TransferTo, m.Profile.StaffNumber)
	}
	if d.Next.Dialogue != models.StateEscalated {
		t.Fatalf("Next.Dialogue = %q, want %q", d.Next.Dialogue, models.StateEscalated)
	}
}

func TestAdvanceNoStaffLineKeepsReprompting(t *testing.T) {
	p := testProfile()
	p.StaffNumber = ""
	m := testMachine(p)

	state := models.CallState{Dialogue: models.StateMainMenu, Misunderstandings: 5}
	d := m.Advance(context.Background(), state, models.TurnInput{
		Channel: models.ChannelSpeech, Text: "blargh",
	})
	if d.Action == models.ActionTransfer {
		t.Fatalf("transferred with no staff line configured")
	}
	if d.Next.Dialogue != models.StateMainMenu {
		t.Fatalf("Next.Dialogue = %q, want main menu", d.Next.Dialogue)
	}
	if d.Next.Misunderstandings != 6 {
		t.Fatalf("counter = %d, want 6", d.Next.Misunderstandings)
	}
}

func TestAdvanceDigitZeroTransfers(t *testing.T) {
	m := testMachine(testProfile())
	d := m.Advance(context.Background(), models.CallState{}, models.TurnInput{
		Channel: models.ChannelKeypad, Digit: "0",
	})
	if d.Action != models.ActionTransfer {
		t.Fatalf("Action = %q, want transfer", d.Action)
	}
}

func TestAdvanceDetailsToConfirmation(t *testing.T) {
	m := testMachine(testProfile())
	d := m.Advance(context.Background(), models.CallState{
		Dialogue: models.StateAwaitingDetails,
	}, models.TurnInput{
		Channel: models.ChannelSpeech,
		Text:    "table for 4 tomorrow at 7pm under the name Asha",
	})
	if d.Next.Dialogue != models.StateAwaitingConfirm {
		t.Fatalf("Next.Dialogue = %q, want %q", d.Next.Dialogue, models.StateAwaitingConfirm)
	}
	if d.Next.Reservation.PartySize != 4 {
		t.Fatalf("Reservation.PartySize = %d, want 4", d.Next.Reservation.PartySize)
	}
	for _, want := range []string{"4 people", "tomorrow", "7pm", "Asha", "confirm"} {
		if !strings.Contains(d.Say, want) {
			t.Errorf("Say = %q, want it to mention %q", d.Say, want)
		}
	}
}

func TestAdvanceDetailsFailureStaysAndCounts(t *testing.T) {
	m := testMachine(testProfile())
	d := m.Advance(context.Background(), models.CallState{
		Dialogue: models.StateAwaitingDetails,
	}, models.TurnInput{Channel: models.ChannelSpeech, Text: "hello there"})
	if d.Next.Dialogue != models.StateAwaitingDetails {
		t.Fatalf("Next.Dialogue = %q, want to stay awaiting details", d.Next.Dialogue)
	}
	if d.Next.Misunderstandings != 1 {
		t.Fatalf("counter = %d, want 1", d.Next.Misunderstandings)
	}
}

func TestAdvanceDetailsFailuresEscalate(t *testing.T) {
	m := testMachine(testProfile())
	state := models.CallState{
		Dialogue:          models.StateAwaitingDetails,
		Misunderstandings: 2,
	}
	d := m.Advance(context.Background(), state, models.TurnInput{
		Channel: models.ChannelSpeech, Text: "hello there",
	})
	if d.Action != models.ActionTransfer {
		t.Fatalf("Action = %q, want transfer after repeated failures", d.Action)
	}
}

func TestAdvanceConfirmBooks(t *testing.T) {
	m := testMachine(testProfile())
	rec := models.ReservationRecord{PartySize: 4, DateText: "tomorrow", TimeText: "7pm", Name: "Asha"}
	for _, text := range []string{"confirm", "yes confirm that", "Yes please", "yep"} {
		d := m.Advance(context.Background(), models.CallState{
			Dialogue:    models.StateAwaitingConfirm,
			Reservation: rec,
		}, models.TurnInput{Channel: models.ChannelSpeech, Text: text})
		if d.Next.Dialogue != models.StateTerminated {
			t.Errorf("%q: Next.Dialogue = %q, want terminated", text, d.Next.Dialogue)
		}
		if d.Action != models.ActionEnd {
			t.Errorf("%q: Action = %q, want end", text, d.Action)
		}
		if d.Next.Reservation != rec {
			t.Errorf("%q: Reservation = %+v, want carried through", text, d.Next.Reservation)
		}
		if !strings.Contains(d.Say, "booked") {
			t.Errorf("%q: Say = %q, want booking acknowledgment", text, d.Say)
		}
	}
}

func TestAdvanceNonConfirmRestartsMenu(t *testing.T) {
	m := testMachine(testProfile())
	d := m.Advance(context.Background(), models.CallState{
		Dialogue:    models.StateAwaitingConfirm,
		Reservation: models.ReservationRecord{PartySize: 4, DateText: "tomorrow"},
	}, models.TurnInput{Channel: models.ChannelSpeech, Text: "change"})
	if d.Next.Dialogue != models.StateMainMenu {
		t.Fatalf("Next.Dialogue = %q, want main menu", d.Next.Dialogue)
	}
	if d.Next.Reservation != (models.ReservationRecord{}) {
		t.Fatalf("Reservation = %+v, want discarded", d.Next.Reservation)
	}
	if !strings.HasPrefix(d.Say, "Okay, let's restart.") {
		t.Fatalf("Say = %q, want restart prefix", d.Say)
	}
}

func TestAdvanceTerminatedStateRestartsAtMenu(t *testing.T) {
	m := testMachine(testProfile())
	d := m.Advance(context.Background(), models.CallState{
		Dialogue: models.StateTerminated,
	}, models.TurnInput{Channel: models.ChannelSpeech, Text: "what are your opening hours"})
	if d.Next.Dialogue != models.StateMainMenu {
		t.Fatalf("Next.Dialogue = %q, want main menu", d.Next.Dialogue)
	}
}

func TestPromptMainMenuCarriesCounter(t *testing.T) {
	m := testMachine(testProfile())
	d := m.PromptMainMenu(models.CallState{Misunderstandings: 1})
	if d.Next.Misunderstandings != 1 {
		t.Fatalf("counter = %d, want preserved across silence redirects", d.Next.Misunderstandings)
	}
	if !d.GatherDigits {
		t.Fatalf("GatherDigits = false, want true on the menu prompt")
	}
}

func TestConfirmSummaryFallbacks(t *testing.T) {
	m := testMachine(testProfile())
	say := m.confirmSummary(models.ReservationRecord{PartySize: 2, TimeText: "7pm"})
	if !strings.Contains(say, "the selected date") {
		t.Errorf("summary = %q, want date fallback", say)
	}
	if !strings.Contains(say, "unknown") {
		t.Errorf("summary = %q, want name fallback", say)
	}
}
