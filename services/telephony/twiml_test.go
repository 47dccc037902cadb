package telephony

import (
	"strings"
	"testing"

	"cafedesk/models"
)

func TestRenderDirectiveSpeechGather(t *testing.T) {
	out := RenderDirective(models.Directive{
		Say:    "Please say your booking.",
		Action: models.ActionGather,
	}, "/voice/turn?state=abc")

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<Gather input="speech"`,
		`action="/voice/turn?state=abc"`,
		`timeout="7"`,
		`<Say voice="alice" language="en-IN">Please say your booking.</Say>`,
		`<Redirect method="POST">/voice/turn?state=abc</Redirect>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "numDigits") {
		t.Errorf("speech-only gather should not set numDigits:\n%s", out)
	}
}

func TestRenderDirectiveMenuGatherAcceptsDigits(t *testing.T) {
	out := RenderDirective(models.Directive{
		Say:          "Press 1 for reservations.",
		Action:       models.ActionGather,
		GatherDigits: true,
	}, "/voice/turn")

	for _, want := range []string{
		`input="speech dtmf"`,
		`numDigits="1"`,
		`timeout="5"`,
		`hints="` + gatherHints + `"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDirectiveTransfer(t *testing.T) {
	out := RenderDirective(models.Directive{
		Say:        "Connecting you to our staff.",
		Action:     models.ActionTransfer,
		TransferTo: "+15550001111",
	}, "/voice/turn")

	if !strings.Contains(out, `<Dial><Number>+15550001111</Number></Dial>`) {
		t.Fatalf("output missing dial verb:\n%s", out)
	}
	if strings.Contains(out, "<Gather") {
		t.Fatalf("transfer must not gather:\n%s", out)
	}
}

func TestRenderDirectiveEndHangsUp(t *testing.T) {
	out := RenderDirective(models.Directive{
		Say:    "Your table is booked.",
		Action: models.ActionEnd,
	}, "/voice/turn")

	if !strings.Contains(out, "<Hangup") {
		t.Fatalf("output missing hangup:\n%s", out)
	}
	if strings.Contains(out, "<Redirect") {
		t.Fatalf("ended call must not redirect:\n%s", out)
	}
}

func TestRenderTransferSetsCallerID(t *testing.T) {
	out := RenderTransfer("Please hold.", "+15550001111", "+15559990000")
	if !strings.Contains(out, `<Dial callerId="+15559990000">`) {
		t.Fatalf("output missing caller ID:\n%s", out)
	}
}

func TestRenderStreamConnect(t *testing.T) {
	out := RenderStreamConnect("wss://voice.test/media")
	if !strings.Contains(out, `<Connect><Stream url="wss://voice.test/media"></Stream></Connect>`) {
		t.Fatalf("output missing stream connect:\n%s", out)
	}
}

func TestRenderPlay(t *testing.T) {
	out := RenderPlay("https://voice.test/audio/reply.mp3")
	if !strings.Contains(out, `<Play>https://voice.test/audio/reply.mp3</Play>`) {
		t.Fatalf("output missing play verb:\n%s", out)
	}
	if !strings.Contains(out, `<Pause length="1">`) {
		t.Fatalf("output missing pause verb:\n%s", out)
	}
}
