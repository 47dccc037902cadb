package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cafedesk/models"
	"cafedesk/services/dialogue"
	"cafedesk/services/reservation"
)

func newTestRouter(h *VoiceHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/voice", h.VoiceEntry)
	r.POST("/voice/turn", h.Turn)
	return r
}

func newTestVoiceHandler() *VoiceHandler {
	return &VoiceHandler{
		Machine: &dialogue.Machine{
			Profile: dialogue.Profile{
				CafeName:             "Test Café",
				Hours:                "8 AM to 9 PM",
				Address:              "12 Test Lane",
				WifiInfo:             "Network: test",
				MenuLink:             "https://example.com/menu",
				StaffNumber:          "+15550001111",
				MaxMisunderstandings: 2,
			},
			Classify: dialogue.RuleClassifier{},
			Extract:  dialogue.RuleExtractor{},
		},
		Codec:   dialogue.NewStateCodec("test-secret"),
		Booking: &reservation.Service{Logger: zap.NewNop()},
		Logger:  zap.NewNop(),
	}
}

func postTurn(t *testing.T, r *gin.Engine, stateToken string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	target := "/voice/turn"
	if stateToken != "" {
		target += "?state=" + url.QueryEscape(stateToken)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// stateTokenRe pulls the continuation token out of the gather action URL.
var stateTokenRe = regexp.MustCompile(`action="/voice/turn\?state=([^"]+)"`)

func nextStateToken(t *testing.T, body string) string {
	t.Helper()
	m := stateTokenRe.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no continuation token in response:\n%s", body)
	}
	tok, err := url.QueryUnescape(m[1])
	if err != nil {
		t.Fatalf("unescape token: %v", err)
	}
	return tok
}

func TestVoiceEntryPromptsMenu(t *testing.T) {
	h := newTestVoiceHandler()
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/voice", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Fatalf("content type = %q, want text/xml", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "welcome to Test Café") {
		t.Fatalf("body missing greeting:\n%s", body)
	}
	if !strings.Contains(body, "<Gather") {
		t.Fatalf("body missing gather:\n%s", body)
	}
}

func TestVoiceEntryRealtimeModeConnectsStream(t *testing.T) {
	h := newTestVoiceHandler()
	h.RealtimeWSURL = "wss://voice.test/media"
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/voice", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `<Stream url="wss://voice.test/media">`) {
		t.Fatalf("body missing stream connect:\n%s", w.Body.String())
	}
}

// A full happy-path booking: menu digit, spoken details, confirmation.
func TestTurnBookingFlow(t *testing.T) {
	h := newTestVoiceHandler()
	r := newTestRouter(h)

	w := postTurn(t, r, "", url.Values{"CallSid": {"CA1"}, "Digits": {"1"}})
	body := w.Body.String()
	if !strings.Contains(body, "say your booking") {
		t.Fatalf("details prompt missing:\n%s", body)
	}
	tok := nextStateToken(t, body)
	if st := h.Codec.Decode(tok); st.Dialogue != models.StateAwaitingDetails {
		t.Fatalf("carried state = %q, want awaiting details", st.Dialogue)
	}

	w = postTurn(t, r, tok, url.Values{
		"CallSid":      {"CA1"},
		"SpeechResult": {"book a table for 4 tomorrow at 7pm under the name Asha"},
	})
	body = w.Body.String()
	if !strings.Contains(body, "Let me confirm: 4 people") {
		t.Fatalf("confirmation prompt missing:\n%s", body)
	}
	tok = nextStateToken(t, body)
	st := h.Codec.Decode(tok)
	if st.Dialogue != models.StateAwaitingConfirm || st.Reservation.Name != "Asha" {
		t.Fatalf("carried state = %+v, want confirmation with record", st)
	}

	w = postTurn(t, r, tok, url.Values{"CallSid": {"CA1"}, "SpeechResult": {"yes confirm that"}})
	body = w.Body.String()
	if !strings.Contains(body, "Your table is booked") {
		t.Fatalf("booking acknowledgment missing:\n%s", body)
	}
	if !strings.Contains(body, "<Hangup") {
		t.Fatalf("ended call missing hangup:\n%s", body)
	}
}

func TestTurnEscalatesToDial(t *testing.T) {
	h := newTestVoiceHandler()
	h.CallerID = "+15559990000"
	r := newTestRouter(h)

	tok := h.Codec.Encode(models.CallState{
		Dialogue:          models.StateMainMenu,
		Misunderstandings: 2,
	})
	w := postTurn(t, r, tok, url.Values{"CallSid": {"CA1"}, "SpeechResult": {"blargh"}})
	body := w.Body.String()
	if !strings.Contains(body, `<Dial callerId="+15559990000"><Number>+15550001111</Number></Dial>`) {
		t.Fatalf("escalation dial missing:\n%s", body)
	}
}

func TestTurnTamperedTokenRestartsAtMenu(t *testing.T) {
	h := newTestVoiceHandler()
	r := newTestRouter(h)

	w := postTurn(t, r, "forged.token.value", url.Values{
		"CallSid":      {"CA1"},
		"SpeechResult": {"what are your opening hours"},
	})
	body := w.Body.String()
	if !strings.Contains(body, "8 AM to 9 PM") {
		t.Fatalf("expected a fresh menu turn answering hours:\n%s", body)
	}
}

func TestTurnSilenceRedirectKeepsCounting(t *testing.T) {
	h := newTestVoiceHandler()
	r := newTestRouter(h)

	// Empty input counts as a misunderstanding.
	w := postTurn(t, r, "", url.Values{"CallSid": {"CA1"}})
	tok := nextStateToken(t, w.Body.String())
	if st := h.Codec.Decode(tok); st.Misunderstandings != 1 {
		t.Fatalf("counter = %d, want 1 after a silent turn", st.Misunderstandings)
	}
}

func TestWebsocketURL(t *testing.T) {
	cases := []struct{ host, want string }{
		{"https://voice.test", "wss://voice.test/media"},
		{"https://voice.test/", "wss://voice.test/media"},
		{"http://localhost:8080", "wss://localhost:8080/media"},
		{"voice.test", "wss://voice.test/media"},
	}
	for _, tc := range cases {
		if got := WebsocketURL(tc.host); got != tc.want {
			t.Errorf("WebsocketURL(%q) = %q, want %q", tc.host, got, tc.want)
		}
	}
}
