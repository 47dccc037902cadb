package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cafedesk/models"
	"cafedesk/services/dialogue"
	"cafedesk/services/reservation"
	"cafedesk/services/telephony"
)

// VoiceHandler serves the webhook-mode call flow: /voice answers a new call
// and /voice/turn advances the dialogue one turn. All per-call state rides
// in the continuation token baked into the action URLs, so any instance can
// serve any turn.
type VoiceHandler struct {
	Machine  *dialogue.Machine
	Codec    *dialogue.StateCodec
	Booking  *reservation.Service
	Logger   *zap.Logger
	CallerID string

	// RealtimeWSURL, when set, switches /voice to answer with a media
	// stream connect instead of the gather menu.
	RealtimeWSURL string
}

// VoiceEntry answers a new call with the main menu, or hands the call to
// the realtime media stream when that mode is enabled.
func (h *VoiceHandler) VoiceEntry(c *gin.Context) {
	if h.RealtimeWSURL != "" {
		respondTwiML(c, telephony.RenderStreamConnect(h.RealtimeWSURL))
		return
	}

	// A silence redirect carries the counter back here so re-prompt loops
	// still count toward escalation.
	state := h.Codec.Decode(c.Query("state"))
	d := h.Machine.PromptMainMenu(state)
	respondTwiML(c, telephony.RenderDirective(d, h.turnURL(d.Next)))
}

// Turn advances the dialogue by one webhook turn.
func (h *VoiceHandler) Turn(c *gin.Context) {
	state := h.Codec.Decode(c.Query("state"))

	in := models.TurnInput{
		CallID: c.PostForm("CallSid"),
		Text:   c.PostForm("SpeechResult"),
	}
	if digits := c.PostForm("Digits"); digits != "" {
		in.Channel = models.ChannelKeypad
		in.Digit = digits[:1]
	} else if in.Text != "" {
		in.Channel = models.ChannelSpeech
	}

	d := h.Machine.Advance(c.Request.Context(), state, in)

	switch d.Next.Dialogue {
	case models.StateTerminated:
		if d.Next.Reservation.Sufficient() {
			if _, err := h.Booking.Commit(c.Request.Context(), d.Next.Reservation, in.CallID); err != nil {
				h.Logger.Error("failed to commit confirmed reservation", zap.Error(err))
			}
		}
	case models.StateEscalated:
		h.Booking.NotifyEscalation(c.Request.Context(), in.CallID)
	}

	if d.Action == models.ActionTransfer {
		respondTwiML(c, telephony.RenderTransfer(d.Say, d.TransferTo, h.CallerID))
		return
	}
	respondTwiML(c, telephony.RenderDirective(d, h.turnURL(d.Next)))
}

func (h *VoiceHandler) turnURL(state models.CallState) string {
	u := "/voice/turn"
	if token := h.Codec.Encode(state); token != "" {
		u += "?state=" + url.QueryEscape(token)
	}
	return u
}

func respondTwiML(c *gin.Context, twiml string) {
	c.Header("Content-Type", "text/xml")
	c.String(http.StatusOK, twiml)
}

// WebsocketURL derives the wss:// media endpoint from the public host.
func WebsocketURL(publicHost string) string {
	host := strings.TrimRight(publicHost, "/")
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return "wss://" + host + "/media"
}
