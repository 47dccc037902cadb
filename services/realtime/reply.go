package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cafedesk/services/dialogue"
	"cafedesk/services/intelligence"
)

const maxReplyLen = 200

// Replier generates one spoken reply per finalized transcript. When a
// generative model is configured it frames the café profile and the running
// message count into the prompt; on any model failure it degrades to the
// same deterministic keyword answers the webhook menu gives.
type Replier struct {
	Profile dialogue.Profile
	Gen     intelligence.Generator
	Timeout time.Duration
	Logger  *zap.Logger
}

func (r *Replier) Reply(ctx context.Context, transcript string, messageCount int) string {
	if r.Gen != nil {
		if reply, ok := r.modelReply(ctx, transcript, messageCount); ok {
			return reply
		}
	}
	return r.ruleReply(transcript)
}

func (r *Replier) modelReply(ctx context.Context, transcript string, messageCount int) (string, bool) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	staffLine := ""
	if r.Profile.HasStaffLine() {
		staffLine = fmt.Sprintf("- Staff contact: %s\n", r.Profile.StaffNumber)
	}
	prompt := fmt.Sprintf(`You are a polite and helpful receptionist for %s.

Context:
- Operating hours: %s
- Menu available at: %s
%s
This is message #%d in the conversation.

Customer said: %q

Provide a brief, natural, and helpful response (1-2 sentences max). Be conversational and friendly.
If the customer is just greeting back or saying hello, acknowledge it briefly and ask how you can help them.

Response:`, r.Profile.CafeName, r.Profile.Hours, r.Profile.MenuLink, staffLine, messageCount, transcript)

	out, err := r.Gen.Generate(ctx, prompt)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Warn("reply model call failed, using rule replies", zap.Error(err))
		}
		return "", false
	}

	reply := strings.TrimSpace(out)
	if reply == "" {
		return "", false
	}
	if len(reply) > maxReplyLen {
		reply = reply[:maxReplyLen-3] + "..."
	}
	return reply, true
}

func (r *Replier) ruleReply(transcript string) string {
	text := strings.ToLower(transcript)
	switch {
	case containsAny(text, "hello", "hi", "hey"):
		return "Nice to hear from you! What can I help you with today?"
	case containsAny(text, "hour", "open"):
		return fmt.Sprintf("We are open %s.", r.Profile.Hours)
	case strings.Contains(text, "menu"):
		return fmt.Sprintf("You can view our menu at %s.", r.Profile.MenuLink)
	case containsAny(text, "reserve", "book", "table"):
		return "Sure! How many people and what time would you like?"
	case containsAny(text, "location", "address"):
		return fmt.Sprintf("We are located at %s. Would you like directions?", r.Profile.Address)
	default:
		return "I didn't quite catch that. Could you please repeat?"
	}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
