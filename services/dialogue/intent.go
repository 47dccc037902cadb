package dialogue

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"cafedesk/services/intelligence"
)

// Intent is a caller request label.
type Intent string

const (
	IntentReservation Intent = "reservation"
	IntentMenu        Intent = "menu"
	IntentHours       Intent = "hours"
	IntentLocation    Intent = "location"
	IntentWifi        Intent = "wifi"
	IntentHuman       Intent = "human"
	IntentUnknown     Intent = "unknown"
)

// intentLabels is the order a model reply is scanned for a label.
var intentLabels = []Intent{
	IntentReservation, IntentMenu, IntentHours, IntentLocation, IntentWifi, IntentHuman,
}

// Classifier maps one utterance to an intent. Implementations always return
// a label; collaborator failures must never surface here.
type Classifier interface {
	Classify(ctx context.Context, utterance string) Intent
}

// intentRules are evaluated in order against the lower-cased utterance; the
// first rule with any substring hit wins, so "book a table near your
// location" still counts as a reservation.
var intentRules = []struct {
	intent   Intent
	keywords []string
}{
	{IntentReservation, []string{"book", "reservation", "table", "reserve"}},
	{IntentMenu, []string{"menu", "food", "special", "dish", "vegan", "gluten"}},
	{IntentHours, []string{"hour", "open", "close", "timing", "time do you open"}},
	{IntentLocation, []string{"location", "address", "where are you", "directions"}},
	{IntentWifi, []string{"wifi", "wi fi", "internet", "password"}},
	{IntentHuman, []string{"human", "staff", "agent", "manager", "speak to"}},
}

// RuleClassifier is the deterministic keyword classifier.
type RuleClassifier struct{}

func (RuleClassifier) Classify(_ context.Context, utterance string) Intent {
	text := strings.ToLower(utterance)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.intent
			}
		}
	}
	return IntentUnknown
}

// ModelClassifier tries the keyword rules first and only consults the
// generative model when they find nothing. Any model failure degrades to
// IntentUnknown, so classification never errors.
type ModelClassifier struct {
	Rules   RuleClassifier
	Gen     intelligence.Generator
	Timeout time.Duration
	Logger  *zap.Logger
}

func (c *ModelClassifier) Classify(ctx context.Context, utterance string) Intent {
	if intent := c.Rules.Classify(ctx, utterance); intent != IntentUnknown {
		return intent
	}
	if c.Gen == nil || strings.TrimSpace(utterance) == "" {
		return IntentUnknown
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := "Classify this café caller request into one of: reservation, menu, hours, location, wifi, human.\n" +
		"Utterance: " + utterance + "\n" +
		"Return only the label."
	out, err := c.Gen.Generate(ctx, prompt)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Warn("intent model call failed, treating as unknown", zap.Error(err))
		}
		return IntentUnknown
	}

	cand := strings.ToLower(strings.TrimSpace(out))
	for _, label := range intentLabels {
		if strings.Contains(cand, string(label)) {
			return label
		}
	}
	return IntentUnknown
}
