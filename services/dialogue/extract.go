package dialogue

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cafedesk/models"
	"cafedesk/services/intelligence"
)

// Extractor parses one utterance into a partial reservation. The bool result
// reports whether the record is sufficient to read back for confirmation.
type Extractor interface {
	Extract(ctx context.Context, utterance string) (models.ReservationRecord, bool)
}

var (
	partySizeRe = regexp.MustCompile(`(?i)(?:for|party of)\s*(\d+)`)
	nameRe      = regexp.MustCompile(`(?i)(?:name (?:is|under)\s*|under the name\s*)([A-Za-z ]{2,})`)
	timeRe      = regexp.MustCompile(`(?i)(\d{1,2}\s*(?:am|pm))`)
	dateRe      = regexp.MustCompile(`(?i)(today|tomorrow|on \w+\s*\d{0,2})`)
)

// RuleExtractor is the heuristic slot parser. It handles phrasings like
// "book a table for two, tomorrow at 7 pm, under the name Priya".
type RuleExtractor struct{}

func (RuleExtractor) Extract(_ context.Context, utterance string) (models.ReservationRecord, bool) {
	rec := models.ReservationRecord{Raw: utterance}

	if m := partySizeRe.FindStringSubmatch(utterance); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			rec.PartySize = n
		}
	}
	if m := nameRe.FindStringSubmatch(utterance); m != nil {
		rec.Name = strings.TrimSpace(m[1])
	}
	if m := timeRe.FindStringSubmatch(utterance); m != nil {
		rec.TimeText = m[1]
	}
	if m := dateRe.FindStringSubmatch(utterance); m != nil {
		rec.DateText = strings.TrimSpace(m[1])
	}

	return rec, rec.Sufficient()
}

// modelRecord is the JSON shape requested from the model.
type modelRecord struct {
	Name      string `json:"name"`
	PartySize int    `json:"party_size"`
	DateText  string `json:"date_text"`
	TimeText  string `json:"time_text"`
}

// ModelExtractor asks the generative model for a structured record in one
// shot and falls back to the heuristic parser on any call or parse failure,
// or when the model record is itself insufficient.
type ModelExtractor struct {
	Rules   RuleExtractor
	Gen     intelligence.Generator
	Timeout time.Duration
	Logger  *zap.Logger
}

func (e *ModelExtractor) Extract(ctx context.Context, utterance string) (models.ReservationRecord, bool) {
	if e.Gen == nil {
		return e.Rules.Extract(ctx, utterance)
	}

	timeout := e.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	mctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := "Extract a café reservation from the text.\n" +
		"Return JSON with keys: name, party_size (int), date_text, time_text.\n" +
		"Text: " + utterance
	out, err := e.Gen.Generate(mctx, prompt)
	if err != nil {
		if e.Logger != nil {
			e.Logger.Warn("extraction model call failed, using heuristics", zap.Error(err))
		}
		return e.Rules.Extract(ctx, utterance)
	}

	var mr modelRecord
	if err := json.Unmarshal([]byte(strings.Trim(out, "`\n ")), &mr); err != nil {
		if e.Logger != nil {
			e.Logger.Warn("extraction model returned unparseable record, using heuristics", zap.Error(err))
		}
		return e.Rules.Extract(ctx, utterance)
	}

	rec := models.ReservationRecord{
		PartySize: mr.PartySize,
		DateText:  strings.TrimSpace(mr.DateText),
		TimeText:  strings.TrimSpace(mr.TimeText),
		Name:      strings.TrimSpace(mr.Name),
		Raw:       utterance,
	}
	if !rec.Sufficient() {
		return e.Rules.Extract(ctx, utterance)
	}
	return rec, true
}
