// Package classify assigns a document type to raw OCR text.
package classify

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/formfill/constants"
)

// rule is one entry of the priority table. match receives the raw text and
// its lower-cased form.
type rule struct {
	name  string
	doc   constants.DocumentType
	match func(raw, lower string) bool
}

var (
	panKeywords = []*regexp.Regexp{
		regexp.MustCompile(`(?i)income\s*tax\s*department`),
		regexp.MustCompile(`(?i)permanent\s*account\s*number`),
	}
	panNumber = regexp.MustCompile(`[A-Z]{5}[0-9]{4}[A-Z]`)

	voterKeywords = []string{"election commission", "voter id", "epic", "nirvachan ayog", "निर्वाचन आयोग"}

	aadhaarKeywords = []*regexp.Regexp{
		regexp.MustCompile(`\buidai\b`),
		regexp.MustCompile(`\baad+haar\b`),
		regexp.MustCompile(`\bad+har\b`),
		regexp.MustCompile(`\bunique\s+identification\s+authority\b`),
		regexp.MustCompile(`\bgovernment\s+of\s+india\b`),
		regexp.MustCompile(`\bgovt\.?\s*of\s*india\b`),
		regexp.MustCompile(`आधार`),
		regexp.MustCompile(`\bmother\b`),
		regexp.MustCompile(`\bfather\b`),
	}
	aadhaarNumber = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`)
)

// rules are evaluated in order; the first match wins. PAN comes first because
// PAN cards print a father's name, which would otherwise look like Aadhaar.
var rules = []rule{
	{name: "pan_keyword", doc: constants.PAN, match: func(raw, _ string) bool {
		return anyMatch(panKeywords, raw)
	}},
	{name: "pan_number", doc: constants.PAN, match: func(raw, _ string) bool {
		return panNumber.MatchString(strings.ToUpper(strings.ReplaceAll(raw, " ", "")))
	}},
	{name: "voter_keyword", doc: constants.VoterID, match: func(_, lower string) bool {
		for _, kw := range voterKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	}},
	{name: "aadhaar_keyword", doc: constants.Aadhaar, match: func(_, lower string) bool {
		return anyMatch(aadhaarKeywords, lower)
	}},
	{name: "aadhaar_number", doc: constants.Aadhaar, match: func(_, lower string) bool {
		return aadhaarNumber.MatchString(lower)
	}},
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Classifier is stateless; the zero value logs to slog.Default().
type Classifier struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Classifier {
	return &Classifier{logger: logger}
}

func (c *Classifier) log() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Classify returns the document type of raw. It never fails: empty or
// unrecognized text is UNKNOWN.
func (c *Classifier) Classify(raw string) constants.DocumentType {
	if strings.TrimSpace(raw) == "" {
		c.log().Warn("classify.empty", "reason", "empty ocr text")
		return constants.Unknown
	}
	lower := strings.ToLower(raw)
	for _, r := range rules {
		if r.match(raw, lower) {
			c.log().Info("classify.ok", "card_type", r.doc.String(), "rule", r.name)
			return r.doc
		}
	}
	c.log().Warn("classify.unknown", "reason", "no rule matched", "chars", len(raw))
	return constants.Unknown
}

// Classify classifies raw with the default logger.
func Classify(raw string) constants.DocumentType {
	return (*Classifier)(nil).Classify(raw)
}
