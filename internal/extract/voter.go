package extract

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/imageproc"
	"github.com/joseph-ayodele/formfill/internal/ocr"
)

// accurateMinChars is the length the accurate re-read must exceed to replace
// the supplied text.
const accurateMinChars = 50

var epicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b([A-Z]{3}\d{7})\b`),
	regexp.MustCompile(`\b([A-Z]{2}\d{8})\b`),
	regexp.MustCompile(`([A-Z]{2,3}\s?\d{7,8})`),
}

var (
	reVoterNameLabel  = regexp.MustCompile(`(?i)^\s*(Name|Mame|Nama)\s*$`)
	reVoterNameInline = regexp.MustCompile(`(?i)\bName\s*[:\-]`)
	reVoterNameValue  = regexp.MustCompile(`(?i)Name\s*[:\-]?\s*([A-Za-z][A-Za-z\s]{2,50})`)
	reParentAny       = regexp.MustCompile(`(?i)(Father|Mother)`)

	reAfterColon   = regexp.MustCompile(`:\s*([A-Za-z\s]{2,40})`)
	reRelationLine = regexp.MustCompile(`^[A-Za-z\s]{2,40}$`)

	reAddressValue = regexp.MustCompile(`(?i)(?:address|पता)\s*[:\-]?\s*(.*)`)
	reAgeWord      = regexp.MustCompile(`(?i)\bage\b`)

	reVoterGender = regexp.MustCompile(`(?i)\b(Male|Female|M|F)\b`)
)

var voterDOBPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:DOB|Date\s*of\s*Birth)[:\s]*(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`),
	regexp.MustCompile(`\b(\d{1,2}[-/.]\d{1,2}[-/.]\d{4})\b`),
}

var (
	nameLabelSkip  = []string{"election", "commission", "india", "voter", "epic", "father", "mother", "card", "photo", "identity"}
	nameInlineSkip = []string{"election", "commission", "india", "voter", "epic", "card", "photo", "identity", "elector", "father", "mother"}
)

type relationLabel struct {
	pattern *regexp.Regexp
	kind    string
}

var voterRelations = []relationLabel{
	{regexp.MustCompile(`(?i)Father['’s\s]*Name`), "Father"},
	{regexp.MustCompile(`(?i)Mother['’s\s]*Name`), "Mother"},
	{regexp.MustCompile(`(?i)Relation['’s\s]*Name`), "Relation"},
}

var titleCaser = cases.Title(language.Und)

// Voter extracts the Voter ID field set from raw OCR text. When image bytes
// and an accurate engine are available the image is re-read and the longer
// text replaces raw.
func (e *Extractor) Voter(ctx context.Context, raw string, image []byte) *Result {
	res := NewResult(constants.VoterID)
	text := e.voterText(ctx, raw, image)
	if strings.TrimSpace(text) == "" {
		e.logger.Warn("extract.voter.empty", "request_id", common.RequestIDFromContext(ctx))
		return res
	}
	lines := rawLines(text)

	res.Set(constants.FieldEPIC, findEPIC(text))
	res.Set(constants.FieldName, voterName(lines))
	if name, kind := voterRelation(lines); name != "" {
		res.Set(constants.FieldRelationName, name)
		res.Set(constants.FieldRelationType, kind)
	}
	res.Set(constants.FieldDOB, voterDOB(text))
	res.Set(constants.FieldGender, voterGender(text))
	res.Set(constants.FieldAddress, voterAddress(lines))

	e.logDone(ctx, res)
	return res
}

func (e *Extractor) voterText(ctx context.Context, raw string, image []byte) string {
	if len(image) == 0 || e.accurate == nil {
		return raw
	}
	scaled, err := imageproc.Transform(image, imageproc.Upscale(1.5))
	if err != nil {
		e.logger.Warn("extract.voter.accurate.failed",
			"request_id", common.RequestIDFromContext(ctx), "stage", "upscale", "error", err)
		return raw
	}
	text, err := e.accurate.Recognize(ctx, ocr.Request{Image: scaled, Languages: e.accLangs})
	if err != nil {
		e.logger.Warn("extract.voter.accurate.failed",
			"request_id", common.RequestIDFromContext(ctx), "stage", "ocr", "error", err)
		return raw
	}
	if len(strings.TrimSpace(text)) > accurateMinChars {
		e.logger.Debug("extract.voter.accurate.used", "chars", len(text))
		return text
	}
	return raw
}

// findEPIC searches the upper-cased text with spaces removed; newlines stay
// as token boundaries. Only 10 or 11 character matches are accepted.
func findEPIC(text string) string {
	compact := strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(text, " ", ""), "\n", " "))
	for _, re := range epicPatterns {
		m := re.FindStringSubmatch(compact)
		if m == nil {
			continue
		}
		epic := strings.ReplaceAll(m[1], " ", "")
		if n := len(epic); n == 10 || n == 11 {
			return epic
		}
	}
	return ""
}

func voterName(lines []string) string {
	for i, l := range lines {
		if reVoterNameLabel.MatchString(l) && i+1 < len(lines) {
			next := lines[i+1]
			if !containsAny(strings.ToLower(next), nameLabelSkip) && utf8.RuneCountInString(next) > 2 {
				return titleCaser.String(next)
			}
		}
		if reVoterNameInline.MatchString(l) && !reParentAny.MatchString(l) {
			if m := reVoterNameValue.FindStringSubmatch(l); m != nil {
				name := strings.TrimSpace(reAnyWhiteRun.ReplaceAllString(strings.TrimSpace(m[1]), " "))
				if !containsAny(strings.ToLower(name), nameInlineSkip) {
					return titleCaser.String(name)
				}
			}
		}
	}
	return ""
}

// voterRelation tries the father, mother and generic relation labels in that
// order; the first label that yields a value wins.
func voterRelation(lines []string) (string, string) {
	for _, rl := range voterRelations {
		for i, l := range lines {
			if !rl.pattern.MatchString(l) {
				continue
			}
			var v string
			if m := reAfterColon.FindStringSubmatch(l); m != nil {
				v = strings.TrimSpace(m[1])
				for j := 1; j <= 2 && i+j < len(lines); j++ {
					next := lines[i+j]
					if !reRelationLine.MatchString(next) {
						break
					}
					v += " " + next
				}
			} else if i+1 < len(lines) && reRelationLine.MatchString(lines[i+1]) {
				v = lines[i+1]
			}
			if utf8.RuneCountInString(v) > 2 {
				return titleCaser.String(v), rl.kind
			}
		}
	}
	return "", ""
}

func voterDOB(text string) string {
	for _, re := range voterDOBPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func voterGender(text string) string {
	m := reVoterGender.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	switch strings.ToUpper(m[1]) {
	case "MALE", "M":
		return "Male"
	case "FEMALE", "F":
		return "Female"
	}
	return ""
}

// voterAddress starts capturing at an address, c/o or s/o line and keeps up
// to three fragments, stopping at EPIC, election or age lines.
func voterAddress(lines []string) string {
	var parts []string
	capturing := false
	for _, l := range lines {
		lower := strings.ToLower(l)
		if strings.Contains(lower, "address") || strings.Contains(lower, "c/o") || strings.Contains(lower, "s/o") {
			capturing = true
			if m := reAddressValue.FindStringSubmatch(l); m != nil && utf8.RuneCountInString(strings.TrimSpace(m[1])) > 3 {
				parts = append(parts, strings.TrimSpace(m[1]))
			}
			continue
		}
		if !capturing {
			continue
		}
		if strings.Contains(lower, "epic") || strings.Contains(lower, "election") || reAgeWord.MatchString(l) {
			break
		}
		if utf8.RuneCountInString(l) > 3 {
			parts = append(parts, l)
			if len(parts) >= 3 {
				break
			}
		}
	}
	return strings.Join(parts, ", ")
}
