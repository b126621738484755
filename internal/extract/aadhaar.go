package extract

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/imageproc"
	"github.com/joseph-ayodele/formfill/internal/ocr"
)

var (
	errNoImage      = errors.New("no image supplied")
	errNoRecognizer = errors.New("recognizer not configured")
)

var (
	reDate          = regexp.MustCompile(`(\d{2}[/\-]\d{2}[/\-]\d{4})`)
	reAadhaarNumber = regexp.MustCompile(`\b(\d{4} ?\d{4} ?\d{4})\b`)
	reNonDigit      = regexp.MustCompile(`\D`)

	reDOBLabel        = regexp.MustCompile(`(?i)(DOB|Date\s*of\s*Birth)`)
	reOtherDateMarker = regexp.MustCompile(`(?i)issued|enrol|aadhaar`)
	reMale            = regexp.MustCompile(`(?i)\bMale\b`)
	reFemale          = regexp.MustCompile(`(?i)\bFemale\b`)

	reParentWord      = regexp.MustCompile(`(?i)\b(Father|Mother)\b`)
	reTrailingPunct   = regexp.MustCompile(`[:\-.,]+ *$`)
	reCapitalizedName = regexp.MustCompile(`^[A-Z][A-Za-z\s]{4,40}$`)
	reTitleCaseName   = regexp.MustCompile(`^[A-Z][a-z]+(?:\s[A-Z][a-z]+)*$`)
	reBareName        = regexp.MustCompile(`^[A-Za-z\s]{3,40}$`)
	reRelationLabel   = regexp.MustCompile(`(?i)^(?:s\s+)?name\b\s*`)
	reKinshipSuffix   = regexp.MustCompile(`(?i)\b(Husband|Father|Wife|Son|Daughter|Mother)\b.*`)
	reSpouseSuffix    = regexp.MustCompile(`(?i)\b(Husband|Father|Wife|Mother)\b.*`)

	reNameWord    = regexp.MustCompile(`(?i)Name`)
	reNameInline  = regexp.MustCompile(`(?i)Name\s*[:\-]?\s*([A-Za-z][A-Za-z\s.]{2,40})`)
	reNameNext    = regexp.MustCompile(`^[A-Za-z][A-Za-z\s.]{2,40}$`)
	reDOBOrGender = regexp.MustCompile(`(?i)(DOB|Date\s*of\s*Birth|Male|Female)`)
)

// relationRule finds a parent or spouse name on an Aadhaar card.
type relationRule struct {
	field   string
	keyword *regexp.Regexp
	exact   *regexp.Regexp
	inline  *regexp.Regexp
	noise   *regexp.Regexp
}

var aadhaarRelations = []relationRule{
	{
		field:   constants.FieldFatherName,
		keyword: regexp.MustCompile(`(?i)(Father|Fathe|Fathar|Fathcr|Fatner|Fatler|frrot|frther|Pita|Pitah|Husband)`),
		exact:   regexp.MustCompile(`(?i)\bFather\b`),
		inline:  regexp.MustCompile(`(?i)(?:Father|Fathe|Fathar|Fathcr|Fatner|Fatler|frrot|frther|Pitah|Pita|Husband)(?:\s+s\b)?(?:\s+Name\b)?\s*[:\-]?\s*([A-Za-z\s]{2,40})`),
		noise:   regexp.MustCompile(`(?i)\b(DOB|Date|Male|Gender|BWAO|fs|Ofs|fs4|BOA|S/D|W/O|D/O|Husband|Father)\b.*`),
	},
	{
		field:   constants.FieldMotherName,
		keyword: regexp.MustCompile(`(?i)(Mother|Mothe|Mather|Mata|Mataji|Wife)`),
		exact:   regexp.MustCompile(`(?i)\bMother\b`),
		inline:  regexp.MustCompile(`(?i)(?:Mother|Mothe|Mather|Mataji|Mata|Wife)(?:\s+s\b)?(?:\s+Name\b)?\s*[:\-]?\s*([A-Za-z\s]{2,40})`),
		noise:   regexp.MustCompile(`(?i)\b(DOB|Date|Male|Gender|BWAO|fs|Ofs|fs4|BOA|S/D|W/O|D/O|Mother|Wife)\b.*`),
	},
}

// find picks the line with the exact relation word, else the first keyword
// line, and reads the value inline or from the following bare-name line.
func (rr relationRule) find(lines []string) string {
	chosen := -1
	for i, l := range lines {
		if !rr.keyword.MatchString(l) {
			continue
		}
		if rr.exact.MatchString(l) {
			chosen = i
			break
		}
		if chosen < 0 {
			chosen = i
		}
	}
	if chosen < 0 {
		return ""
	}

	var v string
	if m := rr.inline.FindStringSubmatch(lines[chosen]); m != nil {
		v = reRelationLabel.ReplaceAllString(strings.TrimSpace(m[1]), "")
	}
	if strings.TrimSpace(v) == "" && chosen+1 < len(lines) && reBareName.MatchString(lines[chosen+1]) {
		v = lines[chosen+1]
	}
	v = rr.noise.ReplaceAllString(v, "")
	return collapseSpaces(v)
}

// Aadhaar extracts the Aadhaar field set. image may be nil; when present and a
// primary OCR engine is configured, the bottom band of the card is re-read to
// recover the 12-digit number.
func (e *Extractor) Aadhaar(ctx context.Context, raw string, image []byte) *Result {
	res := NewResult(constants.Aadhaar)
	norm := Normalize(raw)
	lines := Lines(norm, true)

	for _, rr := range aadhaarRelations {
		res.Set(rr.field, rr.find(lines))
	}
	res.Set(constants.FieldDOB, aadhaarDOB(lines))
	res.Set(constants.FieldGender, aadhaarGender(norm))

	_, hasFather := res.Get(constants.FieldFatherName)
	_, hasMother := res.Get(constants.FieldMotherName)
	hasRelation := hasFather || hasMother

	if name, ok := firstMatch(ctx, e.logger, constants.FieldName,
		Tier{Name: "line_before_relation", Run: func(context.Context) Outcome { return nameBeforeRelation(lines) }},
		Tier{Name: "person_before_relation", Run: func(ctx context.Context) Outcome {
			if !hasRelation {
				return notFound()
			}
			return e.personBeforeRelation(ctx, norm)
		}},
		Tier{Name: "person_anywhere", Run: func(ctx context.Context) Outcome {
			if hasRelation {
				return notFound()
			}
			return e.firstPerson(ctx, norm)
		}},
		Tier{Name: "name_label", Run: func(context.Context) Outcome { return nameFromLabel(lines) }},
		Tier{Name: "line_before_dob", Run: func(context.Context) Outcome { return nameBeforeDOB(lines) }},
		Tier{Name: "title_case_head", Run: func(context.Context) Outcome { return titleCaseHead(lines) }},
	); ok {
		res.Set(constants.FieldName, name)
	}

	if num, ok := firstMatch(ctx, e.logger, constants.FieldAadhaar,
		Tier{Name: "bottom_band", Run: func(ctx context.Context) Outcome { return e.aadhaarFromBottomBand(ctx, image) }},
		Tier{Name: "full_text", Run: func(context.Context) Outcome { return found(findAadhaarNumber(norm)) }},
	); ok {
		res.Set(constants.FieldAadhaar, num)
	}

	e.logDone(ctx, res)
	return res
}

func aadhaarDOB(lines []string) string {
	for _, l := range lines {
		if reDOBLabel.MatchString(l) && !reOtherDateMarker.MatchString(l) {
			if m := reDate.FindStringSubmatch(l); m != nil {
				return m[1]
			}
		}
	}
	for _, l := range lines {
		if reOtherDateMarker.MatchString(l) {
			continue
		}
		if m := reDate.FindStringSubmatch(l); m != nil {
			return m[1]
		}
	}
	return ""
}

func aadhaarGender(norm string) string {
	switch {
	case reMale.MatchString(norm):
		return "Male"
	case reFemale.MatchString(norm):
		return "Female"
	}
	return ""
}

func nameBeforeRelation(lines []string) Outcome {
	for i, l := range lines {
		if i == 0 || !reParentWord.MatchString(l) {
			continue
		}
		prev := strings.TrimSpace(reTrailingPunct.ReplaceAllString(lines[i-1], ""))
		if reCapitalizedName.MatchString(prev) {
			return found(prev)
		}
	}
	return notFound()
}

func (e *Extractor) personBeforeRelation(ctx context.Context, norm string) Outcome {
	if e.persons == nil {
		return unavailable(errNoRecognizer)
	}
	lower := strings.ToLower(norm)
	cut := -1
	for _, w := range []string{"father", "husband", "mother"} {
		if idx := strings.Index(lower, w); idx >= 0 && (cut < 0 || idx < cut) {
			cut = idx
		}
	}
	prefix := norm
	if cut >= 0 {
		prefix = norm[:cut]
	}
	spans, err := e.persons.Persons(ctx, prefix)
	if err != nil {
		return unavailable(err)
	}
	if len(spans) > 0 {
		return found(stripKinship(spans[len(spans)-1]))
	}
	return e.firstPerson(ctx, norm)
}

func (e *Extractor) firstPerson(ctx context.Context, norm string) Outcome {
	if e.persons == nil {
		return unavailable(errNoRecognizer)
	}
	spans, err := e.persons.Persons(ctx, norm)
	if err != nil {
		return unavailable(err)
	}
	if len(spans) == 0 {
		return notFound()
	}
	return found(stripKinship(spans[0]))
}

// stripKinship drops a trailing relation word and everything after it,
// keeping the span unchanged when nothing would remain.
func stripKinship(span string) string {
	span = strings.TrimSpace(span)
	if v := strings.TrimSpace(reKinshipSuffix.ReplaceAllString(span, "")); v != "" {
		return v
	}
	return span
}

func nameFromLabel(lines []string) Outcome {
	for i, l := range lines {
		if !reNameWord.MatchString(l) {
			continue
		}
		l = reDevNameTag.ReplaceAllString(l, "")
		if m := reNameInline.FindStringSubmatch(l); m != nil {
			v := strings.TrimSpace(reSpouseSuffix.ReplaceAllString(strings.TrimSpace(m[1]), ""))
			if v != "" {
				return found(v)
			}
			continue
		}
		if i+1 < len(lines) && reNameNext.MatchString(lines[i+1]) {
			return found(lines[i+1])
		}
	}
	return notFound()
}

func nameBeforeDOB(lines []string) Outcome {
	for i, l := range lines {
		if i == 0 || !reDOBOrGender.MatchString(l) {
			continue
		}
		if prev := lines[i-1]; reTitleCaseName.MatchString(prev) {
			return found(prev)
		}
	}
	return notFound()
}

func titleCaseHead(lines []string) Outcome {
	for i, l := range lines {
		if i >= 5 {
			break
		}
		if reTitleCaseName.MatchString(l) {
			return found(l)
		}
	}
	return notFound()
}

func (e *Extractor) aadhaarFromBottomBand(ctx context.Context, image []byte) Outcome {
	if len(image) == 0 {
		return unavailable(errNoImage)
	}
	if e.ocr == nil {
		return unavailable(errNoRecognizer)
	}
	band, err := imageproc.Transform(image,
		imageproc.BottomBand(0.3),
		imageproc.Grayscale(),
		imageproc.Contrast(2),
		imageproc.Otsu(),
	)
	if err != nil {
		e.logger.Warn("extract.aadhaar.bottom_band.failed",
			"request_id", common.RequestIDFromContext(ctx), "stage", "preprocess", "error", err)
		return unavailable(err)
	}
	text, err := e.ocr.Recognize(ctx, ocr.Request{Image: band})
	if err != nil {
		e.logger.Warn("extract.aadhaar.bottom_band.failed",
			"request_id", common.RequestIDFromContext(ctx), "stage", "ocr", "error", err)
		return unavailable(err)
	}
	return found(findAadhaarNumber(text))
}

// findAadhaarNumber returns the first 4-4-4 digit group formatted as
// "XXXX XXXX XXXX".
func findAadhaarNumber(text string) string {
	m := reAadhaarNumber.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	digits := reNonDigit.ReplaceAllString(m[1], "")
	if len(digits) != 12 {
		return ""
	}
	return digits[:4] + " " + digits[4:8] + " " + digits[8:]
}
