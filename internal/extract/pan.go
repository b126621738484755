package extract

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/formfill/constants"
)

var (
	rePANNumber     = regexp.MustCompile(`([A-Z]{5}[0-9]{4}[A-Z])`)
	reNameLabel     = regexp.MustCompile(`(?i)\bName\b`)
	reFatherWord    = regexp.MustCompile(`(?i)Father`)
	reLeadLowerChar = regexp.MustCompile(`^[a-z]\s+`)
	reLeadAsterisk  = regexp.MustCompile(`^\*\s+`)
	reUpperLine     = regexp.MustCompile(`^[A-Z\s]{3,}$`)
	reTrailDigits   = regexp.MustCompile(`\s+\d+\s*$`)
	reTrailLower    = regexp.MustCompile(`\s+[a-z]+\s*$`)
	reUpperWords    = regexp.MustCompile(`^[A-Z]+(\s+[A-Z]+)*$`)
)

// panNoise lists tokens that disqualify a fallback name candidate.
var panNoise = []string{"NAME", "ACCOUNT", "INCOME", "DEPARTMENT", "GOVT", "GOVERNMENT", "INDIA", "PERMANENT", "SIGNATURE"}

// panInlineStops end an inline name run.
var panInlineStops = map[string]bool{
	"NAME": true, "FATHER": true, "FATHERS": true, "DOB": true, "DATE": true,
	"BIRTH": true, "SIGNATURE": true, "GENDER": true, "PERMANENT": true,
}

// PAN extracts the PAN card field set. Gender and Aadhaar are never present
// on a PAN card and stay absent.
func (e *Extractor) PAN(ctx context.Context, raw string, _ []byte) *Result {
	res := NewResult(constants.PAN)
	lines := Lines(Normalize(raw), false)

	compact := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	if m := rePANNumber.FindStringSubmatch(compact); m != nil {
		res.Set(constants.FieldPAN, m[1])
	}
	if m := reDate.FindStringSubmatch(raw); m != nil {
		res.Set(constants.FieldDOB, m[1])
	}

	name, father := panLabelLines(lines)
	if name == "" || father == "" {
		n, f := panInline(lines)
		if name == "" {
			name = n
		}
		if father == "" {
			father = f
		}
	}
	if name == "" || father == "" {
		name, father = panFallback(lines, name, father)
	}
	e.logger.Debug("extract.pan.names", "name", name, "father", father)

	res.Set(constants.FieldName, name)
	res.Set(constants.FieldFatherName, father)
	e.logDone(ctx, res)
	return res
}

func stripLeadArtifacts(s string) string {
	s = reLeadLowerChar.ReplaceAllString(s, "")
	return reLeadAsterisk.ReplaceAllString(s, "")
}

// panLabelLines reads the two lines after a "Name" label (not a father label)
// and after a "Father" label.
func panLabelLines(lines []string) (name, father string) {
	for i, l := range lines {
		if name == "" && reNameLabel.MatchString(l) && !reFatherWord.MatchString(l) {
			for j := i + 1; j < len(lines) && j < i+3; j++ {
				c := stripLeadArtifacts(lines[j])
				if reUpperLine.MatchString(c) &&
					!strings.Contains(c, "NAME") &&
					!strings.Contains(c, "GOVT") &&
					!strings.Contains(c, "INDIA") {
					name = c
					break
				}
			}
		}
		if father == "" && reFatherWord.MatchString(l) {
			for j := i + 1; j < len(lines) && j < i+3; j++ {
				c := strings.ToUpper(stripLeadArtifacts(lines[j]))
				if reUpperLine.MatchString(c) && !strings.Contains(c, "NAME") && len(strings.Fields(c)) >= 1 {
					father = c
					break
				}
			}
		}
	}
	return name, father
}

// panInline handles cards read as a single line, e.g.
// "... Name RAHUL KUMAR Father RAJESH KUMAR DOB ...".
func panInline(lines []string) (name, father string) {
	for _, l := range lines {
		toks := strings.Fields(l)
		for i, raw := range toks {
			tok := strings.ToUpper(strings.Trim(raw, ":-"))
			switch tok {
			case "NAME":
				if name != "" || followsFather(toks, i) {
					continue
				}
				name = upperRun(toks[i+1:])
			case "FATHER", "FATHERS":
				if father != "" {
					continue
				}
				rest := toks[i+1:]
				for len(rest) > 0 {
					t := strings.ToUpper(strings.Trim(rest[0], ":-"))
					if t != "S" && t != "NAME" && t != "" {
						break
					}
					rest = rest[1:]
				}
				father = upperRun(rest)
			}
		}
	}
	return name, father
}

func followsFather(toks []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-2; j-- {
		if strings.EqualFold(strings.Trim(toks[j], ":-"), "father") {
			return true
		}
	}
	return false
}

// upperRun joins the leading all-uppercase words of toks up to a stop word.
func upperRun(toks []string) string {
	var words []string
	for _, raw := range toks {
		t := strings.Trim(raw, ":-")
		if t == "" {
			if len(words) == 0 {
				continue
			}
			break
		}
		if panInlineStops[t] || !isUpperWord(t) {
			break
		}
		words = append(words, t)
	}
	v := strings.Join(words, " ")
	if len(v) < 3 || strings.Contains(v, "GOVT") || strings.Contains(v, "INDIA") {
		return ""
	}
	return v
}

func isUpperWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsUpper(r) {
			return false
		}
	}
	return s != ""
}

// panFallback scans every line for all-caps candidates. The first becomes the
// name and the second the father's name, unless the first looks like an
// initial, in which case the two are merged into the name.
func panFallback(lines []string, name, father string) (string, string) {
	var cands []string
	for _, l := range lines {
		c := stripLeadArtifacts(l)
		c = strings.TrimSpace(reTrailDigits.ReplaceAllString(c, ""))
		c = strings.TrimSpace(reTrailLower.ReplaceAllString(c, ""))
		if len(c) < 3 || !reUpperWords.MatchString(c) || containsAny(c, panNoise) {
			continue
		}
		cands = append(cands, c)
	}

	if name == "" && len(cands) >= 1 {
		name = cands[0]
	}
	if father == "" && len(cands) >= 2 {
		father = cands[1]
	}
	if len(cands) >= 2 {
		first, second := cands[0], cands[1]
		words := strings.Fields(first)
		initial := len(words) == 1 && len(first) <= 2
		short := len(words) <= 2 && anyShort(words)
		if (initial || short) && len(strings.Fields(second)) <= 2 {
			name = first + " " + second
			father = ""
		}
	}
	return name, father
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func anyShort(words []string) bool {
	for _, w := range words {
		if len(w) <= 2 {
			return true
		}
	}
	return false
}
