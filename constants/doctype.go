package constants

import (
	"strings"
)

// DocumentType tags the kind of identity document a block of OCR text came from.
type DocumentType string

const (
	Aadhaar DocumentType = "AADHAAR"
	PAN     DocumentType = "PAN"
	VoterID DocumentType = "VOTER_ID"
	Unknown DocumentType = "UNKNOWN"
)

var allDocumentTypes = []DocumentType{
	Aadhaar,
	PAN,
	VoterID,
	Unknown,
}

func (t DocumentType) String() string { return string(t) }

// Supported reports whether an extractor exists for the type.
func (t DocumentType) Supported() bool {
	return t == Aadhaar || t == PAN || t == VoterID
}

func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

// ParseDocumentType accepts canonical names and the loose spellings people type
// on the command line ("aadhar", "voter", "epic").
func ParseDocumentType(input string) (DocumentType, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]DocumentType{
		"aadhar":   Aadhaar,
		"adhaar":   Aadhaar,
		"uid":      Aadhaar,
		"pan card": PAN,
		"voter":    VoterID,
		"voterid":  VoterID,
		"voter id": VoterID,
		"epic":     VoterID,
	}

	if t, ok := synonyms[normalized]; ok {
		return t, true
	}

	for _, t := range allDocumentTypes {
		if normalized == strings.ToLower(string(t)) {
			return t, true
		}
	}

	return Unknown, false
}
