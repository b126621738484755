package constants

// Field names as they appear in a FieldResult. The strings are part of the
// external contract (template mappings refer to them verbatim).
const (
	FieldName         = "Name"
	FieldFatherName   = "Father Name"
	FieldMotherName   = "Mother Name"
	FieldDOB          = "DOB"
	FieldGender       = "Gender"
	FieldPAN          = "PAN"
	FieldAadhaar      = "Aadhaar"
	FieldEPIC         = "EPIC Number"
	FieldRelationName = "Relation Name"
	FieldRelationType = "Relation Type"
	FieldAddress      = "Address"
)

var fieldSets = map[DocumentType][]string{
	Aadhaar: {FieldName, FieldFatherName, FieldMotherName, FieldDOB, FieldGender, FieldPAN, FieldAadhaar},
	PAN:     {FieldName, FieldFatherName, FieldDOB, FieldGender, FieldPAN, FieldAadhaar},
	VoterID: {FieldName, FieldEPIC, FieldDOB, FieldGender, FieldRelationName, FieldRelationType, FieldAddress},
}

// FieldsFor returns the fixed key set for a document type, in output order.
// Unknown documents have no fields.
func FieldsFor(t DocumentType) []string {
	keys := fieldSets[t]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}
