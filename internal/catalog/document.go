package catalog

import (
	"encoding/json"
	"slices"
)

// DocumentType names a class of user-supplied document that workflows may
// require before they can run.
type DocumentType string

// Document types referenced by catalog entries.
const (
	CaseHistory     DocumentType = "case_history"
	FinancialRecord DocumentType = "financial_record"
	IdentityProof   DocumentType = "identity_proof"
	IntakeForm      DocumentType = "intake_form"
)

var documentTypes = []DocumentType{
	CaseHistory,
	FinancialRecord,
	IdentityProof,
	IntakeForm,
}

// DocumentTypes returns the known document types in ascending order.
func DocumentTypes() []DocumentType {
	return slices.Clone(documentTypes)
}

// ParseDocumentType validates a string as a known document type.
// Returns ErrUnknownDocumentType if the value is not recognized.
func ParseDocumentType(s string) (DocumentType, error) {
	v := DocumentType(s)
	if !slices.Contains(documentTypes, v) {
		return "", ErrUnknownDocumentType
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known document type.
func (d *DocumentType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseDocumentType(raw)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
