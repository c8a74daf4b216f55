package catalog

import (
	"encoding/json"
	"slices"
)

// WorkflowID names a capability workflow known to the catalog. The set of
// valid values is closed; anything else fails Parse and UnmarshalJSON.
type WorkflowID string

// Capability workflows the supervisor can prescribe.
const (
	InformationRetrieval WorkflowID = "information_retrieval"
	Strategy             WorkflowID = "strategy"
	Eligibility          WorkflowID = "eligibility"
	FormPreparation      WorkflowID = "form_preparation"
)

var workflows = []WorkflowID{
	Eligibility,
	FormPreparation,
	InformationRetrieval,
	Strategy,
}

// Workflows returns the catalog's workflow identifiers in ascending order.
func Workflows() []WorkflowID {
	return slices.Clone(workflows)
}

// Contains reports whether id names a catalog workflow.
func Contains(id WorkflowID) bool {
	return slices.Contains(workflows, id)
}

// ParseWorkflow validates a string as a known workflow identifier.
// Returns ErrUnknownWorkflow if the value is not recognized.
func ParseWorkflow(s string) (WorkflowID, error) {
	v := WorkflowID(s)
	if !Contains(v) {
		return "", ErrUnknownWorkflow
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known workflow identifier.
func (id *WorkflowID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseWorkflow(raw)
	if err != nil {
		return err
	}
	*id = v
	return nil
}
