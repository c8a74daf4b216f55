// Package catalog defines the closed set of capability workflows the
// supervisor can prescribe, the documents each requires, and the partial
// order that constrains their execution. The catalog is static: it is
// validated once at startup and read without synchronization afterward.
package catalog

import (
	"fmt"
	"slices"
)

// Entry describes one capability workflow: the document types that must be
// present before it can run and the workflows whose output it consumes.
type Entry struct {
	RequiredDocuments []DocumentType
	DependsOn         []WorkflowID
}

var entries = map[WorkflowID]Entry{
	InformationRetrieval: {
		RequiredDocuments: []DocumentType{CaseHistory, IntakeForm},
	},
	Strategy: {
		RequiredDocuments: []DocumentType{IntakeForm},
		DependsOn:         []WorkflowID{InformationRetrieval},
	},
	Eligibility: {
		RequiredDocuments: []DocumentType{FinancialRecord, IntakeForm},
		DependsOn:         []WorkflowID{InformationRetrieval},
	},
	FormPreparation: {
		RequiredDocuments: []DocumentType{IdentityProof, IntakeForm},
		DependsOn:         []WorkflowID{Eligibility},
	},
}

// Lookup returns the catalog entry for id.
// Returns ErrUnknownWorkflow if id is not in the catalog.
func Lookup(id WorkflowID) (Entry, error) {
	e, ok := entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownWorkflow, id)
	}
	return e, nil
}

// RequiredDocuments returns the union of document types required by the
// given workflows, in ascending order. Unknown identifiers are skipped;
// construction-time validation guarantees none reach this point.
func RequiredDocuments(ids []WorkflowID) []DocumentType {
	seen := make(map[DocumentType]bool)
	for _, id := range ids {
		e, ok := entries[id]
		if !ok {
			continue
		}
		for _, doc := range e.RequiredDocuments {
			seen[doc] = true
		}
	}

	required := make([]DocumentType, 0, len(seen))
	for doc := range seen {
		required = append(required, doc)
	}
	slices.Sort(required)
	return required
}

// Validate checks the whole catalog for dangling references and dependency
// cycles. It runs once at startup; a failure here is a build misconfiguration
// and fatal at boot.
func Validate() error {
	for id, e := range entries {
		if !Contains(id) {
			return fmt.Errorf("%w: entry %s not in workflow list", ErrUnknownWorkflow, id)
		}
		for _, dep := range e.DependsOn {
			if _, ok := entries[dep]; !ok {
				return fmt.Errorf("%w: %s depends on %s", ErrUnknownWorkflow, id, dep)
			}
		}
	}

	if _, err := resolve(Workflows()); err != nil {
		return err
	}
	return nil
}
