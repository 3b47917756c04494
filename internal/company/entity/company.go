package entity

import "time"

// Step is the position of an incorporation file in the workflow.
type Step string

const (
	StepInformations Step = "informations"
	StepDocuments    Step = "documents"
	StepReview       Step = "review"
	StepSignature    Step = "signature"
	StepRegistered   Step = "registered"
)

func (s Step) Valid() bool {
	switch s {
	case StepInformations, StepDocuments, StepReview, StepSignature, StepRegistered:
		return true
	}
	return false
}

// CompanyTypes lists the legal forms offered for incorporation.
var CompanyTypes = []string{"SAS", "SASU", "SARL", "EURL", "SCI", "EI"}

// CompanyCreationData holds one client's incorporation file, keyed by user id.
type CompanyCreationData struct {
	UserID      string    `db:"user_id" json:"user_id"`
	CompanyType string    `db:"company_type" json:"company_type"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Step        Step      `db:"step" json:"step"`
	ReviewNote  string    `db:"review_note" json:"review_note,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
