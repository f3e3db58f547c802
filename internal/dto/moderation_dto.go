package dto

type CreateReportRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description" validate:"max=2000"`
}

// ResolveReportRequest flips the admin resolution flag. Resolving a report
// never changes the reported property.
type ResolveReportRequest struct {
	IsResolved bool   `json:"is_resolved"`
	AdminNote  string `json:"admin_note" validate:"max=1000"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=5000"`
}
