package models

import "github.com/google/uuid"

// OrganizationType classifies the user's organization for funding-range
// lookups. Unrecognized values fall back to the small NGO range.
type OrganizationType string

const (
	OrgStudent           OrganizationType = "student"
	OrgStartupIndividual OrganizationType = "startup_individual"
	OrgSmallNGO          OrganizationType = "small_ngo"
	OrgMediumNGO         OrganizationType = "medium_ngo"
	OrgLargeNGO          OrganizationType = "large_ngo"
	OrgUniversity        OrganizationType = "university"
	OrgGovernment        OrganizationType = "government"
)

// UserProfile is the slice of a user record the matching engine reads.
type UserProfile struct {
	UserID           uuid.UUID        `json:"user_id"`
	FullName         string           `json:"full_name"`
	OrganizationName string           `json:"organization_name"`
	OrganizationType OrganizationType `json:"organization_type"`
	Country          string           `json:"country"` // "Global" matches everything
	Sector           string           `json:"sector"`
	Interests        []string         `json:"interests"`
}

// IsStudent reports whether the profile uses the student template set for
// insights and custom actions.
func (p UserProfile) IsStudent() bool {
	return p.OrganizationType == OrgStudent
}
