package model

import "time"

// ApprovalStatus is the registry approval state of a model package.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// Valid reports whether s is one of the known approval states.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// ModelPackageGroup is a named collection of versioned model packages.
// Group names are unique; creating an existing group is not an error.
type ModelPackageGroup struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ProjectName string    `json:"project_name"`
	ProjectID   string    `json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ModelPackage is a single versioned model artifact in a group.
// Versions are assigned monotonically per group, starting at 1.
type ModelPackage struct {
	ID             string         `json:"id"`
	GroupName      string         `json:"group_name"`
	Version        int            `json:"version"`
	ArtifactPath   string         `json:"artifact_path"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
