package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UserID identifies the owner of projects. It is opaque to this service;
// whatever issues API tokens decides its format.
type UserID string

// Validate checks if the UserID is valid
func (u UserID) Validate() error {
	if u == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}

// ProjectID is a UUID-based identifier for Project
type ProjectID string

// NewProjectID generates a new UUID v4 ProjectID
func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

// Validate checks if the ProjectID is a well-formed UUID
func (p ProjectID) Validate() error {
	if p == "" {
		return goerr.New("project ID cannot be empty")
	}
	if _, err := uuid.Parse(string(p)); err != nil {
		return goerr.Wrap(err, "project ID must be a UUID", goerr.V("id", p))
	}
	return nil
}

// String returns the string representation of ProjectID
func (p ProjectID) String() string {
	return string(p)
}

// MemoryID is a UUID-based identifier for Memory
type MemoryID string

// NewMemoryID generates a new UUID v4 MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// Validate checks if the MemoryID is a well-formed UUID
func (m MemoryID) Validate() error {
	if m == "" {
		return goerr.New("memory ID cannot be empty")
	}
	if _, err := uuid.Parse(string(m)); err != nil {
		return goerr.Wrap(err, "memory ID must be a UUID", goerr.V("id", m))
	}
	return nil
}

// String returns the string representation of MemoryID
func (m MemoryID) String() string {
	return string(m)
}

// ReportID is a UUID-based identifier for Report
type ReportID string

// NewReportID generates a new UUID v4 ReportID
func NewReportID() ReportID {
	return ReportID(uuid.New().String())
}

// String returns the string representation of ReportID
func (r ReportID) String() string {
	return string(r)
}
