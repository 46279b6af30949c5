package kpimaster

import "errors"

var (
	// ErrNotFound is returned when a definition or template does not
	// exist within the requested scope.
	ErrNotFound = errors.New("kpi not found")

	// ErrDuplicateID is returned when adding a definition whose id is
	// already taken within the scope.
	ErrDuplicateID = errors.New("kpi id already exists")

	// ErrHasChildren is returned when deleting a definition that still
	// has child nodes.
	ErrHasChildren = errors.New("kpi has child nodes")

	// ErrNoParent is returned when adding a definition whose parent is
	// not part of the scope.
	ErrNoParent = errors.New("parent kpi not found")
)
