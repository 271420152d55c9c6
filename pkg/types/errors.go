package types

import "errors"

var (
	// ErrConfiguration indicates a missing or invalid deployment descriptor section
	ErrConfiguration = errors.New("configuration error")

	// ErrNotFound indicates that a cluster, breed, route or platform resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrTimeout indicates that a polling deadline passed before its condition held
	ErrTimeout = errors.New("timed out")

	// ErrAmbiguousRoute indicates that more than one gateway route matched
	ErrAmbiguousRoute = errors.New("ambiguous route")
)
