package access

import "errors"

// Policy validation errors. Any of them prevents the catalog from being built.
var (
	ErrEmptyPolicy           = errors.New("policy defines no roles")
	ErrMissingRole           = errors.New("policy does not define role")
	ErrEmptyPermissionSet    = errors.New("role has no permissions")
	ErrAmbiguousProjectScope = errors.New("role holds both all-projects and assigned-projects visibility")
)
