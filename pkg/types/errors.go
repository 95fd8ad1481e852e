// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error categories shared by every stage. Callers wrap them with
// fmt.Errorf("...: %w", Err...) and test with errors.Is.
var (
	// ErrInputValidation marks a malformed user-supplied parameter. Where a
	// safe default exists the caller substitutes it and only warns.
	ErrInputValidation = errors.New("invalid input")

	// ErrRemoteService marks a failed call to the search/fetch service.
	ErrRemoteService = errors.New("remote service error")

	// ErrRecordMalformed marks a single record that could not be assembled.
	// The batch that contained it continues.
	ErrRecordMalformed = errors.New("malformed record")

	// ErrSchema marks a missing or incompatible relation or file layout.
	ErrSchema = errors.New("schema error")

	// ErrDuplicateKey marks a primary key that appears with conflicting data.
	ErrDuplicateKey = errors.New("duplicate key")
)
