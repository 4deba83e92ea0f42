package service

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to the transport layer. Handlers translate these
// into HTTP status codes; nothing is retried or swallowed.
var (
	// ErrValidation covers malformed or duplicate input
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateIngredient rejects a recipe whose ingredient lines repeat an id
	ErrDuplicateIngredient = fmt.Errorf("%w: duplicate ingredient in recipe", ErrValidation)
	// ErrNotFound means a referenced entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists rejects a repeated toggle-add
	ErrAlreadyExists = errors.New("already exists")
	// ErrSelfFollow rejects a user subscribing to themself
	ErrSelfFollow = fmt.Errorf("%w: users cannot follow themselves", ErrValidation)
	// ErrNotAuthor rejects mutations of a recipe by anyone but its author
	ErrNotAuthor = errors.New("only the author may modify this recipe")
	// ErrInvalidCredentials is returned for any failed login
	ErrInvalidCredentials = errors.New("invalid credentials")
)
