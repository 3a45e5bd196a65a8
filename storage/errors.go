package storage

import "errors"

var (
	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrForbidden means the requester is not entitled to mutate the document.
	ErrForbidden = errors.New("operation not allowed for this user")
	// ErrSelfFollow means a user tried to follow or unfollow themselves.
	ErrSelfFollow = errors.New("users cannot follow themselves")
	// ErrEmailExists means another account already owns the email address.
	ErrEmailExists = errors.New("email already exists")
)
