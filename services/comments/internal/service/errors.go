package service

import "errors"

var (
	// Not-found class: a referenced entity does not exist.
	ErrPostNotFound    = errors.New("post not found")
	ErrAuthorNotFound  = errors.New("author not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrParentNotFound  = errors.New("parent comment not found")

	// Invalid-request class: the request contradicts the data model.
	ErrParentPostMismatch = errors.New("parent comment belongs to a different post")
	ErrMaxDepthExceeded   = errors.New("maximum nesting depth reached")

	// Forbidden class: ownership or time-window violation.
	ErrNotCommentAuthor  = errors.New("not the comment author")
	ErrEditWindowExpired = errors.New("edit window has expired")
	ErrAlreadyDeleted    = errors.New("comment is deleted")
)

// IsNotFound checks if an error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrAuthorNotFound) ||
		errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrParentNotFound)
}

// IsInvalidRequest checks if an error is a validation error.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrParentPostMismatch) ||
		errors.Is(err, ErrMaxDepthExceeded)
}

// IsForbidden checks if an error is an ownership or edit-window violation.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotCommentAuthor) ||
		errors.Is(err, ErrEditWindowExpired) ||
		errors.Is(err, ErrAlreadyDeleted)
}
