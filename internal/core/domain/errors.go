package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPollNotFound       = errors.New("poll not found")
	ErrInvalidPollID      = errors.New("invalid poll id")
	ErrResponseNotFound   = errors.New("response not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrCreatorMayNotVote  = errors.New("poll creator may not respond to their own poll")
	ErrAlreadyResponded   = errors.New("identity has already responded to this poll")
	ErrLoginRequired      = errors.New("login required to respond to this poll")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrInternal           = errors.New("internal server error")
)

// ValidationError carries the distinct user-visible reasons a publish or a
// submission was rejected. Nothing is written when one is returned.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 1 {
		return e.Reasons[0]
	}
	return fmt.Sprintf("%d validation errors: %v", len(e.Reasons), e.Reasons)
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	ok := errors.As(err, &v)
	return v, ok
}
