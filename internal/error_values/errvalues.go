package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")

	ErrWrongOwner    = errors.New("resource has different owner")
	ErrOwnerNotFound = errors.New("resource owner doesn't exists")

	ErrTrackerNotFound = errors.New("tracker entry doesn't exists")
	ErrHabitNotFound   = errors.New("habit doesn't exists")
	ErrGoalNotFound    = errors.New("goal doesn't exists")
	ErrItemNotFound    = errors.New("checklist item doesn't exists")
)
