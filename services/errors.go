package services

import "errors"

// Errors shared across services and the HTTP mapping layer.
var (
	// Not found
	ErrMatchNotFound       = errors.New("match not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrQuestionSetNotFound = errors.New("question set not found")

	// Lifecycle / capacity
	ErrMatchNotJoinable = errors.New("match has already started")
	ErrMatchFull        = errors.New("match is full")

	// Conflicts
	ErrPlayerNameTaken = errors.New("player name already taken in this match")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidPin      = errors.New("invalid pin for this username")

	// Validation
	ErrUsernameRequired      = errors.New("username is required")
	ErrPlayerNameRequired    = errors.New("player name is required")
	ErrQuestionSetTitleEmpty = errors.New("question set title is required")
	ErrQuestionListInvalid   = errors.New("question list is empty or malformed")
	ErrUploadInvalid         = errors.New("upload must be a non-empty image")
)
