package service

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrValidation wraps caller-input failures; handlers map anything
	// matching it to a 400 with code validation_failed.
	ErrValidation = errors.New("validation failed")

	ErrAlreadyRequested  = errors.New("already_requested")
	ErrSelfRequest       = errors.New("self_request_not_allowed")
	ErrChatAlreadyExists = errors.New("chat_already_exists")
	ErrDuplicateChannel  = errors.New("duplicate_channel")
	ErrEmptyBody         = errors.New("body is required")
	ErrNotSender         = errors.New("not_sender")
)
