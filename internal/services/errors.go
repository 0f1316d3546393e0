package services

import "errors"

var (
	ErrForbidden             = errors.New("actor is not permitted to perform this operation")
	ErrCannotUnassignCreator = errors.New("the creator cannot be unassigned from a task")
	ErrInvalidCredentials    = errors.New("invalid email or password")
)
