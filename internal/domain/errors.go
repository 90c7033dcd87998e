package domain

import "errors"

// Sentinel errors returned by services. Handlers translate them to HTTP
// statuses; anything unrecognized becomes a 500 with a generic message.
var (
	// ErrEmailTaken signals a sign-up against an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password,
	// deliberately indistinguishable to resist account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrConversationNotOwned covers both "does not exist" and "owned by
	// someone else" so that probing cannot reveal which.
	ErrConversationNotOwned = errors.New("conversation not found")

	// ErrInvalidID marks identifiers that are not valid ObjectID hex.
	ErrInvalidID = errors.New("invalid id")
)
