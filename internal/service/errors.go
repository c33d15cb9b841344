package service

import "errors"

var (
	// ErrNoCandidates is returned by Select when neither the catalog nor any
	// configured provider yields a usable meal for the requested slot. The
	// plan generator recovers from it by recording a gap.
	ErrNoCandidates = errors.New("no candidate meals available for this slot")

	// ErrInvalidCredentials is returned on failed login attempts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists is returned when registering an already-registered email.
	ErrUserExists = errors.New("user already exists")
)
