package impl

import "errors"

var (
	ErrEmptyPassword   = errors.New("empty password")
	ErrMalformedHash   = errors.New("malformed password hash")
	ErrIncompatibleVer = errors.New("incompatible argon2 version")
)
