package repo

import "errors"

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrChangeNotFound    = errors.New("change log entry not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)
