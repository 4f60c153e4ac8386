package model

import "errors"

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrISBNAlreadyExists = errors.New("ISBN already exists")
	ErrInvalidISBN       = errors.New("invalid ISBN")
	ErrAuthorNotFound    = errors.New("author not found")
)
