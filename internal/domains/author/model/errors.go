package model

import "errors"

var (
	ErrAuthorNotFound = errors.New("author not found")
	ErrAuthorInUse    = errors.New("author has books and cannot be deleted")
)
