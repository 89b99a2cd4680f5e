package cache

import "errors"

var (
	ErrKeyNotFound = errors.New("cache: key not found")
	ErrKeyExpired  = errors.New("cache: key expired")
)
