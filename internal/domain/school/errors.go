package school

import "errors"

var (
	ErrConfigNotFound = errors.New("school attendance config not found")
	ErrInvalidConfig  = errors.New("school attendance config is invalid")
)
