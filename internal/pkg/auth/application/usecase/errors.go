package usecase

import "errors"

// ErrPersistence indicates an infrastructure failure inside an auth use case
var ErrPersistence = errors.New("auth use case persistence error")
