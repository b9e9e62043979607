package service

import "errors"

// Sentinel errors for callers of the service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("question queue is full")
	ErrEmptyText    = errors.New("question text must not be empty")
)
