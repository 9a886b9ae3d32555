package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrProvider     = errors.New("provider rejected request")
	ErrTransient    = errors.New("transient failure")
	ErrCache        = errors.New("cache failure")
	ErrFanOut       = errors.New("content fan-out failed")
	ErrSignature    = errors.New("invalid callback signature")
	ErrQueueFull    = errors.New("dispatch queue is full")
)
