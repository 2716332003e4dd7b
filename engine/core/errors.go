package core

import (
	"errors"
)

var (
	ErrBufferTooLarge    = errors.New("uniform buffer exceeds device limit")
	ErrInvalidBufferSize = errors.New("uniform buffer size must be a multiple of 16")
	ErrSlotOutOfRange    = errors.New("bind slot out of range")
	ErrNoDevice          = errors.New("no suitable GPU device")
	ErrUnknown           = errors.New("unknown")
)
