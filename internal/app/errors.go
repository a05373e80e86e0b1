package service

import (
	"errors"
)

// Sentinel kinds for service errors.
var (
	ErrNoGraphClient = errors.New("no graph client configured")
)
