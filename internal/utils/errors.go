package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidClient      = errors.New("INVALID_CLIENT")
	ErrInvalidIP          = errors.New("INVALID_IP")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
	ErrClientNotFound     = errors.New("CLIENT_NOT_FOUND")
)
