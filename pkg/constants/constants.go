package constants

import (
	"github.com/go-playground/validator/v10"
)

type contextKey int

const (
	AppKey contextKey = iota
	PoolKey
	TxKey
	LoggerKey
	ParamsKey
	UserKey
	SessionKey
	RequestIDKey
)

// Validate is the shared validator instance used by all DTOs.
var Validate = validator.New()
