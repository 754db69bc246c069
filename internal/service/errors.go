package service

import (
	"errors"

	"currency-exchange-service/internal/domain/model"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrExternalAPIFailure = errors.New("external API failure")
	ErrMalformedRate      = errors.New("malformed rate data")
)

const (
	msgInvalidBaseCurrency = "Invalid base currency"
	msgInvalidCurrency     = "Invalid currency"
	msgInvalidAmount       = "Amount must be greater than zero"
	msgConversionData      = "Error retrieving conversion data"
	msgInvalidTarget       = "Invalid target currency: "
)

// ArgumentError is a caller mistake. Message is safe to show to clients.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func invalidArgument(message string) error {
	return &ArgumentError{Message: message}
}

func invalidTarget(code model.Currency) error {
	return invalidArgument(msgInvalidTarget + code.String())
}
