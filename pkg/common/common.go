package common

import "errors"

var (
	ErrCardNotFound      = errors.New("card not found")
	ErrCardAlreadyExists = errors.New("card already registered with given mobile number")
	ErrInvalidMobile     = errors.New("mobile number must be 10 digits")
)
