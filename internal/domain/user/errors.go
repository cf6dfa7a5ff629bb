package user

import "errors"

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username must not exceed 50 characters")
	ErrUsernameInvalid  = errors.New("username must not contain '@'")
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrEmailTooLong     = errors.New("email too long")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooLong  = errors.New("password must not exceed 72 bytes")
	ErrPasswordHash     = errors.New("failed to hash password")

	ErrWeightOutOfRange = errors.New("weight must be between 20 and 200 kg")
	ErrHeightOutOfRange = errors.New("height must be between 100 and 220 cm")
	ErrAgeOutOfRange    = errors.New("age must be between 10 and 100")
	ErrUnknownGender    = errors.New("gender must be Male or Female")
	ErrUnknownActivity  = errors.New("unknown activity level")
)
