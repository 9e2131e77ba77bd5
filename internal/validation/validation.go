package validation

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest is the root of every input error; handlers map it to 400.
var ErrInvalidRequest = errors.New("invalid request")

// City errors, one per failing tag on the city field.
var (
	ErrLocationEmpty        = fmt.Errorf("%w: city is required", ErrInvalidRequest)
	ErrLocationTooLong      = fmt.Errorf("%w: city exceeds %d characters", ErrInvalidRequest, maxLocationLen)
	ErrLocationInvalidChars = fmt.Errorf("%w: city contains invalid characters", ErrInvalidRequest)
)

// maxLocationLen is counted in runes, as the validator's max tag does for strings.
const maxLocationLen = 100

// locationErrors maps the failing tag on a city field to its sentinel.
var locationErrors = map[string]error{
	"required": ErrLocationEmpty,
	"max":      ErrLocationTooLong,
	"location": ErrLocationInvalidChars,
}

// validLocation backs the "location" tag. The geocoder and OpenWeather do their own case folding.
func validLocation(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !isAllowedLocationRune(r) {
			return false
		}
	}
	return true
}

// isAllowedLocationRune covers names like "St. John's" and "Winston-Salem, NC".
func isAllowedLocationRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'':
		return true
	}
	return false
}
