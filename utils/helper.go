package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil
}

// FormatWhatsAppNumber normalizes a local or international number into the
// digits-only E.164 form that wa.me links expect (e.g. 0812... -> 62812...).
func FormatWhatsAppNumber(phoneNumber, countryCode string) (string, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return "", errors.New("phone number is empty")
	}
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	e164 := libphonenumber.Format(p, libphonenumber.E164)
	return strings.TrimPrefix(e164, "+"), nil
}

// WhatsAppLink builds a click-to-chat link. An invalid number yields "".
func WhatsAppLink(phoneNumber, countryCode, message string) string {
	digits, err := FormatWhatsAppNumber(phoneNumber, countryCode)
	if err != nil {
		return ""
	}
	link := "https://wa.me/" + digits
	if strings.TrimSpace(message) != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["request"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func DereferencePtr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// TruncateRunes cuts s to at most max characters without splitting a multi-byte rune.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ParseDate accepts a plain YYYY-MM-DD date or an RFC3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
