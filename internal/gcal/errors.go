package gcal

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var (
	// ErrEventNotFound means the event no longer exists upstream.
	ErrEventNotFound = errors.New("google calendar event not found")

	// ErrTokenExpired means the delegated credential was rejected and the
	// user has to re-authorize.
	ErrTokenExpired = errors.New("google credential expired or revoked")

	// ErrCalendarForbidden means the credential lacks calendar access.
	ErrCalendarForbidden = errors.New("google calendar access not granted")
)

// IsEventNotFound returns true when a Google Calendar event no longer exists.
func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// mapError translates upstream failures into the sentinel taxonomy; anything
// unrecognized is wrapped with the operation name.
func mapError(err error, op string) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		return ErrTokenExpired
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusUnauthorized:
			return ErrTokenExpired
		case http.StatusForbidden:
			return ErrCalendarForbidden
		case http.StatusNotFound, http.StatusGone:
			return ErrEventNotFound
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
