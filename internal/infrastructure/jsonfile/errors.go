package jsonfile

import "errors"

var (
	// ErrBadSnapshot is returned when a snapshot file exists but its contents
	// are not a JSON object of integer quantities.
	ErrBadSnapshot = errors.New("jsonfile: snapshot must be a JSON object of integer quantities")
)
