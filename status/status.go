// Package status classifies HTTP status codes into their series.
package status

import (
	"github.com/kbukum/restkit/errors"
)

// Type is the class of an HTTP status code.
type Type int

// Status classes; the value equals the leading digit of the code.
const (
	Informational Type = iota + 1
	Successful
	Redirection
	ClientError
	ServerError
)

var names = map[Type]string{
	Informational: "INFORMATIONAL",
	Successful:    "SUCCESSFUL",
	Redirection:   "REDIRECTION",
	ClientError:   "CLIENT_ERROR",
	ServerError:   "SERVER_ERROR",
}

// String returns the class name.
func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return "UNKNOWN"
}

// IsError reports whether the class denotes a failed request.
func (t Type) IsError() bool {
	return t == ClientError || t == ServerError
}

// Classify maps a status code to its class. Codes whose series is not
// 1 through 5 fail with INVALID_STATUS.
func Classify(code int) (Type, error) {
	series := Type(code / 100)
	if code < 0 || series < Informational || series > ServerError {
		return 0, errors.InvalidStatus(code)
	}
	return series, nil
}

// MustClassify is like Classify but panics on an invalid code.
func MustClassify(code int) Type {
	t, err := Classify(code)
	if err != nil {
		panic(err)
	}
	return t
}
