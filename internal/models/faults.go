// Package models defines the data types and fault taxonomy shared by the
// storage engine and the HTTP boundary.
package models

import (
	"errors"
	"fmt"
)

// FaultCode identifies one of the closed set of API fault conditions. The
// code strings are part of the wire contract and must match the real
// service byte for byte.
type FaultCode string

const (
	// FaultInvalidParameterValue is raised for a malformed domain name or
	// other parameter value.
	FaultInvalidParameterValue FaultCode = "InvalidParameterValue"
	// FaultMissingParameter is raised by the boundary when a required
	// request parameter is absent.
	FaultMissingParameter FaultCode = "MissingParameter"
	// FaultNumberDomainsExceeded is raised when the directory is at its
	// domain cap on create.
	FaultNumberDomainsExceeded FaultCode = "NumberDomainsExceeded"
)

// Fault is an API-visible error carrying a stable code string and a
// human-readable message. Faults cross the boundary layer unchanged; any
// other error is treated as internal.
type Fault struct {
	Code    FaultCode
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// InvalidParameterValue reports a malformed value for the named parameter.
// The message mirrors the real service's wording.
func InvalidParameterValue(param, value string) *Fault {
	return &Fault{
		Code:    FaultInvalidParameterValue,
		Message: fmt.Sprintf("Value (%s) for parameter %s is invalid.", value, param),
	}
}

// MissingParameter reports an absent required parameter.
func MissingParameter(param string) *Fault {
	return &Fault{
		Code:    FaultMissingParameter,
		Message: fmt.Sprintf("The request must contain the parameter %s.", param),
	}
}

// NumberDomainsExceeded reports that the domain directory is at capacity.
func NumberDomainsExceeded() *Fault {
	return &Fault{
		Code:    FaultNumberDomainsExceeded,
		Message: "Number of domains limit exceeded.",
	}
}

// AsFault returns the Fault in err's chain, or nil if err is not a fault.
func AsFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return nil
}
