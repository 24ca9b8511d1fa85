package clients

import "fmt"

// UnexpectedResponseError marks a 2xx upstream response whose body doesn't
// match the API contract (missing fields, empty result sets).
type UnexpectedResponseError struct {
	API    string
	Reason string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("%s returned an unexpected response: %s", e.API, e.Reason)
}
