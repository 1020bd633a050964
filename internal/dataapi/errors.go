package dataapi

// Failure of the network call itself (Err set, StatusCode 0) or a non 2xx answer
type RequestError struct {
	Err        error
	Message    string
	StatusCode int
}

// Error is the cause shown to users: the server's message, or the transport failure's description
func (e *RequestError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Message == "" {
		return GenericRequestError
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
