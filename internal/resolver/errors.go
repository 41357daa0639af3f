package resolver

import "errors"

// ErrInvalidID is returned when an id argument is not a UUID.
var ErrInvalidID = errors.New("friendId is not a valid id")

const (
	msgNotLoggedIn         = "not logged in"
	msgIncorrectCredential = "incorrect credentials"
	msgNeedLogin           = "you need to be logged in"
)

// AuthenticationError is returned when an operation needs an identity the request does
// not have, or when credentials do not check out. Credential failures share one message
// so callers cannot tell a missing email from a wrong password.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// Extensions is read by the GraphQL engine and attached to the error response.
func (e *AuthenticationError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": "UNAUTHENTICATED"}
}

func authError(msg string) *AuthenticationError {
	return &AuthenticationError{Message: msg}
}
