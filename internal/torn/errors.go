package torn

import "fmt"

// Torn API error codes the engine reacts to. Code 5 is throttling and is
// retried once inside the client; the key codes force credential removal.
const (
	codeTooManyRequests = 5

	codeIncorrectKey   = 2
	codeKeyOwnerInJail = 10
	codeKeyInactive    = 13
	codeKeyPaused      = 18
)

// ApiError is a structured error payload from the Torn API.
type ApiError struct {
	Code    int
	Message string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("torn api error %d: %s", e.Code, e.Message)
}

// Throttled reports whether the request hit the API rate limit.
func (e *ApiError) Throttled() bool {
	return e.Code == codeTooManyRequests
}

// InvalidKey reports whether the stored credential is no longer usable and
// should be discarded by the caller.
func (e *ApiError) InvalidKey() bool {
	switch e.Code {
	case codeIncorrectKey, codeKeyOwnerInJail, codeKeyInactive, codeKeyPaused:
		return true
	}
	return false
}
