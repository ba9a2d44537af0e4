package modelio

import (
	"errors"
	"testing"
)

func TestErrorFromStatusCode(t *testing.T) {
	cases := []struct {
		status    int
		retryable bool
		check     func(error) bool
	}{
		{400, false, func(e error) bool { _, ok := e.(*InvalidRequestError); return ok }},
		{401, false, func(e error) bool { _, ok := e.(*AuthenticationError); return ok }},
		{403, false, func(e error) bool { _, ok := e.(*AuthenticationError); return ok }},
		{408, true, func(e error) bool { _, ok := e.(*RequestTimeoutError); return ok }},
		{413, false, func(e error) bool { _, ok := e.(*ContextLengthError); return ok }},
		{422, false, func(e error) bool { _, ok := e.(*InvalidRequestError); return ok }},
		{429, true, func(e error) bool { _, ok := e.(*RateLimitError); return ok }},
		{500, true, func(e error) bool { _, ok := e.(*ServerError); return ok }},
		{503, true, func(e error) bool { _, ok := e.(*ServerError); return ok }},
	}
	for _, tc := range cases {
		err := ErrorFromStatusCode(tc.status, "boom", "anthropic", nil)
		if !tc.check(err) {
			t.Errorf("status %d mapped to %T", tc.status, err)
		}
		if got := IsRetryable(err); got != tc.retryable {
			t.Errorf("status %d: IsRetryable = %v, want %v", tc.status, got, tc.retryable)
		}
	}
}

func TestIsRetryableDefaults(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil error reported retryable")
	}
	if IsRetryable(errors.New("something else")) {
		t.Error("unknown error must default to non-retryable")
	}
	if IsRetryable(&ConfigurationError{ClientError{Message: "no key"}}) {
		t.Error("configuration error reported retryable")
	}
	if IsRetryable(&AbortError{ClientError{Message: "cancelled"}}) {
		t.Error("abort reported retryable")
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &ClientError{Message: "wrapper", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("Unwrap does not expose the cause")
	}
	if err.Error() != "wrapper: root cause" {
		t.Errorf("Error = %q", err.Error())
	}
}
