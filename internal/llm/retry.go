package llm

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
)

// Codes the remote service uses for transient conditions. A call failing with
// one of these is retried until the attempt budget runs out.
var retryableCodes = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// Message fragments that signal a transient condition even when no status
// code could be recovered from the error.
var retryableFragments = []string{
	"overloaded",
	"timeout",
	"deadline",
	"connection",
	"rate limit",
	"busy",
}

// statusCodeOf recovers an HTTP status code from a transport error.
// The typed googleapi.Error path is authoritative; scanning the message for
// literal codes is a heuristic fallback kept separate so it can be audited
// against the real API's error contract, and it logs whenever it fires.
func statusCodeOf(err error) *int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code != 0 {
		code := gerr.Code
		return &code
	}

	msg := err.Error()
	for _, code := range []int{429, 500, 502, 503, 504} {
		if strings.Contains(msg, strconv.Itoa(code)) {
			log.Printf("[llm] status %d inferred from error text (heuristic fallback): %s", code, msg)
			c := code
			return &c
		}
	}
	return nil
}

func isRetryable(code *int, msg string) bool {
	if code != nil && retryableCodes[*code] {
		return true
	}
	lower := strings.ToLower(msg)
	for _, frag := range retryableFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
