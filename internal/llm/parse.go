package llm

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/util"
)

// parseInto validates raw model output against the expected shape. A decode
// failure means the transport call itself succeeded, so the status code is
// pinned to 200 to keep it distinguishable from FailureUnavailable, and it is
// never retried: malformed structured output from a successful call is not
// transient.
func parseInto(raw string, out any, op string) Outcome {
	cleaned := util.StripCodeFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		log.Printf("[llm] structured parse failed for %s: %v", op, err)
		code := http.StatusOK
		return failure(FailureParse,
			fmt.Sprintf("failed to parse structured output from %s", op),
			&code, err.Error())
	}
	return Outcome{Success: true, Text: raw}
}
