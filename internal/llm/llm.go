// Package llm abstracts the external text-generation provider. Cross-cutting
// concerns (retries, logging, hooks) are layered as middleware so concrete
// clients stay focused on the API call itself.
package llm

import (
	"context"
	"encoding/json"
)

// Client is the single seam to the external provider. Generate returns the
// provider's raw response; callers locate the text payload themselves because
// providers disagree on response shape.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string) (json.RawMessage, error)
	Close() error
}
