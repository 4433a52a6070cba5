// Package client defines the transport interface for vision-model backed
// focal point suggestion.
package client

import "context"

// FocusClient sends a prompt and a base64-encoded image to a vision model
// and returns the raw text response. Parsing is left to the caller.
type FocusClient interface {
	Query(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
