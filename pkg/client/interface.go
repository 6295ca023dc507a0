package client

import "context"

// VisionClient is the transport to a vision-capable model server. It sends a
// prompt plus one base64-encoded image and returns the raw text response;
// interpreting that response is the caller's concern.
type VisionClient interface {
	Query(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
