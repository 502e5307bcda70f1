package interfaces

import "context"

// -----------------------------------------------------------------------------
// ITextGenerator is the opaque text-generation collaborator (prompt in, text out).
// Prompt content and response formatting are the caller's concern.
// -----------------------------------------------------------------------------

type ITextGenerator interface {

	// Generate submits a prompt to the configured model and returns the
	// generated text. Calls use a much longer timeout than market-data fetches.
	Generate(ctx context.Context, prompt string) (string, error)
}
