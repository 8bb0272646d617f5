package interfaces

import "context"

// AnswerService generates an answer to a question from attributed context
// blocks produced by the query pipeline. Implementations call a language
// model; their internals are outside the retrieval engine.
type AnswerService interface {
	// Generate produces an answer grounded on the given context blocks.
	// Each block carries its own source attribution.
	Generate(ctx context.Context, question string, contextBlocks []string) (string, error)
}
