package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caregiver-rag/internal/models"
)

// Sampling temperatures per path: grounded answers favor faithfulness,
// fallback answers need more generative headroom.
const (
	GroundedTemperature = 0.4
	FallbackTemperature = 0.6
)

const (
	groundedSystemPrompt = "You help parents care for autistic children using curated resources. " +
		"Answer only from the curated sources you are given and cite source numbers."

	fallbackSystemPrompt = "You are a compassionate autism specialist. Even without references, give " +
		"practical guidance for the parent's question. Never say you lack enough information; offer " +
		"best-practice advice."

	// refusalMarker is the one documented refusal phrase that triggers
	// substitution on the fallback path.
	refusalMarker = "not have enough information"

	// FallbackNote replaces empty or refusing fallback completions.
	FallbackNote = "No matching guidance was found in the curated library, so this question was " +
		"answered from general knowledge instead."
)

// ContextRetriever is the slice of Retriever the composer needs.
type ContextRetriever interface {
	Retrieve(ctx context.Context, question string, topK int) ([]models.Context, error)
}

// Composer produces a user-facing answer: grounded in retrieved context when
// any exists, otherwise a clearly-labeled general-knowledge fallback. The
// caller distinguishes the two by Sources being empty on the fallback path.
type Composer struct {
	retriever ContextRetriever
	completer Completer
}

// NewComposer creates a composer.
func NewComposer(retriever ContextRetriever, completer Completer) *Composer {
	return &Composer{
		retriever: retriever,
		completer: completer,
	}
}

// Answer retrieves contexts for the question and takes the grounded path if
// at least one exists, regardless of score quality. topK <= 0 selects the
// retriever's default. Each invocation is independent; no state persists
// between queries.
func (c *Composer) Answer(ctx context.Context, question string, topK int) (*models.Answer, error) {
	question = strings.TrimSpace(question)

	contexts, err := c.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	if len(contexts) == 0 {
		return c.answerDirectly(ctx, question)
	}

	prompt := GroundedPrompt(question, contexts)
	text, err := c.completer.Complete(ctx, groundedSystemPrompt, prompt, GroundedTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletion, err)
	}

	return &models.Answer{
		Text:      strings.TrimSpace(text),
		Sources:   contexts,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// answerDirectly is the fallback path: no sources matched, so the model is
// asked for general best-practice guidance. Empty or refusing responses are
// replaced by FallbackNote, and the literal fallback prompt is appended to
// the answer for traceability.
func (c *Composer) answerDirectly(ctx context.Context, question string) (*models.Answer, error) {
	prompt := FallbackPrompt(question)

	text, err := c.completer.Complete(ctx, fallbackSystemPrompt, prompt, FallbackTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletion, err)
	}

	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(strings.ToLower(text), refusalMarker) {
		text = FallbackNote
	}
	text += "\n\nFallback prompt: " + prompt

	return &models.Answer{
		Text:      text,
		Sources:   []models.Context{},
		Fallback:  true,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// GroundedPrompt builds the grounded user prompt: an instruction to use only
// the listed sources, each context as "Source {n} ({source})" in retrieval
// order, then the question.
func GroundedPrompt(question string, contexts []models.Context) string {
	var sb strings.Builder

	sb.WriteString("Use only the source snippets below to answer the parent's question. ")
	sb.WriteString("Cite the source numbers you rely on.\n\n")

	for i, ctx := range contexts {
		fmt.Fprintf(&sb, "Source %d (%s):\n%s\n\n", i+1, ctx.Source, ctx.Text)
	}

	sb.WriteString("Parent question: " + question)
	return sb.String()
}

// FallbackPrompt builds the ungrounded user prompt used when retrieval
// returns nothing.
func FallbackPrompt(question string) string {
	return "No curated sources matched this question. Give practical, general best-practice " +
		"guidance for the parent's question below.\n\nParent question: " + question
}
