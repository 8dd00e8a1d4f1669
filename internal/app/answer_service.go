package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"talentsearch/internal/ai"
	"talentsearch/internal/model"
)

var (
	ErrGeneratorDisabled = errors.New("no llm provider configured")
	ErrGeneration        = errors.New("llm provider failed")
)

const answerSystemPrompt = "You are a recruitment research assistant. " +
	"Answer the user's question based only on the provided context. " +
	"If the context does not contain enough information, say so. Do not make up facts."

const noContextAnswer = "I could not find any relevant context for that question."

// AnswerService layers grounded answer generation on top of the retrieval
// core. It is optional: with no LLM provider configured the service runs
// retrieval-only and Answer returns ErrGeneratorDisabled.
type AnswerService struct {
	retrieval *RetrievalService
	generator ai.Generator
}

type AnswerResult struct {
	Answer  string        `json:"answer"`
	Sources []model.Match `json:"sources"`
}

func NewAnswerService(retrieval *RetrievalService, generator ai.Generator) *AnswerService {
	return &AnswerService{retrieval: retrieval, generator: generator}
}

// Answer retrieves above-floor chunks for the question and asks the LLM for
// an answer grounded in them. No relevant chunks is not an error; the
// result says so explicitly without calling the LLM.
func (s *AnswerService) Answer(ctx context.Context, question string, k int) (*AnswerResult, error) {
	if s.generator == nil {
		return nil, ErrGeneratorDisabled
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	matches, err := s.retrieval.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &AnswerResult{Answer: noContextAnswer, Sources: []model.Match{}}, nil
	}

	var sb strings.Builder
	sb.WriteString("Context:\n")
	for _, m := range matches {
		sb.WriteString("---\n")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("---\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")

	answer, err := s.generator.Generate(ctx, answerSystemPrompt, sb.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return &AnswerResult{
		Answer:  strings.TrimSpace(answer),
		Sources: matches,
	}, nil
}
