package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"safebill-backend/internal/config"
	"safebill-backend/models"
)

type fakeCompleter struct {
	answer string
	err    error
	prompt string
}

func (fc *fakeCompleter) Completion(_ context.Context, prompt string) (string, error) {
	fc.prompt = prompt
	return fc.answer, fc.err
}

func newTestChatService(t *testing.T, completer Completer) *ChatService {
	t.Helper()
	graph, err := NewGraphService(&config.Config{GraphEdgeLimit: 10})
	if err != nil {
		t.Fatalf("graph service: %v", err)
	}
	embeddings := NewEmbeddingService(&fakeEmbedder{}, &fakeVectorIndex{}, 3)
	return NewChatService(embeddings, graph, completer)
}

func TestBuildPromptSectionOrder(t *testing.T) {
	sources := []models.ChatSource{
		{DocID: "doc1", Chunk: "doc1_chunk_0", Score: 0.91, TextSnippet: "warranty valid 12 months"},
	}
	relations := []models.GraphRelation{
		{From: "laptop", Relation: "SOLD_BY", To: "Sony"},
	}

	prompt := buildPrompt("is my laptop covered?", sources, relations)

	instructionIdx := strings.Index(prompt, "Use ONLY the provided context")
	contextIdx := strings.Index(prompt, "docId=doc1 chunk=doc1_chunk_0")
	graphIdx := strings.Index(prompt, "laptop -[SOLD_BY]-> Sony")
	questionIdx := strings.Index(prompt, "User question: is my laptop covered?")

	for name, idx := range map[string]int{
		"instructions": instructionIdx,
		"context":      contextIdx,
		"graph":        graphIdx,
		"question":     questionIdx,
	} {
		if idx < 0 {
			t.Fatalf("prompt is missing the %s section:\n%s", name, prompt)
		}
	}

	if !(instructionIdx < contextIdx && contextIdx < graphIdx && graphIdx < questionIdx) {
		t.Errorf("prompt sections out of order:\n%s", prompt)
	}
}

func TestAnswerQuestionReturnsSources(t *testing.T) {
	completer := &fakeCompleter{answer: "Your laptop is covered until 2025."}
	cs := newTestChatService(t, completer)
	ctx := context.Background()

	cs.embeddings.UpsertChunks(ctx, "doc1", "user-1", []models.Chunk{
		{ID: "doc1_chunk_0", Text: "laptop warranty valid", Index: 0},
	})

	resp, err := cs.AnswerQuestion(ctx, "user-1", "is my laptop under warranty?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if resp.Answer != completer.answer {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Chunk != "doc1_chunk_0" {
		t.Errorf("sources = %+v, want the retrieved chunk", resp.Sources)
	}
	if !strings.Contains(completer.prompt, "laptop warranty valid") {
		t.Errorf("retrieved snippet missing from prompt")
	}
}

func TestAnswerQuestionFallbacks(t *testing.T) {
	// Empty completion text substitutes the fixed fallback sentence.
	cs := newTestChatService(t, &fakeCompleter{answer: ""})
	resp, err := cs.AnswerQuestion(context.Background(), "user-1", "is my fridge covered?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if resp.Answer != fallbackAnswer {
		t.Errorf("answer = %q, want %q", resp.Answer, fallbackAnswer)
	}

	// Completion errors are absorbed the same way.
	cs = newTestChatService(t, &fakeCompleter{err: fmt.Errorf("model unavailable")})
	resp, err = cs.AnswerQuestion(context.Background(), "user-1", "is my fridge covered?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if resp.Answer != fallbackAnswer {
		t.Errorf("answer = %q, want %q", resp.Answer, fallbackAnswer)
	}
}

func TestAnswerQuestionUnconfiguredBackends(t *testing.T) {
	// No vector index, no graph backend: sources are empty, answering
	// still works on empty context.
	graph, err := NewGraphService(&config.Config{GraphEdgeLimit: 10})
	if err != nil {
		t.Fatalf("graph service: %v", err)
	}
	embeddings := NewEmbeddingService(&fakeEmbedder{}, nil, 3)
	cs := NewChatService(embeddings, graph, &fakeCompleter{answer: "I don't know"})

	resp, err := cs.AnswerQuestion(context.Background(), "user-1", "what warranties do I have?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("expected no sources, got %+v", resp.Sources)
	}
	if resp.Answer == "" {
		t.Errorf("expected a non-empty answer string")
	}
}
