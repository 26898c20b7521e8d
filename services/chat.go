package services

import (
	"context"
	"fmt"
	"strings"

	"safebill-backend/internal/logger"
	"safebill-backend/models"
)

// Completer produces a completion for a single prompt.
type Completer interface {
	Completion(ctx context.Context, prompt string) (string, error)
}

// fallbackAnswer is returned verbatim when the model yields no text.
const fallbackAnswer = "I could not generate an answer."

// chatTopK is how many chunks ground each answer.
const chatTopK = 5

// ChatService answers questions about a user's warranties from retrieved
// chunks plus graph context. Retrieval degradation still produces an
// answer, just a less grounded one.
type ChatService struct {
	embeddings *EmbeddingService
	graph      *GraphService
	completer  Completer
}

func NewChatService(embeddings *EmbeddingService, graph *GraphService, completer Completer) *ChatService {
	return &ChatService{
		embeddings: embeddings,
		graph:      graph,
		completer:  completer,
	}
}

// AnswerQuestion runs retrieval, graph augmentation and synthesis. The
// returned sources are the ranked retrieval results, whether or not the
// model cited them; they are never fabricated from unretrieved chunks.
func (cs *ChatService) AnswerQuestion(ctx context.Context, userID, question string) (*models.ChatResponse, error) {
	sources := cs.embeddings.SimilaritySearch(ctx, userID, question, chatTopK)

	entities := ExtractEntities(question)
	relations := cs.graph.FetchRelated(ctx, entities)

	prompt := buildPrompt(question, sources, relations)

	answer, err := cs.completer.Completion(ctx, prompt)
	if err != nil {
		logger.Warn("Completion failed; using fallback answer", "error", err)
		answer = ""
	}
	if answer == "" {
		answer = fallbackAnswer
	}

	return &models.ChatResponse{
		Answer:  answer,
		Sources: sources,
	}, nil
}

// buildPrompt assembles the grounded prompt. Section order is fixed:
// instructions, chunk contexts, graph relations, then the user question.
func buildPrompt(question string, sources []models.ChatSource, relations []models.GraphRelation) string {
	lines := []string{
		"You are SafeBill Assistant. Use ONLY the provided context.",
		`If you cannot answer, say "I don't know" and request more info.`,
		"Provide short actionable steps and cite docId + chunk IDs.",
		"",
		"Context:",
	}

	for _, source := range sources {
		lines = append(lines, fmt.Sprintf("docId=%s chunk=%s score=%.4f\n%s",
			source.DocID, source.Chunk, source.Score, source.TextSnippet))
	}

	lines = append(lines, "", "Graph context:")
	for _, relation := range relations {
		lines = append(lines, fmt.Sprintf("%s -[%s]-> %s", relation.From, relation.Relation, relation.To))
	}

	lines = append(lines, "", fmt.Sprintf("User question: %s", question))
	return strings.Join(lines, "\n")
}
