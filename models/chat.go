package models

// ChatRequest is the inbound question payload. The user identity comes
// from the auth token, not the body.
type ChatRequest struct {
	Question string `json:"question" binding:"required,min=5"`
}

// ChatSource identifies one retrieved chunk used to ground an answer.
type ChatSource struct {
	DocID       string  `json:"docId"`
	Chunk       string  `json:"chunk"`
	Score       float64 `json:"score"`
	TextSnippet string  `json:"textSnippet,omitempty"`
}

// ChatResponse carries the synthesized answer plus the ranked retrieval
// sources, whether or not the model cited them.
type ChatResponse struct {
	Answer  string       `json:"answer"`
	Sources []ChatSource `json:"sources"`
}

// GraphRelation is a transient entity-relationship edge fetched for
// augmentation. Never persisted here.
type GraphRelation struct {
	From     string `json:"from"`
	Relation string `json:"relation"`
	To       string `json:"to"`
}
