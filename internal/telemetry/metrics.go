package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter    metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	DocumentsParsed   metric.Int64Counter
	ChunksEmbedded    metric.Int64Counter
	QuestionsAnswered metric.Int64Counter
	RemindersDue      metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("safebill-backend")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	documentsParsed, err := meter.Int64Counter(
		"documents.parsed.total",
		metric.WithDescription("Documents run through extraction"),
	)
	if err != nil {
		return nil, err
	}

	chunksEmbedded, err := meter.Int64Counter(
		"chunks.embedded.total",
		metric.WithDescription("Chunks embedded into the vector index"),
	)
	if err != nil {
		return nil, err
	}

	questionsAnswered, err := meter.Int64Counter(
		"chat.questions.total",
		metric.WithDescription("Chat questions answered"),
	)
	if err != nil {
		return nil, err
	}

	remindersDue, err := meter.Int64Counter(
		"reminders.due.total",
		metric.WithDescription("Reminders picked up by the due scan"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:    requestCounter,
		RequestDuration:   requestDuration,
		DocumentsParsed:   documentsParsed,
		ChunksEmbedded:    chunksEmbedded,
		QuestionsAnswered: questionsAnswered,
		RemindersDue:      remindersDue,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordDocumentParsed records an extraction outcome
func (m *Metrics) RecordDocumentParsed(status string) {
	m.DocumentsParsed.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("doc.status", status)))
}

// RecordChunksEmbedded records an ingestion batch
func (m *Metrics) RecordChunksEmbedded(count int64) {
	m.ChunksEmbedded.Add(context.Background(), count)
}

// RecordQuestionAnswered records a chat turn and whether retrieval found context
func (m *Metrics) RecordQuestionAnswered(hadSources bool) {
	m.QuestionsAnswered.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Bool("chat.had_sources", hadSources)))
}

// RecordRemindersDue records a due-scan batch size
func (m *Metrics) RecordRemindersDue(count int64) {
	m.RemindersDue.Add(context.Background(), count)
}
