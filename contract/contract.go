//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"
	"wisp/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker for logging.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Document is a schemaless record of the directory/realtime store.
type Document struct {
	ID         string
	Fields     map[string]any
	CreateTime time.Time
	UpdateTime time.Time
}

// Snapshot is the full, ordered state of a collection at one point in time.
// A non-nil Err means the subscription failed and no further snapshot will follow.
type Snapshot struct {
	Documents []Document
	Err       error
}

// Subscription delivers live snapshots until Close is called or its context ends.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Close()
}

// DocumentStore is the directory/realtime store.
// Collections are slash separated paths, documents inside them are ordered by creation time.
type DocumentStore interface {
	Upsert(ctx context.Context, collection, id string, fields map[string]any) error
	Append(ctx context.Context, collection string, fields map[string]any) (Document, error)
	Subscribe(ctx context.Context, collection string) (Subscription, error)
	List(ctx context.Context, collection string) ([]Document, error)
}

type ResponseShape string

const (
	ShapeText   ResponseShape = "text"
	ShapeArray  ResponseShape = "array"
	ShapeObject ResponseShape = "object"
)

type GenerateRequest struct {
	Prompt string
	Shape  ResponseShape
}

// Generator performs exactly one call to a generative endpoint.
// Non-success statuses are returned as *errors.TransportError,
// undecodable envelopes as errors.ErrMalformedResponse.
type Generator interface {
	Generate(ctx context.Context, request GenerateRequest) (string, error)
}

type Assistant interface {
	Enabled() bool
	SuggestReplies(ctx context.Context, incoming string) domain.SuggestionSet
	RewriteDraft(ctx context.Context, draft string, tone domain.Tone) string
	RewriteDraftMultiTone(ctx context.Context, draft string, tones []domain.Tone) domain.ComposeRewrite
}

type SupportSender interface {
	Send(ctx context.Context, ticket domain.SupportTicket) error
}
