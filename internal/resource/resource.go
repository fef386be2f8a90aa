// Package resource is the generic CRUD pipeline every identity record goes
// through. A resource type is described by a Definition value (store,
// population, ownership policy and hooks); Service runs the lifecycle and
// Handler exposes it over HTTP.
package resource

import (
	"context"
	"errors"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
)

// APIPrefix is the mount point of the versioned API; hrefs are built on it.
const APIPrefix = "/api/v1"

var (
	// ErrNotFound is returned by stores when no record has the given id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by stores when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the document store behind one resource type.
type Store[T identity.Document] interface {
	List(ctx context.Context, populate ...string) ([]T, error)
	Get(ctx context.Context, id string, populate ...string) (T, error)
	Create(ctx context.Context, rec T) error
	Update(ctx context.Context, rec T, omit ...string) error
	Delete(ctx context.Context, rec T, associations ...string) error
}

// Hooks are the per-resource extension points. Any of them may be nil.
type Hooks[T identity.Document] struct {
	// PreCreate runs after id and href are assigned and before the insert.
	PreCreate func(ctx context.Context, rec T) error
	// PreUpdate runs on the merged record. Returning Aborted stops the
	// update without persisting; the reason becomes the response.
	PreUpdate func(ctx context.Context, rec T) (Outcome[T], error)
	// PreSend runs on every record before it is serialized.
	PreSend func(rec T) T
}

type Definition[T identity.Document] struct {
	// Name is used in logs, Path is the route below APIPrefix ("/users").
	Name string
	Path string
	New  func() T

	Store    Store[T]
	Populate []string

	Ownership OwnershipPolicy

	// OmitOnUpdate lists columns the generic update path never writes.
	OmitOnUpdate []string
	// DeleteAssociations lists join associations removed with the record.
	DeleteAssociations []string
	// Duplicate is reported when the store rejects a write on a unique index.
	Duplicate *internal.AppError

	Hooks Hooks[T]
}

func (d Definition[T]) Href(id string) string {
	return APIPrefix + d.Path + "/" + id
}

// Outcome is the result of a PreUpdate hook: either continue with a record
// or stop with a reason.
type Outcome[T any] struct {
	record  T
	reason  error
	aborted bool
}

func Continue[T any](rec T) Outcome[T] {
	return Outcome[T]{record: rec}
}

func Aborted[T any](reason error) Outcome[T] {
	return Outcome[T]{reason: reason, aborted: true}
}

func (o Outcome[T]) IsAborted() bool { return o.aborted }
func (o Outcome[T]) Record() T       { return o.record }
func (o Outcome[T]) Reason() error   { return o.reason }

// DeleteResponse is the body returned by a successful delete.
type DeleteResponse[T any] struct {
	ItemRemoved   T      `json:"ItemRemoved"`
	ItemRemovedID string `json:"ItemRemovedId"`
}
