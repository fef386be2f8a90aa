package resource

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/core/ids"
)

// Service runs the create/read/update/delete lifecycle of one Definition.
type Service[T identity.Document] struct {
	def    Definition[T]
	logger *slog.Logger
}

func NewService[T identity.Document](def Definition[T], logger *slog.Logger) *Service[T] {
	return &Service[T]{def: def, logger: logger}
}

func (s *Service[T]) Definition() Definition[T] {
	return s.def
}

func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	records, err := s.def.Store.List(ctx, s.def.Populate...)
	if err != nil {
		return nil, s.storeError(ctx, "list", err)
	}
	for i := range records {
		records[i] = s.Send(records[i])
	}
	return records, nil
}

func (s *Service[T]) Single(ctx context.Context, id string) (T, error) {
	rec, err := s.Fetch(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Send(rec), nil
}

// Fetch loads a populated record without applying PreSend.
func (s *Service[T]) Fetch(ctx context.Context, id string) (T, error) {
	rec, err := s.def.Store.Get(ctx, id, s.def.Populate...)
	if err != nil {
		var zero T
		return zero, s.storeError(ctx, "get", err)
	}
	return rec, nil
}

// Create assigns a fresh id and href, runs PreCreate, stamps ownership and
// inserts. Any client supplied id is discarded.
func (s *Service[T]) Create(ctx context.Context, token *auth.TokenPayload, rec T) (T, error) {
	var zero T

	rec.SetID(ids.New())
	rec.SetHref(s.def.Href(rec.GetID()))

	if s.def.Hooks.PreCreate != nil {
		if err := s.def.Hooks.PreCreate(ctx, rec); err != nil {
			return zero, err
		}
	}

	s.def.Ownership.AddOwnerships(token, rec)

	if err := s.def.Store.Create(ctx, rec); err != nil {
		return zero, s.storeError(ctx, "create", err)
	}

	s.logger.InfoContext(ctx, "resource created", "resource", s.def.Name, "id", rec.GetID())
	return s.Send(rec), nil
}

// Update loads the record, checks ownership, lets apply merge the changes,
// runs PreUpdate and persists. Id, href and ownerships cannot be changed
// through apply.
func (s *Service[T]) Update(ctx context.Context, token *auth.TokenPayload, id string, apply func(T) error) (T, error) {
	var zero T

	existing, err := s.Fetch(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := s.Authorize(token, existing); err != nil {
		return zero, err
	}

	var owners identity.Ownerships
	owned, isOwned := any(existing).(identity.Owned)
	if isOwned {
		owners = append(identity.Ownerships(nil), owned.GetOwnerships()...)
	}

	if err := apply(existing); err != nil {
		return zero, err
	}

	existing.SetID(id)
	existing.SetHref(s.def.Href(id))
	if isOwned {
		owned.SetOwnerships(owners)
	}

	if s.def.Hooks.PreUpdate != nil {
		outcome, err := s.def.Hooks.PreUpdate(ctx, existing)
		if err != nil {
			return zero, err
		}
		if outcome.IsAborted() {
			s.logger.DebugContext(ctx, "update aborted", "resource", s.def.Name, "id", id, "reason", outcome.Reason())
			return zero, outcome.Reason()
		}
		existing = outcome.Record()
	}

	if err := s.def.Store.Update(ctx, existing, s.def.OmitOnUpdate...); err != nil {
		return zero, s.storeError(ctx, "update", err)
	}

	updated, err := s.Fetch(ctx, id)
	if err != nil {
		return zero, err
	}
	return s.Send(updated), nil
}

func (s *Service[T]) Delete(ctx context.Context, token *auth.TokenPayload, id string) (T, error) {
	var zero T

	existing, err := s.Fetch(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := s.Authorize(token, existing); err != nil {
		return zero, err
	}

	if err := s.def.Store.Delete(ctx, existing, s.def.DeleteAssociations...); err != nil {
		return zero, s.storeError(ctx, "delete", err)
	}

	s.logger.InfoContext(ctx, "resource deleted", "resource", s.def.Name, "id", id)
	return s.Send(existing), nil
}

// Authorize applies the ownership policy to rec.
func (s *Service[T]) Authorize(token *auth.TokenPayload, rec T) error {
	if !s.def.Ownership.ModificationAllowed(token, rec) {
		return internal.ErrOwnershipRequired
	}
	return nil
}

// Send applies the PreSend hook.
func (s *Service[T]) Send(rec T) T {
	if s.def.Hooks.PreSend == nil {
		return rec
	}
	return s.def.Hooks.PreSend(rec)
}

func (s *Service[T]) storeError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return internal.ErrNotFound
	case errors.Is(err, ErrDuplicate):
		if s.def.Duplicate != nil {
			return s.def.Duplicate.WithCause(err)
		}
		return internal.ErrDuplicateRecord.WithCause(err)
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.ErrorContext(ctx, "store operation failed", "resource", s.def.Name, "op", op, "error", err)
	return internal.NewInternalError("failed to "+op+" "+s.def.Name, err)
}
