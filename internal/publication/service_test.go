// Copyright (c) 2026 Tribuna. All rights reserved.

package publication_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/internal/publication"
)

// fakeRepository is an in-memory stand-in for the PostgreSQL repository.
type fakeRepository struct {
	publications map[string]*publication.Publication
	history      map[string][]*publication.HistoryEntry
	deleted      []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		publications: map[string]*publication.Publication{},
		history:      map[string][]*publication.HistoryEntry{},
	}
}

func (f *fakeRepository) Create(_ context.Context, pub *publication.Publication) error {
	clone := *pub
	f.publications[pub.ID] = &clone
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*publication.Publication, error) {
	pub, ok := f.publications[id]
	if !ok {
		return nil, apperr.NotFoundID("Publication", id)
	}
	clone := *pub
	return &clone, nil
}

func (f *fakeRepository) List(_ context.Context, filter publication.Filter, limit, offset int) ([]*publication.Publication, int, error) {
	matches := []*publication.Publication{}
	for _, pub := range f.publications {
		if filter.Status != "" && pub.Status != filter.Status {
			continue
		}
		if filter.OwnerID != "" && pub.UserID != filter.OwnerID {
			continue
		}
		clone := *pub
		matches = append(matches, &clone)
	}
	return matches, len(matches), nil
}

func (f *fakeRepository) Update(_ context.Context, pub *publication.Publication, snapshot *publication.HistoryEntry) error {
	if _, ok := f.publications[pub.ID]; !ok {
		return apperr.NotFoundID("Publication", pub.ID)
	}
	clone := *pub
	f.publications[pub.ID] = &clone
	f.history[pub.ID] = append(f.history[pub.ID], snapshot)
	return nil
}

func (f *fakeRepository) DeleteCascade(_ context.Context, id string) error {
	if _, ok := f.publications[id]; !ok {
		return apperr.NotFoundID("Publication", id)
	}
	delete(f.publications, id)
	delete(f.history, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepository) History(_ context.Context, publicationID string) ([]*publication.HistoryEntry, error) {
	return f.history[publicationID], nil
}

var (
	owner    = &sec.AuthClaims{UserID: "owner-1", Username: "owner", Role: "user"}
	stranger = &sec.AuthClaims{UserID: "other-1", Username: "other", Role: "user"}
	admin    = &sec.AuthClaims{UserID: "admin-1", Username: "admin", Role: "admin"}
)

/*
TestService_Submit verifies creation defaults and validation rules.
*/
func TestService_Submit(t *testing.T) {
	repo := newFakeRepository()
	service := publication.NewService(repo)

	t.Run("starts_pending", func(t *testing.T) {
		pub, err := service.Submit(context.Background(), owner, publication.SubmitInput{
			Title:       "My first publication",
			Description: "Hello",
		})

		require.NoError(t, err)
		assert.Equal(t, publication.StatusPending, pub.Status)
		assert.Equal(t, owner.UserID, pub.UserID)
		assert.NotEmpty(t, pub.ID)
	})

	t.Run("title_too_short", func(t *testing.T) {
		_, err := service.Submit(context.Background(), owner, publication.SubmitInput{Title: "ab", Description: "Hello"})

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("empty_description", func(t *testing.T) {
		_, err := service.Submit(context.Background(), owner, publication.SubmitInput{Title: "Valid title"})

		require.Error(t, err)
		ae := apperr.As(err)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		require.Len(t, ae.Details, 1)
		assert.Equal(t, "description", ae.Details[0].Field)
	})

	t.Run("anonymous_rejected", func(t *testing.T) {
		_, err := service.Submit(context.Background(), nil, publication.SubmitInput{Title: "Valid title", Description: "Hello"})

		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})
}

/*
TestService_Edit verifies the owner-or-admin permission policy on edits.
*/
func TestService_Edit(t *testing.T) {
	newService := func(t *testing.T) (*publication.Service, *publication.Publication) {
		t.Helper()
		repo := newFakeRepository()
		service := publication.NewService(repo)
		pub, err := service.Submit(context.Background(), owner, publication.SubmitInput{Title: "Editable title", Description: "Hello"})
		require.NoError(t, err)
		return service, pub
	}

	t.Run("owner_may_edit", func(t *testing.T) {
		service, pub := newService(t)

		updated, err := service.Edit(context.Background(), owner, pub.ID, publication.EditInput{Title: "New title", Description: "Hello"})

		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
	})

	t.Run("admin_may_edit", func(t *testing.T) {
		service, pub := newService(t)

		_, err := service.Edit(context.Background(), admin, pub.ID, publication.EditInput{Title: "Admin edit", Description: "Hello"})

		assert.NoError(t, err)
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		service, pub := newService(t)

		_, err := service.Edit(context.Background(), stranger, pub.ID, publication.EditInput{Title: "Not yours", Description: "Hello"})

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("empty_description", func(t *testing.T) {
		service, pub := newService(t)

		_, err := service.Edit(context.Background(), owner, pub.ID, publication.EditInput{Title: "New title"})

		require.Error(t, err)
		ae := apperr.As(err)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		require.Len(t, ae.Details, 1)
		assert.Equal(t, "description", ae.Details[0].Field)
	})

	t.Run("edit_records_history", func(t *testing.T) {
		repo := newFakeRepository()
		service := publication.NewService(repo)
		pub, err := service.Submit(context.Background(), owner, publication.SubmitInput{Title: "First title", Description: "Hello"})
		require.NoError(t, err)

		_, err = service.Edit(context.Background(), owner, pub.ID, publication.EditInput{Title: "Second title", Description: "Hello"})
		require.NoError(t, err)

		entries, err := service.GetHistory(context.Background(), owner, pub.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "First title", entries[0].Title)
	})
}

/*
TestService_Approve verifies the admin-only pending→accepted transition.
*/
func TestService_Approve(t *testing.T) {
	setup := func(t *testing.T) (*publication.Service, *fakeRepository, *publication.Publication) {
		t.Helper()
		repo := newFakeRepository()
		service := publication.NewService(repo)
		pub, err := service.Submit(context.Background(), owner, publication.SubmitInput{Title: "Pending content", Description: "Hello"})
		require.NoError(t, err)
		return service, repo, pub
	}

	t.Run("admin_approves_pending", func(t *testing.T) {
		service, _, pub := setup(t)

		approved, err := service.Approve(context.Background(), admin, pub.ID)

		require.NoError(t, err)
		assert.Equal(t, publication.StatusAccepted, approved.Status)
	})

	t.Run("non_admin_forbidden", func(t *testing.T) {
		service, _, pub := setup(t)

		_, err := service.Approve(context.Background(), owner, pub.ID)

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("approve_is_idempotent", func(t *testing.T) {
		service, repo, pub := setup(t)

		_, err := service.Approve(context.Background(), admin, pub.ID)
		require.NoError(t, err)
		again, err := service.Approve(context.Background(), admin, pub.ID)

		require.NoError(t, err)
		assert.Equal(t, publication.StatusAccepted, again.Status)
		// The second call must not append another history entry.
		assert.Len(t, repo.history[pub.ID], 1)
	})

	t.Run("banned_cannot_be_approved", func(t *testing.T) {
		service, repo, pub := setup(t)
		repo.publications[pub.ID].Status = publication.StatusBanned

		_, err := service.Approve(context.Background(), admin, pub.ID)

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

/*
TestService_Get verifies that hidden content reads as NotFound for strangers.
*/
func TestService_Get(t *testing.T) {
	repo := newFakeRepository()
	service := publication.NewService(repo)
	pub, err := service.Submit(context.Background(), owner, publication.SubmitInput{Title: "Pending content", Description: "Hello"})
	require.NoError(t, err)

	t.Run("owner_sees_pending", func(t *testing.T) {
		got, err := service.Get(context.Background(), owner, pub.ID)
		require.NoError(t, err)
		assert.Equal(t, pub.ID, got.ID)
	})

	t.Run("admin_sees_pending", func(t *testing.T) {
		_, err := service.Get(context.Background(), admin, pub.ID)
		assert.NoError(t, err)
	})

	t.Run("stranger_gets_not_found", func(t *testing.T) {
		_, err := service.Get(context.Background(), stranger, pub.ID)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("everyone_sees_accepted", func(t *testing.T) {
		_, err := service.Approve(context.Background(), admin, pub.ID)
		require.NoError(t, err)

		_, err = service.Get(context.Background(), stranger, pub.ID)
		assert.NoError(t, err)
	})
}

/*
TestService_Remove verifies delete permissions and the cascade call.
*/
func TestService_Remove(t *testing.T) {
	setup := func(t *testing.T) (*publication.Service, *fakeRepository, *publication.Publication) {
		t.Helper()
		repo := newFakeRepository()
		service := publication.NewService(repo)
		pub, err := service.Submit(context.Background(), owner, publication.SubmitInput{Title: "Doomed content", Description: "Hello"})
		require.NoError(t, err)
		return service, repo, pub
	}

	t.Run("owner_may_delete", func(t *testing.T) {
		service, repo, pub := setup(t)

		err := service.Remove(context.Background(), owner, pub.ID)

		require.NoError(t, err)
		assert.Contains(t, repo.deleted, pub.ID)
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		service, repo, pub := setup(t)

		err := service.Remove(context.Background(), stranger, pub.ID)

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		assert.Empty(t, repo.deleted)
	})

	t.Run("missing_publication", func(t *testing.T) {
		service, _, _ := setup(t)

		err := service.Remove(context.Background(), admin, "nope")

		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}
