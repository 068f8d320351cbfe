// Copyright (c) 2026 Tribuna. All rights reserved.

package comment_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribuna-io/tribuna/internal/comment"
	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/pkg/pagination"
)

// fakeRepository mimics the PostgreSQL repository's transactional contract:
// CreateForPublication validates the parent status atomically, DeleteCascade
// removes reports alongside the comment.
type fakeRepository struct {
	parentStatus map[string]string // publication ID -> status
	comments     map[string]*comment.Comment
	reports      map[string][]string // comment ID -> report IDs
	deleted      []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		parentStatus: map[string]string{},
		comments:     map[string]*comment.Comment{},
		reports:      map[string][]string{},
	}
}

func (f *fakeRepository) CreateForPublication(_ context.Context, cmt *comment.Comment) error {
	status, ok := f.parentStatus[cmt.PublicationID]
	if !ok {
		return apperr.NotFoundID("Publication", cmt.PublicationID)
	}
	if status != "accepted" {
		return apperr.Conflict("Publication is not open for comments")
	}
	clone := *cmt
	f.comments[cmt.ID] = &clone
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*comment.Comment, error) {
	cmt, ok := f.comments[id]
	if !ok {
		return nil, apperr.NotFoundID("Comment", id)
	}
	clone := *cmt
	return &clone, nil
}

func (f *fakeRepository) ListForPublication(_ context.Context, publicationID string, limit, offset int) ([]*comment.Comment, int, error) {
	matches := []*comment.Comment{}
	for _, cmt := range f.comments {
		if cmt.PublicationID == publicationID {
			clone := *cmt
			matches = append(matches, &clone)
		}
	}
	return matches, len(matches), nil
}

func (f *fakeRepository) Update(_ context.Context, cmt *comment.Comment) error {
	if _, ok := f.comments[cmt.ID]; !ok {
		return apperr.NotFoundID("Comment", cmt.ID)
	}
	clone := *cmt
	f.comments[cmt.ID] = &clone
	return nil
}

func (f *fakeRepository) DeleteCascade(_ context.Context, id string) error {
	if _, ok := f.comments[id]; !ok {
		return apperr.NotFoundID("Comment", id)
	}
	delete(f.comments, id)
	delete(f.reports, id)
	f.deleted = append(f.deleted, id)
	return nil
}

var (
	author   = &sec.AuthClaims{UserID: "author-1", Username: "author", Role: "user"}
	stranger = &sec.AuthClaims{UserID: "other-1", Username: "other", Role: "user"}
	admin    = &sec.AuthClaims{UserID: "admin-1", Username: "admin", Role: "admin"}
)

/*
TestService_Create verifies that comments attach only to accepted publications.
*/
func TestService_Create(t *testing.T) {
	setup := func(t *testing.T) (*comment.Service, *fakeRepository) {
		t.Helper()
		repo := newFakeRepository()
		repo.parentStatus["pub-accepted"] = "accepted"
		repo.parentStatus["pub-pending"] = "pending"
		repo.parentStatus["pub-banned"] = "banned"
		return comment.NewService(repo), repo
	}

	t.Run("attaches_to_accepted_publication", func(t *testing.T) {
		service, _ := setup(t)

		cmt, err := service.Create(context.Background(), author, "pub-accepted", "Nice work")

		require.NoError(t, err)
		assert.Equal(t, comment.StatusOpen, cmt.Status)
		assert.Equal(t, author.UserID, cmt.UserID)
		assert.Equal(t, "pub-accepted", cmt.PublicationID)
	})

	t.Run("pending_publication_conflict", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.Create(context.Background(), author, "pub-pending", "Too early")

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("banned_publication_conflict", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.Create(context.Background(), author, "pub-banned", "Too late")

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("missing_publication", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.Create(context.Background(), author, "pub-gone", "Hello?")

		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("empty_content_rejected", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.Create(context.Background(), author, "pub-accepted", "")

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("content_too_long", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.Create(context.Background(), author, "pub-accepted", strings.Repeat("x", comment.ContentMaxLen+1))

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("anonymous_rejected", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.Create(context.Background(), nil, "pub-accepted", "Hi")

		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})
}

/*
TestService_Edit verifies the ownership policy and the banned-comment freeze.
*/
func TestService_Edit(t *testing.T) {
	setup := func(t *testing.T) (*comment.Service, *fakeRepository, *comment.Comment) {
		t.Helper()
		repo := newFakeRepository()
		repo.parentStatus["pub-1"] = "accepted"
		service := comment.NewService(repo)
		cmt, err := service.Create(context.Background(), author, "pub-1", "Original content")
		require.NoError(t, err)
		return service, repo, cmt
	}

	t.Run("author_may_edit", func(t *testing.T) {
		service, _, cmt := setup(t)

		updated, err := service.Edit(context.Background(), author, cmt.ID, "Revised content")

		require.NoError(t, err)
		assert.Equal(t, "Revised content", updated.Content)
	})

	t.Run("admin_may_edit", func(t *testing.T) {
		service, _, cmt := setup(t)

		_, err := service.Edit(context.Background(), admin, cmt.ID, "Moderated content")

		assert.NoError(t, err)
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		service, _, cmt := setup(t)

		_, err := service.Edit(context.Background(), stranger, cmt.ID, "Hijacked")

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("banned_comment_is_frozen", func(t *testing.T) {
		service, repo, cmt := setup(t)
		repo.comments[cmt.ID].Status = comment.StatusBanned

		_, err := service.Edit(context.Background(), author, cmt.ID, "Please let me")

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

/*
TestService_Remove verifies delete permissions and the report cascade.
*/
func TestService_Remove(t *testing.T) {
	setup := func(t *testing.T) (*comment.Service, *fakeRepository, *comment.Comment) {
		t.Helper()
		repo := newFakeRepository()
		repo.parentStatus["pub-1"] = "accepted"
		service := comment.NewService(repo)
		cmt, err := service.Create(context.Background(), author, "pub-1", "Doomed content")
		require.NoError(t, err)
		repo.reports[cmt.ID] = []string{"report-1", "report-2"}
		return service, repo, cmt
	}

	t.Run("author_may_delete", func(t *testing.T) {
		service, repo, cmt := setup(t)

		err := service.Remove(context.Background(), author, cmt.ID)

		require.NoError(t, err)
		assert.Contains(t, repo.deleted, cmt.ID)
		// The reports filed against it go with it.
		assert.Empty(t, repo.reports[cmt.ID])
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		service, repo, cmt := setup(t)

		err := service.Remove(context.Background(), stranger, cmt.ID)

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		assert.Empty(t, repo.deleted)
	})
}

/*
TestService_ListForPublication verifies the paginated listing path.
*/
func TestService_ListForPublication(t *testing.T) {
	repo := newFakeRepository()
	repo.parentStatus["pub-1"] = "accepted"
	service := comment.NewService(repo)

	for range [3]struct{}{} {
		_, err := service.Create(context.Background(), author, "pub-1", "A comment")
		require.NoError(t, err)
	}

	comments, meta, err := service.ListForPublication(context.Background(), stranger, "pub-1", pagination.Params{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, comments, 3)
	assert.Equal(t, 3, meta.Total)
}
