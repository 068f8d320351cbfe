// Copyright (c) 2026 Tribuna. All rights reserved.

package moderation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribuna-io/tribuna/internal/moderation"
	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/pkg/pagination"
)

// fakeRepository mirrors the transactional contract of the PostgreSQL
// repository: File rejects duplicates and banned targets, Accept recounts and
// bans via [moderation.ShouldBan].
type fakeRepository struct {
	targetStatus map[string]string // target ID -> status
	reports      map[string]*moderation.Report
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		targetStatus: map[string]string{},
		reports:      map[string]*moderation.Report{},
	}
}

func (f *fakeRepository) File(_ context.Context, report *moderation.Report) error {
	status, ok := f.targetStatus[report.Target.ID]
	if !ok {
		return apperr.NotFoundID(string(report.Target.Kind), report.Target.ID)
	}
	if status == "banned" {
		return apperr.Conflict("Target is already banned")
	}
	for _, existing := range f.reports {
		if existing.ReporterID == report.ReporterID && existing.Target == report.Target {
			return apperr.Conflict("You have already reported this content")
		}
	}
	clone := *report
	f.reports[report.ID] = &clone
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*moderation.Report, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, apperr.NotFoundID("Report", id)
	}
	clone := *report
	return &clone, nil
}

func (f *fakeRepository) List(_ context.Context, filter moderation.Filter, limit, offset int) ([]*moderation.Report, int, error) {
	matches := []*moderation.Report{}
	for _, report := range f.reports {
		if filter.TargetKind != "" && report.Target.Kind != filter.TargetKind {
			continue
		}
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		clone := *report
		matches = append(matches, &clone)
	}
	return matches, len(matches), nil
}

func (f *fakeRepository) Accept(_ context.Context, reportID, adminID string, threshold int) (*moderation.ReviewOutcome, error) {
	report, ok := f.reports[reportID]
	if !ok {
		return nil, apperr.NotFoundID("Report", reportID)
	}

	if report.Status == moderation.StatusAccepted {
		clone := *report
		return &moderation.ReviewOutcome{
			Report:          &clone,
			AcceptedCount:   f.countAccepted(report.Target),
			AlreadyAccepted: true,
		}, nil
	}

	report.Status = moderation.StatusAccepted
	report.AdminID = &adminID

	count := f.countAccepted(report.Target)
	banned := false
	if moderation.ShouldBan(count, threshold) && f.targetStatus[report.Target.ID] != "banned" {
		f.targetStatus[report.Target.ID] = "banned"
		banned = true
	}

	clone := *report
	return &moderation.ReviewOutcome{
		Report:        &clone,
		AcceptedCount: count,
		TargetBanned:  banned,
	}, nil
}

func (f *fakeRepository) CountAccepted(_ context.Context, target moderation.TargetRef) (int, error) {
	return f.countAccepted(target), nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.reports[id]; !ok {
		return apperr.NotFoundID("Report", id)
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeRepository) countAccepted(target moderation.TargetRef) int {
	count := 0
	for _, report := range f.reports {
		if report.Target == target && report.Status == moderation.StatusAccepted {
			count++
		}
	}
	return count
}

var (
	reporter = &sec.AuthClaims{UserID: "user-1", Username: "reporter", Role: "user"}
	admin    = &sec.AuthClaims{UserID: "admin-1", Username: "admin", Role: "admin"}
)

const banThreshold = 3

func publicationTarget(id string) moderation.TargetRef {
	return moderation.TargetRef{Kind: moderation.TargetPublication, ID: id}
}

/*
TestShouldBan pins the threshold comparison at the boundary.
*/
func TestShouldBan(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		threshold int
		want      bool
	}{
		{"below_threshold", 2, 3, false},
		{"at_threshold", 3, 3, true},
		{"above_threshold", 4, 3, true},
		{"zero_count", 0, 3, false},
		{"threshold_one", 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, moderation.ShouldBan(tt.count, tt.threshold))
		})
	}
}

/*
TestService_File verifies filing rules: duplicates, banned targets, validation.
*/
func TestService_File(t *testing.T) {
	setup := func(t *testing.T) (*moderation.Service, *fakeRepository) {
		t.Helper()
		repo := newFakeRepository()
		repo.targetStatus["pub-1"] = "accepted"
		repo.targetStatus["pub-banned"] = "banned"
		return moderation.NewService(repo, banThreshold), repo
	}

	t.Run("files_pending_report", func(t *testing.T) {
		service, _ := setup(t)

		report, err := service.File(context.Background(), reporter, moderation.FileInput{
			Target: publicationTarget("pub-1"),
			Reason: "Spam",
		})

		require.NoError(t, err)
		assert.Equal(t, moderation.StatusPending, report.Status)
		assert.Equal(t, reporter.UserID, report.ReporterID)
		assert.Nil(t, report.AdminID)
	})

	t.Run("filing_never_bans", func(t *testing.T) {
		service, repo := setup(t)

		for i, actor := range []*sec.AuthClaims{
			{UserID: "u1", Role: "user"},
			{UserID: "u2", Role: "user"},
			{UserID: "u3", Role: "user"},
			{UserID: "u4", Role: "user"},
		} {
			_, err := service.File(context.Background(), actor, moderation.FileInput{
				Target: publicationTarget("pub-1"),
				Reason: "Spam",
			})
			require.NoError(t, err, "report %d", i)
		}

		// Four pending reports, target untouched.
		assert.Equal(t, "accepted", repo.targetStatus["pub-1"])
	})

	t.Run("duplicate_report_conflict", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.File(context.Background(), reporter, moderation.FileInput{
			Target: publicationTarget("pub-1"),
			Reason: "Spam",
		})
		require.NoError(t, err)

		_, err = service.File(context.Background(), reporter, moderation.FileInput{
			Target: publicationTarget("pub-1"),
			Reason: "Still spam",
		})

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("banned_target_conflict", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.File(context.Background(), reporter, moderation.FileInput{
			Target: publicationTarget("pub-banned"),
			Reason: "Pile on",
		})

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("missing_target", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.File(context.Background(), reporter, moderation.FileInput{
			Target: publicationTarget("pub-gone"),
			Reason: "Ghost",
		})

		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("invalid_kind", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.File(context.Background(), reporter, moderation.FileInput{
			Target: moderation.TargetRef{Kind: "user", ID: "u-1"},
			Reason: "Wrong kind",
		})

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("reason_too_long", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.File(context.Background(), reporter, moderation.FileInput{
			Target: publicationTarget("pub-1"),
			Reason: strings.Repeat("x", moderation.ReasonMaxLen+1),
		})

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("anonymous_rejected", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.File(context.Background(), nil, moderation.FileInput{
			Target: publicationTarget("pub-1"),
		})

		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})
}

/*
TestService_Review verifies the decision rules and the automatic ban trigger.
*/
func TestService_Review(t *testing.T) {
	// fileReports seeds n pending reports from distinct users against pub-1.
	fileReports := func(t *testing.T, service *moderation.Service, n int) []*moderation.Report {
		t.Helper()
		reports := make([]*moderation.Report, 0, n)
		for i := 0; i < n; i++ {
			actor := &sec.AuthClaims{UserID: "user-" + string(rune('a'+i)), Role: "user"}
			report, err := service.File(context.Background(), actor, moderation.FileInput{
				Target: publicationTarget("pub-1"),
				Reason: "Spam",
			})
			require.NoError(t, err)
			reports = append(reports, report)
		}
		return reports
	}

	setup := func(t *testing.T) (*moderation.Service, *fakeRepository) {
		t.Helper()
		repo := newFakeRepository()
		repo.targetStatus["pub-1"] = "accepted"
		return moderation.NewService(repo, banThreshold), repo
	}

	t.Run("non_admin_forbidden", func(t *testing.T) {
		service, _ := setup(t)
		reports := fileReports(t, service, 1)

		_, err := service.Review(context.Background(), reporter, reports[0].ID, moderation.StatusAccepted)

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("only_accepted_is_legal", func(t *testing.T) {
		service, _ := setup(t)
		reports := fileReports(t, service, 1)

		_, err := service.Review(context.Background(), admin, reports[0].ID, moderation.StatusPending)

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("below_threshold_no_ban", func(t *testing.T) {
		service, repo := setup(t)
		reports := fileReports(t, service, banThreshold-1)

		var outcome *moderation.ReviewOutcome
		var err error
		for _, report := range reports {
			outcome, err = service.Review(context.Background(), admin, report.ID, moderation.StatusAccepted)
			require.NoError(t, err)
		}

		assert.Equal(t, banThreshold-1, outcome.AcceptedCount)
		assert.False(t, outcome.TargetBanned)
		assert.Equal(t, "accepted", repo.targetStatus["pub-1"])
	})

	t.Run("threshold_bans_target", func(t *testing.T) {
		service, repo := setup(t)
		reports := fileReports(t, service, banThreshold)

		var outcome *moderation.ReviewOutcome
		var err error
		for _, report := range reports {
			outcome, err = service.Review(context.Background(), admin, report.ID, moderation.StatusAccepted)
			require.NoError(t, err)
		}

		assert.Equal(t, banThreshold, outcome.AcceptedCount)
		assert.True(t, outcome.TargetBanned)
		assert.Equal(t, "banned", repo.targetStatus["pub-1"])
	})

	t.Run("review_sets_admin", func(t *testing.T) {
		service, _ := setup(t)
		reports := fileReports(t, service, 1)

		outcome, err := service.Review(context.Background(), admin, reports[0].ID, moderation.StatusAccepted)

		require.NoError(t, err)
		require.NotNil(t, outcome.Report.AdminID)
		assert.Equal(t, admin.UserID, *outcome.Report.AdminID)
	})

	t.Run("re_review_is_noop", func(t *testing.T) {
		service, _ := setup(t)
		reports := fileReports(t, service, 1)

		first, err := service.Review(context.Background(), admin, reports[0].ID, moderation.StatusAccepted)
		require.NoError(t, err)
		second, err := service.Review(context.Background(), admin, reports[0].ID, moderation.StatusAccepted)
		require.NoError(t, err)

		assert.Equal(t, first.AcceptedCount, second.AcceptedCount)
		assert.False(t, second.TargetBanned)
	})

	t.Run("missing_report", func(t *testing.T) {
		service, _ := setup(t)

		_, err := service.Review(context.Background(), admin, "nope", moderation.StatusAccepted)

		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestService_Remove verifies that withdrawing a report never reverses a ban.
*/
func TestService_Remove(t *testing.T) {
	repo := newFakeRepository()
	repo.targetStatus["pub-1"] = "accepted"
	service := moderation.NewService(repo, 1)

	report, err := service.File(context.Background(), reporter, moderation.FileInput{
		Target: publicationTarget("pub-1"),
		Reason: "Spam",
	})
	require.NoError(t, err)

	outcome, err := service.Review(context.Background(), admin, report.ID, moderation.StatusAccepted)
	require.NoError(t, err)
	require.True(t, outcome.TargetBanned)

	t.Run("non_admin_forbidden", func(t *testing.T) {
		err := service.Remove(context.Background(), reporter, report.ID)

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("removal_keeps_ban", func(t *testing.T) {
		err := service.Remove(context.Background(), admin, report.ID)

		require.NoError(t, err)
		assert.Equal(t, "banned", repo.targetStatus["pub-1"])
	})

	t.Run("missing_report", func(t *testing.T) {
		err := service.Remove(context.Background(), admin, "nope")

		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestService_List verifies admin-only listing with filters.
*/
func TestService_List(t *testing.T) {
	repo := newFakeRepository()
	repo.targetStatus["pub-1"] = "accepted"
	repo.targetStatus["cmt-1"] = "open"
	service := moderation.NewService(repo, banThreshold)

	_, err := service.File(context.Background(), reporter, moderation.FileInput{
		Target: publicationTarget("pub-1"),
		Reason: "Spam",
	})
	require.NoError(t, err)
	_, err = service.File(context.Background(), reporter, moderation.FileInput{
		Target: moderation.TargetRef{Kind: moderation.TargetComment, ID: "cmt-1"},
		Reason: "Abuse",
	})
	require.NoError(t, err)

	params := pagination.Params{Page: 1, Limit: 10}

	t.Run("non_admin_forbidden", func(t *testing.T) {
		_, _, err := service.List(context.Background(), reporter, moderation.Filter{}, params)

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("filter_by_kind", func(t *testing.T) {
		reports, meta, err := service.List(context.Background(), admin, moderation.Filter{TargetKind: moderation.TargetComment}, params)

		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, moderation.TargetComment, reports[0].Target.Kind)
		assert.Equal(t, 1, meta.Total)
	})

	t.Run("invalid_kind_filter", func(t *testing.T) {
		_, _, err := service.List(context.Background(), admin, moderation.Filter{TargetKind: "user"}, params)

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

/*
TestService_AcceptedCount verifies the recompute-on-read counter.
*/
func TestService_AcceptedCount(t *testing.T) {
	repo := newFakeRepository()
	repo.targetStatus["pub-1"] = "accepted"
	service := moderation.NewService(repo, banThreshold)

	report, err := service.File(context.Background(), reporter, moderation.FileInput{
		Target: publicationTarget("pub-1"),
		Reason: "Spam",
	})
	require.NoError(t, err)

	count, err := service.AcceptedCount(context.Background(), admin, publicationTarget("pub-1"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = service.Review(context.Background(), admin, report.ID, moderation.StatusAccepted)
	require.NoError(t, err)

	count, err = service.AcceptedCount(context.Background(), admin, publicationTarget("pub-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	t.Run("non_admin_forbidden", func(t *testing.T) {
		_, err := service.AcceptedCount(context.Background(), reporter, publicationTarget("pub-1"))

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})
}
