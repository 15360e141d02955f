package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/resourcedesk/internal/database/testutil"
	"github.com/charlesng35/resourcedesk/internal/models"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	s, err := NewGormStore(db, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s
}

func payload(description string) models.ResourceRequest {
	approver := "u-2"
	return models.ResourceRequest{
		RequesterID:          "u-1",
		AssignedApproverID:   &approver,
		RequestType:          models.RequestTypeEquipment,
		ShortDescription:     description,
		Justification:        "Needed for project work",
		Priority:             models.PriorityHigh,
		RequestedDate:        fixedNow,
		TargetResolutionDate: fixedNow.AddDate(0, 0, 3),
		Status:               models.StatusSubmitted,
	}
}

func TestNewGormStoreRequiresDB(t *testing.T) {
	_, err := NewGormStore(nil)
	require.Error(t, err)
}

func TestCreateRequestAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateRequest(ctx, payload("Laptop"))
	require.NoError(t, err)
	require.Equal(t, "REQ-1001", first.RequestID)
	require.Equal(t, int64(1001), first.Sequence)
	require.True(t, first.CreatedAt.Equal(fixedNow))
	require.True(t, first.UpdatedAt.Equal(fixedNow))

	second, err := s.CreateRequest(ctx, payload("Monitor"))
	require.NoError(t, err)
	require.Equal(t, "REQ-1002", second.RequestID)

	withID := payload("Keyboard")
	withID.RequestID = "REQ-9999"
	third, err := s.CreateRequest(ctx, withID)
	require.NoError(t, err)
	require.Equal(t, "REQ-1003", third.RequestID, "client supplied ids are replaced")

	all, err := s.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"REQ-1001", "REQ-1002", "REQ-1003"}, []string{all[0].RequestID, all[1].RequestID, all[2].RequestID})
}

func TestGetRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateRequest(ctx, payload("Laptop"))
	require.NoError(t, err)

	loaded, err := s.GetRequest(ctx, created.RequestID)
	require.NoError(t, err)
	require.Equal(t, "Laptop", loaded.ShortDescription)
	require.Equal(t, models.StatusSubmitted, loaded.Status)
	require.NotNil(t, loaded.AssignedApproverID)
	require.Equal(t, "u-2", *loaded.AssignedApproverID)
	require.True(t, loaded.TargetResolutionDate.Equal(fixedNow.AddDate(0, 0, 3)))

	_, err = s.GetRequest(ctx, "REQ-4242")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.GetRequest(ctx, "  ")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateStatusIsConditional(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateRequest(ctx, payload("Laptop"))
	require.NoError(t, err)

	comment := "Looking into it"
	reviewed, err := s.UpdateStatus(ctx, created.RequestID, models.StatusSubmitted, models.StatusUnderReview, &comment, nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusUnderReview, reviewed.Status)
	require.NotNil(t, reviewed.HandlerComments)
	require.Equal(t, comment, *reviewed.HandlerComments)

	_, err = s.UpdateStatus(ctx, created.RequestID, models.StatusSubmitted, models.StatusRejected, nil, nil)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition, "stale from-status must lose")

	current, err := s.GetRequest(ctx, created.RequestID)
	require.NoError(t, err)
	require.Equal(t, models.StatusUnderReview, current.Status)

	approved, err := s.UpdateStatus(ctx, created.RequestID, models.StatusUnderReview, models.StatusApproved, nil, nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, approved.Status)
	require.Equal(t, comment, *approved.HandlerComments, "nil comment keeps the previous one")

	_, err = s.UpdateStatus(ctx, "REQ-4242", models.StatusSubmitted, models.StatusApproved, nil, nil)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateStatusAssignsOnlyWhenUnassigned(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	open := payload("Desk lamp")
	open.AssignedApproverID = nil
	created, err := s.CreateRequest(ctx, open)
	require.NoError(t, err)
	require.Nil(t, created.AssignedApproverID)

	claimant := "u-3"
	reviewed, err := s.UpdateStatus(ctx, created.RequestID, models.StatusSubmitted, models.StatusUnderReview, nil, &claimant)
	require.NoError(t, err)
	require.NotNil(t, reviewed.AssignedApproverID)
	require.Equal(t, "u-3", *reviewed.AssignedApproverID)

	assigned, err := s.CreateRequest(ctx, payload("Monitor"))
	require.NoError(t, err)
	kept, err := s.UpdateStatus(ctx, assigned.RequestID, models.StatusSubmitted, models.StatusUnderReview, nil, &claimant)
	require.NoError(t, err)
	require.Equal(t, "u-2", *kept.AssignedApproverID, "an existing assignment is never overwritten")
}

func TestCreateRequestUsesStoreClockForDates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	local := time.FixedZone("UTC+5", 5*60*60)
	stale := payload("Chair")
	stale.Priority = models.PriorityMedium
	stale.RequestedDate = time.Date(2023, 6, 1, 8, 30, 0, 123456789, local)
	stale.TargetResolutionDate = stale.RequestedDate

	created, err := s.CreateRequest(ctx, stale)
	require.NoError(t, err)
	require.True(t, created.RequestedDate.Equal(created.CreatedAt))
	require.True(t, created.RequestedDate.Equal(fixedNow))
	require.True(t, created.TargetResolutionDate.Equal(fixedNow.AddDate(0, 0, 7)))

	loaded, err := s.GetRequest(ctx, created.RequestID)
	require.NoError(t, err)
	require.True(t, loaded.RequestedDate.Equal(loaded.CreatedAt))
	require.True(t, loaded.TargetResolutionDate.Equal(fixedNow.AddDate(0, 0, 7)))
}

func TestConcurrentCreatesOnFileDatabase(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData(), testutil.WithFile())
	s, err := NewGormStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	const creators = 8
	ids := make(chan string, creators)
	errs := make(chan error, creators)
	var wg sync.WaitGroup
	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			created, err := s.CreateRequest(ctx, payload(fmt.Sprintf("Item %d", n)))
			if err != nil {
				errs <- err
				return
			}
			ids <- created.RequestID
		}(i)
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for id := range ids {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	require.Len(t, seen, creators)
	for i := 0; i < creators; i++ {
		require.True(t, seen[FormatRequestID(int64(1001+i))])
	}
}

func TestUpdateDetailsOnlyWhileSubmitted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateRequest(ctx, payload("Laptop"))
	require.NoError(t, err)

	description := "Laptop with docking station"
	low := models.PriorityLow
	edited, err := s.UpdateDetails(ctx, created.RequestID, &description, nil, &low)
	require.NoError(t, err)
	require.Equal(t, description, edited.ShortDescription)
	require.Equal(t, "Needed for project work", edited.Justification)
	require.Equal(t, models.PriorityLow, edited.Priority)
	require.True(t, edited.TargetResolutionDate.Equal(created.TargetResolutionDate))

	_, err = s.UpdateDetails(ctx, created.RequestID, nil, nil, nil)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = s.UpdateStatus(ctx, created.RequestID, models.StatusSubmitted, models.StatusApproved, nil, nil)
	require.NoError(t, err)

	_, err = s.UpdateDetails(ctx, created.RequestID, &description, nil, nil)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestCanceledContextIsRemoteUnavailable(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListRequests(ctx)
	require.ErrorIs(t, err, apperrors.ErrRemoteUnavailable)
	require.True(t, apperrors.IsTransient(err))
}
