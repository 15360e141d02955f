package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/resourcedesk/internal/models"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

var (
	requester = models.User{BaseModel: models.BaseModel{ID: "u-1"}, Name: "Alex", Role: models.RoleRequester}
	otherReq  = models.User{BaseModel: models.BaseModel{ID: "u-4"}, Name: "Sarah", Role: models.RoleRequester}
	approver  = models.User{BaseModel: models.BaseModel{ID: "u-2"}, Name: "Jordan", Role: models.RoleApprover}

	created = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	later   = created.Add(48 * time.Hour)
)

func sampleRequest(status models.Status) models.ResourceRequest {
	approverID := approver.ID
	comment := "initial note"
	return models.ResourceRequest{
		RequestID:            "REQ-1001",
		RequesterID:          requester.ID,
		AssignedApproverID:   &approverID,
		RequestType:          models.RequestTypeEquipment,
		ShortDescription:     "Laptop",
		Justification:        "Current one is broken",
		Priority:             models.PriorityMedium,
		RequestedDate:        created,
		TargetResolutionDate: created.AddDate(0, 0, 7),
		Status:               status,
		HandlerComments:      &comment,
		CreatedAt:            created,
		UpdatedAt:            created,
	}
}

func TestTargetTable(t *testing.T) {
	legal := map[models.Status]map[Action]models.Status{
		models.StatusSubmitted: {
			ActionTakeForReview: models.StatusUnderReview,
			ActionApprove:       models.StatusApproved,
			ActionReject:        models.StatusRejected,
		},
		models.StatusUnderReview: {
			ActionApprove: models.StatusApproved,
			ActionReject:  models.StatusRejected,
		},
		models.StatusApproved: {
			ActionMarkFulfilled: models.StatusFulfilled,
		},
		models.StatusFulfilled: {
			ActionClose: models.StatusClosed,
		},
	}

	for _, from := range models.Statuses() {
		for _, action := range Actions() {
			got, ok := Target(from, action)
			want, legalPair := legal[from][action]
			require.Equal(t, legalPair, ok, "%s/%s", from, action)
			if legalPair {
				require.Equal(t, want, got, "%s/%s", from, action)
			}
		}
	}
}

func TestApplyRejectsEveryIllegalPairWithoutMutation(t *testing.T) {
	for _, from := range models.Statuses() {
		for _, action := range Actions() {
			if _, ok := Target(from, action); ok {
				continue
			}
			for _, actor := range []models.User{requester, approver} {
				req := sampleRequest(from)
				before := req.Clone()

				out, err := Apply(req, actor, action, "new comment", later)
				require.Error(t, err, "%s/%s/%s", from, action, actor.Role)
				require.True(t, errors.Is(err, apperrors.ErrInvalidTransition), "%s/%s: %v", from, action, err)
				require.Equal(t, models.ResourceRequest{}, out)

				require.Equal(t, before.Status, req.Status)
				require.Equal(t, before.UpdatedAt, req.UpdatedAt)
				require.Equal(t, *before.HandlerComments, *req.HandlerComments)
			}
		}
	}
}

func TestApproverOnlyActions(t *testing.T) {
	cases := []struct {
		from   models.Status
		action Action
	}{
		{models.StatusSubmitted, ActionTakeForReview},
		{models.StatusSubmitted, ActionApprove},
		{models.StatusUnderReview, ActionReject},
		{models.StatusApproved, ActionMarkFulfilled},
	}
	for _, tc := range cases {
		err := Allowed(requester, sampleRequest(tc.from), tc.action)
		require.ErrorIs(t, err, apperrors.ErrInvalidTransition, "%s/%s", tc.from, tc.action)
		require.NoError(t, Allowed(approver, sampleRequest(tc.from), tc.action))
	}
}

func TestApplyCommentHandling(t *testing.T) {
	req := sampleRequest(models.StatusSubmitted)

	kept, err := Apply(req, approver, ActionTakeForReview, "   ", later)
	require.NoError(t, err)
	require.Equal(t, models.StatusUnderReview, kept.Status)
	require.Equal(t, "initial note", *kept.HandlerComments)
	require.Equal(t, later, kept.UpdatedAt)
	require.Equal(t, created, kept.CreatedAt)

	replaced, err := Apply(kept, approver, ActionApprove, " Approved for Q1 budget ", later.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, "Approved for Q1 budget", *replaced.HandlerComments)
	require.Equal(t, "initial note", *kept.HandlerComments, "input must not be mutated")
}

func TestTakeForReviewAssignsUnassignedRequest(t *testing.T) {
	req := sampleRequest(models.StatusSubmitted)
	req.AssignedApproverID = nil

	out, err := Apply(req, approver, ActionTakeForReview, "", later)
	require.NoError(t, err)
	require.NotNil(t, out.AssignedApproverID)
	require.Equal(t, approver.ID, *out.AssignedApproverID)
	require.Nil(t, req.AssignedApproverID)

	direct, err := Apply(req, approver, ActionApprove, "", later)
	require.NoError(t, err)
	require.Nil(t, direct.AssignedApproverID)
}

func TestScenarioRejectThenApproveFails(t *testing.T) {
	req := sampleRequest(models.StatusSubmitted)

	rejected, err := Apply(req, approver, ActionReject, "Not justified", later)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, rejected.Status)

	_, err = Apply(rejected, approver, ActionApprove, "", later.Add(time.Hour))
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	require.Equal(t, models.StatusRejected, rejected.Status)
	require.Equal(t, later, rejected.UpdatedAt)
}

func TestScenarioFulfilThenRequesterCloses(t *testing.T) {
	approved := sampleRequest(models.StatusApproved)

	_, err := Apply(approved, requester, ActionClose, "", later)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition, "requester cannot close an approved request")

	fulfilled, err := Apply(approved, approver, ActionMarkFulfilled, "Delivered to desk 4", later)
	require.NoError(t, err)
	require.Equal(t, models.StatusFulfilled, fulfilled.Status)

	closed, err := Apply(fulfilled, requester, ActionClose, "", later.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, models.StatusClosed, closed.Status)
	require.Equal(t, "Delivered to desk 4", *closed.HandlerComments)
	require.Empty(t, AvailableActions(requester, closed))
	require.Empty(t, AvailableActions(approver, closed))
}

func TestApproverMayCloseFulfilled(t *testing.T) {
	closed, err := Apply(sampleRequest(models.StatusFulfilled), approver, ActionClose, "", later)
	require.NoError(t, err)
	require.Equal(t, models.StatusClosed, closed.Status)
}

func TestRequesterCannotCloseSomeoneElsesRequest(t *testing.T) {
	err := Allowed(otherReq, sampleRequest(models.StatusFulfilled), ActionClose)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestApproverMustBeAssignee(t *testing.T) {
	other := models.User{BaseModel: models.BaseModel{ID: "u-3"}, Name: "Taylor", Role: models.RoleApprover}
	req := sampleRequest(models.StatusSubmitted)

	require.ErrorIs(t, Allowed(other, req, ActionApprove), apperrors.ErrInvalidTransition)

	req.AssignedApproverID = nil
	require.NoError(t, Allowed(other, req, ActionApprove))
}

func TestUnknownActionIsInvalidTransition(t *testing.T) {
	_, err := Apply(sampleRequest(models.StatusSubmitted), approver, Action("escalate"), "", later)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestAvailableActions(t *testing.T) {
	require.Equal(t,
		[]Action{ActionTakeForReview, ActionApprove, ActionReject},
		AvailableActions(approver, sampleRequest(models.StatusSubmitted)))
	require.Equal(t,
		[]Action{ActionApprove, ActionReject},
		AvailableActions(approver, sampleRequest(models.StatusUnderReview)))
	require.Empty(t, AvailableActions(requester, sampleRequest(models.StatusSubmitted)))
	require.Equal(t, []Action{ActionClose}, AvailableActions(requester, sampleRequest(models.StatusFulfilled)))
}

func TestParseAction(t *testing.T) {
	action, ok := ParseAction("Mark_Fulfilled")
	require.True(t, ok)
	require.Equal(t, ActionMarkFulfilled, action)

	action, ok = ParseAction("take for review")
	require.True(t, ok)
	require.Equal(t, ActionTakeForReview, action)

	_, ok = ParseAction("delete")
	require.False(t, ok)
}

func TestEditOnlyWhileSubmitted(t *testing.T) {
	description := "Laptop with 32GB RAM"
	for _, status := range models.Statuses() {
		if status == models.StatusSubmitted {
			continue
		}
		for _, actor := range []models.User{requester, approver} {
			req := sampleRequest(status)
			out, err := Edit(req, actor, Changes{ShortDescription: &description}, later)
			require.ErrorIs(t, err, apperrors.ErrInvalidTransition, "%s/%s", status, actor.Role)
			require.Equal(t, models.ResourceRequest{}, out)
			require.Equal(t, "Laptop", req.ShortDescription)
			require.Equal(t, created, req.UpdatedAt)
		}
	}
}

func TestEditRules(t *testing.T) {
	req := sampleRequest(models.StatusSubmitted)
	description := "  Laptop with 32GB RAM "

	_, err := Edit(req, approver, Changes{ShortDescription: &description}, later)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = Edit(req, otherReq, Changes{ShortDescription: &description}, later)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = Edit(req, requester, Changes{}, later)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	blank := "   "
	_, err = Edit(req, requester, Changes{Justification: &blank}, later)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	bogus := models.Priority("Urgent")
	_, err = Edit(req, requester, Changes{Priority: &bogus}, later)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	high := models.PriorityHigh
	edited, err := Edit(req, requester, Changes{ShortDescription: &description, Priority: &high}, later)
	require.NoError(t, err)
	require.Equal(t, "Laptop with 32GB RAM", edited.ShortDescription)
	require.Equal(t, models.PriorityHigh, edited.Priority)
	require.Equal(t, models.StatusSubmitted, edited.Status)
	require.Equal(t, later, edited.UpdatedAt)
	require.Equal(t, created, edited.CreatedAt)
	require.Equal(t, req.TargetResolutionDate, edited.TargetResolutionDate, "priority edits do not recompute the target date")
}
