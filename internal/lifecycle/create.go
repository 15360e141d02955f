package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/resourcedesk/internal/models"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

// ResolutionDays is the number of days after the requested date by which a
// request of the given priority should be resolved.
func ResolutionDays(p models.Priority) (int, bool) {
	switch p {
	case models.PriorityHigh:
		return 3, true
	case models.PriorityMedium:
		return 7, true
	case models.PriorityLow:
		return 14, true
	default:
		return 0, false
	}
}

// TargetResolutionDate derives the resolution deadline from the requested date.
// Unknown priorities yield the requested date itself.
func TargetResolutionDate(requested time.Time, p models.Priority) time.Time {
	days, _ := ResolutionDays(p)
	return requested.AddDate(0, 0, days)
}

// NewRequestInput is what a requester submits.
type NewRequestInput struct {
	RequestType        models.RequestType
	ShortDescription   string
	Justification      string
	Priority           models.Priority
	AssignedApproverID *string
}

// NewRequest validates a submission and builds the request to hand to the
// store. The store assigns the authoritative request id.
func NewRequest(actor models.User, input NewRequestInput, now time.Time) (models.ResourceRequest, error) {
	if actor.Role != models.RoleRequester {
		return models.ResourceRequest{}, apperrors.ErrForbidden.WithMessage("only requesters can submit requests")
	}
	if strings.TrimSpace(actor.ID) == "" {
		return models.ResourceRequest{}, apperrors.NewValidation("requester id is required")
	}

	description := strings.TrimSpace(input.ShortDescription)
	if description == "" {
		return models.ResourceRequest{}, apperrors.NewValidation("short description is required")
	}
	justification := strings.TrimSpace(input.Justification)
	if justification == "" {
		return models.ResourceRequest{}, apperrors.NewValidation("justification is required")
	}
	if !input.RequestType.Valid() {
		return models.ResourceRequest{}, apperrors.NewValidation(fmt.Sprintf("unknown request type %q", input.RequestType))
	}
	if !input.Priority.Valid() {
		return models.ResourceRequest{}, apperrors.NewValidation(fmt.Sprintf("unknown priority %q", input.Priority))
	}

	req := models.ResourceRequest{
		RequesterID:          actor.ID,
		RequestType:          input.RequestType,
		ShortDescription:     description,
		Justification:        justification,
		Priority:             input.Priority,
		RequestedDate:        now,
		TargetResolutionDate: TargetResolutionDate(now, input.Priority),
		Status:               models.StatusSubmitted,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if input.AssignedApproverID != nil {
		if id := strings.TrimSpace(*input.AssignedApproverID); id != "" {
			req.AssignedApproverID = &id
		}
	}
	return req, nil
}
