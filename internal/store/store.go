// Package store persists resource requests. The Store contract is what the
// request service relies on; GormStore is the SQL implementation.
package store

import (
	"context"

	"github.com/charlesng35/resourcedesk/internal/models"
)

// Store is the persistence contract for resource requests.
//
// Implementations report a missing request with apperrors.ErrNotFound and
// connectivity failures or timeouts with apperrors.ErrRemoteUnavailable.
// Calls are never retried automatically.
type Store interface {
	// ListRequests returns every request, unfiltered, oldest first.
	ListRequests(ctx context.Context) ([]models.ResourceRequest, error)
	// GetRequest loads a single request by its id.
	GetRequest(ctx context.Context, id string) (models.ResourceRequest, error)
	// CreateRequest persists payload and assigns the authoritative request id
	// and timestamps.
	CreateRequest(ctx context.Context, payload models.ResourceRequest) (models.ResourceRequest, error)
	// UpdateStatus moves id from one status to another. It fails with
	// apperrors.ErrInvalidTransition when the stored status is no longer from.
	// A nil comment leaves the handler comments unchanged. A non-nil assignee
	// is recorded only when the request has no approver yet.
	UpdateStatus(ctx context.Context, id string, from, to models.Status, comment, assignee *string) (models.ResourceRequest, error)
	// UpdateDetails changes the requester-editable fields of a submitted
	// request. Nil arguments are left unchanged.
	UpdateDetails(ctx context.Context, id string, description, justification *string, priority *models.Priority) (models.ResourceRequest, error)
}
