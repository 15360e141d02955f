package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/resourcedesk/internal/export"
	"github.com/charlesng35/resourcedesk/internal/lifecycle"
	"github.com/charlesng35/resourcedesk/internal/models"
	"github.com/charlesng35/resourcedesk/internal/store"
	"github.com/charlesng35/resourcedesk/internal/visibility"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
	"github.com/charlesng35/resourcedesk/pkg/logger"
	"github.com/charlesng35/resourcedesk/pkg/metrics"
)

const (
	defaultRequestsPerPage = 25
	maxRequestsPerPage     = 100

	// FormatSummary selects the remote text summary instead of a file artifact.
	FormatSummary = "summary"
)

// RequestView is a request together with what the viewing actor may do next.
type RequestView struct {
	models.ResourceRequest
	AvailableActions []lifecycle.Action `json:"available_actions"`
	CanEdit          bool               `json:"can_edit"`
	Overdue          bool               `json:"overdue"`
}

// ListRequestsOptions controls filtering and pagination of the request list.
type ListRequestsOptions struct {
	Criteria visibility.Criteria
	Page     int
	PerPage  int
}

// RequestPage is one page of a filtered, visible request list.
type RequestPage struct {
	Items   []RequestView
	Page    int
	PerPage int
	Total   int
}

// CreateRequestInput describes a requester's submission.
type CreateRequestInput struct {
	RequestType        models.RequestType
	ShortDescription   string
	Justification      string
	Priority           models.Priority
	AssignedApproverID *string
}

// RequestService orchestrates the request store, the lifecycle engine and the
// visibility filter. Every operation takes the acting user explicitly.
type RequestService struct {
	store         store.Store
	users         *UserService
	filter        *visibility.Filter
	exports       *export.Registry
	summary       export.SummaryClient
	audit         *AuditService
	notifications *NotificationService
	routing       map[models.RequestType]string
	now           func() time.Time
	log           *zap.Logger
}

// RequestServiceOption customises a RequestService.
type RequestServiceOption func(*RequestService)

// WithVisibilityFilter overrides the default all-approvers visibility filter.
func WithVisibilityFilter(filter *visibility.Filter) RequestServiceOption {
	return func(s *RequestService) {
		if filter != nil {
			s.filter = filter
		}
	}
}

// WithExportRegistry sets the exporters available to Export.
func WithExportRegistry(registry *export.Registry) RequestServiceOption {
	return func(s *RequestService) {
		if registry != nil {
			s.exports = registry
		}
	}
}

// WithSummaryClient enables the remote summary export.
func WithSummaryClient(client export.SummaryClient) RequestServiceOption {
	return func(s *RequestService) {
		s.summary = client
	}
}

// WithAuditService records every mutation and export attempt.
func WithAuditService(audit *AuditService) RequestServiceOption {
	return func(s *RequestService) {
		s.audit = audit
	}
}

// WithNotificationService notifies requesters and approvers of workflow events.
func WithNotificationService(notifications *NotificationService) RequestServiceOption {
	return func(s *RequestService) {
		s.notifications = notifications
	}
}

// WithRouting assigns new requests of a type to the given approver when the
// requester did not pick one.
func WithRouting(routing map[models.RequestType]string) RequestServiceOption {
	return func(s *RequestService) {
		s.routing = make(map[models.RequestType]string, len(routing))
		for t, id := range routing {
			if id = strings.TrimSpace(id); id != "" {
				s.routing[t] = id
			}
		}
	}
}

// WithRequestClock overrides the time source.
func WithRequestClock(now func() time.Time) RequestServiceOption {
	return func(s *RequestService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRequestService constructs a RequestService.
func NewRequestService(st store.Store, users *UserService, opts ...RequestServiceOption) (*RequestService, error) {
	if st == nil {
		return nil, errors.New("request service: store is required")
	}
	if users == nil {
		return nil, errors.New("request service: user service is required")
	}

	s := &RequestService{
		store:   st,
		users:   users,
		filter:  visibility.New(visibility.UnassignedAllApprovers),
		exports: export.DefaultRegistry(),
		now:     time.Now,
		log:     logger.WithModule("requests"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RequestService) view(actor models.User, req models.ResourceRequest) RequestView {
	actions := lifecycle.AvailableActions(actor, req)
	if actions == nil {
		actions = []lifecycle.Action{}
	}
	return RequestView{
		ResourceRequest:  req,
		AvailableActions: actions,
		CanEdit:          lifecycle.CanEdit(actor, req) == nil,
		Overdue:          req.Overdue(s.now()),
	}
}

// List returns one page of the requests actor may see, filtered and sorted by
// opts.Criteria. Filtering and counting happen after visibility is applied.
func (s *RequestService) List(ctx context.Context, actor models.User, opts ListRequestsOptions) (RequestPage, error) {
	all, err := s.store.ListRequests(ensureContext(ctx))
	if err != nil {
		return RequestPage{}, err
	}

	matched := s.filter.List(actor, all, opts.Criteria)
	page, perPage := clampPage(opts.Page, opts.PerPage, defaultRequestsPerPage, maxRequestsPerPage)

	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]RequestView, 0, end-start)
	for _, req := range matched[start:end] {
		items = append(items, s.view(actor, req))
	}
	return RequestPage{Items: items, Page: page, PerPage: perPage, Total: len(matched)}, nil
}

// Pending lists the visible requests still awaiting approver work.
func (s *RequestService) Pending(ctx context.Context, actor models.User, opts ListRequestsOptions) (RequestPage, error) {
	opts.Criteria.PendingOnly = true
	if opts.Criteria.SortBy == "" {
		opts.Criteria.SortBy = visibility.SortTargetDate
		opts.Criteria.Ascending = true
	}
	return s.List(ctx, actor, opts)
}

// Dashboard returns counters computed from the actor's visible requests only.
func (s *RequestService) Dashboard(ctx context.Context, actor models.User) (visibility.Stats, error) {
	all, err := s.store.ListRequests(ensureContext(ctx))
	if err != nil {
		return visibility.Stats{}, err
	}
	return s.filter.Dashboard(actor, all, s.now()), nil
}

// Get loads a single request. Unknown and invisible ids are both NOT_FOUND.
func (s *RequestService) Get(ctx context.Context, actor models.User, id string) (RequestView, error) {
	req, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return RequestView{}, err
	}
	return s.view(actor, req), nil
}

func (s *RequestService) loadVisible(ctx context.Context, actor models.User, id string) (models.ResourceRequest, error) {
	req, err := s.store.GetRequest(ensureContext(ctx), strings.TrimSpace(id))
	if err != nil {
		return models.ResourceRequest{}, err
	}
	if !s.filter.CanView(actor, req) {
		return models.ResourceRequest{}, apperrors.ErrNotFound
	}
	return req, nil
}

// Create validates and submits a new request on behalf of actor.
func (s *RequestService) Create(ctx context.Context, actor models.User, input CreateRequestInput) (view RequestView, err error) {
	ctx = ensureContext(ctx)
	defer func() {
		recordAudit(s.audit, ctx, AuditEntry{
			ActorID:   actor.ID,
			ActorRole: actor.Role,
			Action:    "request.create",
			RequestID: view.RequestID,
			Result:    auditResult(err),
			Detail:    errorDetail(err),
			Metadata:  map[string]any{"type": input.RequestType, "priority": input.Priority},
		})
	}()

	assignee := input.AssignedApproverID
	if assignee == nil || strings.TrimSpace(*assignee) == "" {
		if routed, ok := s.routing[input.RequestType]; ok {
			assignee = &routed
		}
	}

	payload, err := lifecycle.NewRequest(actor, lifecycle.NewRequestInput{
		RequestType:        input.RequestType,
		ShortDescription:   input.ShortDescription,
		Justification:      input.Justification,
		Priority:           input.Priority,
		AssignedApproverID: assignee,
	}, s.now())
	if err != nil {
		return RequestView{}, err
	}

	if payload.AssignedApproverID != nil {
		if _, err := s.users.RequireApprover(ctx, *payload.AssignedApproverID); err != nil {
			return RequestView{}, err
		}
	}

	created, err := s.store.CreateRequest(ctx, payload)
	if err != nil {
		return RequestView{}, err
	}

	metrics.RequestsCreated.WithLabelValues(string(created.RequestType), string(created.Priority)).Inc()
	s.log.Info("request submitted",
		zap.String("request_id", created.RequestID),
		zap.String("requester_id", created.RequesterID),
		zap.String("type", string(created.RequestType)),
	)

	if created.AssignedApproverID != nil {
		s.notify(ctx, CreateNotificationInput{
			UserID:    *created.AssignedApproverID,
			RequestID: created.RequestID,
			Type:      NotificationRequestSubmitted,
			Title:     fmt.Sprintf("%s awaits review", created.RequestID),
			Message:   fmt.Sprintf("%s request: %s", created.RequestType, created.ShortDescription),
			Metadata:  map[string]any{"priority": created.Priority},
		})
	}

	return s.view(actor, created), nil
}

// Transition applies a lifecycle action. The current state is re-read before
// validation and the store update is conditional on it, so a concurrent
// change surfaces as INVALID_TRANSITION.
func (s *RequestService) Transition(ctx context.Context, actor models.User, id string, action lifecycle.Action, comment string) (view RequestView, err error) {
	ctx = ensureContext(ctx)
	var from models.Status
	defer func() {
		result := "applied"
		switch {
		case errors.Is(err, apperrors.ErrInvalidTransition):
			result = "rejected"
		case err != nil:
			result = "error"
		}
		metrics.Transitions.WithLabelValues(string(action), result).Inc()
		recordAudit(s.audit, ctx, AuditEntry{
			ActorID:   actor.ID,
			ActorRole: actor.Role,
			Action:    "request." + string(action),
			RequestID: id,
			Result:    auditResult(err),
			Detail:    errorDetail(err),
			Metadata:  map[string]any{"from": from, "to": view.Status},
		})
	}()

	current, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return RequestView{}, err
	}
	from = current.Status

	next, err := lifecycle.Apply(current, actor, action, comment, s.now())
	if err != nil {
		return RequestView{}, err
	}

	var newComment *string
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		newComment = &trimmed
	}

	var assignee *string
	if current.Unassigned() && !next.Unassigned() {
		assignee = next.AssignedApproverID
	}

	updated, err := s.store.UpdateStatus(ctx, current.RequestID, current.Status, next.Status, newComment, assignee)
	if err != nil {
		return RequestView{}, err
	}

	s.log.Info("request transitioned",
		zap.String("request_id", updated.RequestID),
		zap.String("action", string(action)),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", actor.ID),
	)

	if updated.RequesterID != actor.ID {
		s.notify(ctx, CreateNotificationInput{
			UserID:    updated.RequesterID,
			RequestID: updated.RequestID,
			Type:      NotificationStatusChanged,
			Title:     fmt.Sprintf("%s is now %s", updated.RequestID, updated.Status),
			Message:   commentOrDefault(newComment, fmt.Sprintf("%s moved your request from %s to %s", actor.Name, current.Status, updated.Status)),
			Severity:  severityFor(updated.Status),
			Metadata:  map[string]any{"from": current.Status, "to": updated.Status, "action": action},
		})
	}

	return s.view(actor, updated), nil
}

// Edit changes the requester-editable fields of a submitted request.
func (s *RequestService) Edit(ctx context.Context, actor models.User, id string, changes lifecycle.Changes) (view RequestView, err error) {
	ctx = ensureContext(ctx)
	defer func() {
		recordAudit(s.audit, ctx, AuditEntry{
			ActorID:   actor.ID,
			ActorRole: actor.Role,
			Action:    "request.edit",
			RequestID: id,
			Result:    auditResult(err),
			Detail:    errorDetail(err),
		})
	}()

	current, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return RequestView{}, err
	}

	edited, err := lifecycle.Edit(current, actor, changes, s.now())
	if err != nil {
		return RequestView{}, err
	}

	var description, justification *string
	var priority *models.Priority
	if changes.ShortDescription != nil {
		description = &edited.ShortDescription
	}
	if changes.Justification != nil {
		justification = &edited.Justification
	}
	if changes.Priority != nil {
		priority = &edited.Priority
	}

	updated, err := s.store.UpdateDetails(ctx, current.RequestID, description, justification, priority)
	if err != nil {
		return RequestView{}, err
	}
	return s.view(actor, updated), nil
}

// Export renders a visible request in the given format.
func (s *RequestService) Export(ctx context.Context, actor models.User, id string, format export.Format) (artifact export.Artifact, err error) {
	ctx = ensureContext(ctx)
	defer s.trackExport(ctx, actor, id, string(format), &err)

	req, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return export.Artifact{}, err
	}
	return s.exports.Export(ctx, format, req)
}

// Summarize asks the remote summary service to describe a visible request.
func (s *RequestService) Summarize(ctx context.Context, actor models.User, id string) (summary string, err error) {
	ctx = ensureContext(ctx)
	defer s.trackExport(ctx, actor, id, FormatSummary, &err)

	req, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if s.summary == nil {
		return "", apperrors.ErrExportFailed.WithMessage("Summary service is not configured")
	}
	return s.summary.Summarize(ctx, req)
}

func (s *RequestService) trackExport(ctx context.Context, actor models.User, id, format string, errp *error) {
	err := *errp
	result := "success"
	if err != nil {
		result = "failure"
		s.log.Warn("export failed", zap.String("request_id", id), zap.String("format", format), zap.Error(err))
	}
	metrics.Exports.WithLabelValues(format, result).Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    "request.export",
		RequestID: id,
		Result:    auditResult(err),
		Detail:    errorDetail(err),
		Metadata:  map[string]any{"format": format},
	})
}

// OverdueReport summarises one overdue scan.
type OverdueReport struct {
	Open     int
	Overdue  int
	Notified int
}

// ScanOverdue counts open requests past their target resolution date and
// notifies each assigned approver once per overdue request.
func (s *RequestService) ScanOverdue(ctx context.Context) (OverdueReport, error) {
	ctx = ensureContext(ctx)
	all, err := s.store.ListRequests(ctx)
	if err != nil {
		return OverdueReport{}, err
	}

	now := s.now()
	var report OverdueReport
	for _, req := range all {
		if req.Status.Terminal() || req.Status == models.StatusFulfilled {
			continue
		}
		report.Open++
		if !req.Overdue(now) {
			continue
		}
		report.Overdue++

		if req.Unassigned() || s.notifications == nil {
			continue
		}
		approverID := *req.AssignedApproverID
		exists, err := s.notifications.Exists(ctx, approverID, req.RequestID, NotificationRequestOverdue)
		if err != nil {
			return report, err
		}
		if exists {
			continue
		}
		s.notify(ctx, CreateNotificationInput{
			UserID:    approverID,
			RequestID: req.RequestID,
			Type:      NotificationRequestOverdue,
			Title:     fmt.Sprintf("%s is overdue", req.RequestID),
			Message:   fmt.Sprintf("Target resolution date %s has passed", req.TargetResolutionDate.Format("2006-01-02")),
			Severity:  "warning",
		})
		report.Notified++
	}

	metrics.OverdueRequests.Set(float64(report.Overdue))
	return report, nil
}

func (s *RequestService) notify(ctx context.Context, input CreateNotificationInput) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Create(ctx, input); err != nil {
		s.log.Warn("failed to create notification",
			zap.String("user_id", input.UserID),
			zap.String("request_id", input.RequestID),
			zap.Error(err),
		)
	}
}

func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func commentOrDefault(comment *string, fallback string) string {
	if comment != nil {
		return *comment
	}
	return fallback
}

func severityFor(status models.Status) string {
	switch status {
	case models.StatusRejected:
		return "warning"
	case models.StatusApproved, models.StatusFulfilled:
		return "success"
	default:
		return "info"
	}
}
