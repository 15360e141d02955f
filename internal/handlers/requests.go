package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/resourcedesk/internal/export"
	"github.com/charlesng35/resourcedesk/internal/lifecycle"
	"github.com/charlesng35/resourcedesk/internal/models"
	"github.com/charlesng35/resourcedesk/internal/services"
	"github.com/charlesng35/resourcedesk/internal/visibility"
	"github.com/charlesng35/resourcedesk/pkg/errors"
	"github.com/charlesng35/resourcedesk/pkg/response"
)

// RequestHandler exposes the resource request workflow over HTTP.
type RequestHandler struct {
	svc *services.RequestService
}

// NewRequestHandler constructs a request handler.
func NewRequestHandler(svc *services.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

type createRequestPayload struct {
	RequestType        string  `json:"request_type" validate:"required,request_type"`
	ShortDescription   string  `json:"short_description" validate:"required,notblank,max=200"`
	Justification      string  `json:"justification" validate:"required,notblank,max=4000"`
	Priority           string  `json:"priority" validate:"required,priority"`
	AssignedApproverID *string `json:"assigned_approver_id"`
}

type editRequestPayload struct {
	ShortDescription *string `json:"short_description" validate:"omitempty,max=200"`
	Justification    *string `json:"justification" validate:"omitempty,max=4000"`
	Priority         *string `json:"priority" validate:"omitempty,priority"`
}

type transitionPayload struct {
	Comment string `json:"comment" validate:"max=2000"`
}

// GET /api/requests
func (h *RequestHandler) List(c *gin.Context) {
	h.list(c, false)
}

// GET /api/requests/pending
func (h *RequestHandler) Pending(c *gin.Context) {
	h.list(c, true)
}

func (h *RequestHandler) list(c *gin.Context, pending bool) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	criteria, err := parseCriteria(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	opts := services.ListRequestsOptions{
		Criteria: criteria,
		Page:     parseIntQuery(c, "page", 1),
		PerPage:  parseIntQuery(c, "per_page", 0),
	}

	var page services.RequestPage
	if pending {
		page, err = h.svc.Pending(requestContext(c), actor, opts)
	} else {
		page, err = h.svc.List(requestContext(c), actor, opts)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, page.Items, response.NewMeta(page.Page, page.PerPage, page.Total))
}

// GET /api/dashboard
func (h *RequestHandler) Dashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stats, err := h.svc.Dashboard(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GET /api/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	view, err := h.svc.Get(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/requests
func (h *RequestHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var body createRequestPayload
	if !bindAndValidate(c, &body) {
		return
	}

	requestType, _ := models.ParseRequestType(body.RequestType)
	priority, _ := models.ParsePriority(body.Priority)

	view, err := h.svc.Create(requestContext(c), actor, services.CreateRequestInput{
		RequestType:        requestType,
		ShortDescription:   body.ShortDescription,
		Justification:      body.Justification,
		Priority:           priority,
		AssignedApproverID: body.AssignedApproverID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// PATCH /api/requests/:id
func (h *RequestHandler) Edit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var body editRequestPayload
	if !bindAndValidate(c, &body) {
		return
	}

	changes := lifecycle.Changes{
		ShortDescription: body.ShortDescription,
		Justification:    body.Justification,
	}
	if body.Priority != nil {
		priority, _ := models.ParsePriority(*body.Priority)
		changes.Priority = &priority
	}

	view, err := h.svc.Edit(requestContext(c), actor, c.Param("id"), changes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/requests/:id/actions/:action
func (h *RequestHandler) Transition(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	action, valid := lifecycle.ParseAction(c.Param("action"))
	if !valid {
		response.Error(c, errors.NewInvalidTransition(fmt.Sprintf("unknown action %q", c.Param("action"))))
		return
	}

	var body transitionPayload
	if !bindOptionalJSON(c, &body) {
		return
	}

	view, err := h.svc.Transition(requestContext(c), actor, c.Param("id"), action, body.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GET /api/requests/:id/export/:format
func (h *RequestHandler) Export(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	format := strings.ToLower(strings.TrimSpace(c.Param("format")))
	if format == services.FormatSummary {
		summary, err := h.svc.Summarize(requestContext(c), actor, c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{
			"request_id": strings.TrimSpace(c.Param("id")),
			"summary":    summary,
		})
		return
	}

	artifact, err := h.svc.Export(requestContext(c), actor, c.Param("id"), export.Format(format))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, artifact.Filename, artifact.ContentType, artifact.Body)
}

// parseCriteria reads list filters from the query string. Multi-valued
// filters accept repeated keys or comma separated values.
func parseCriteria(c *gin.Context) (visibility.Criteria, error) {
	var criteria visibility.Criteria

	for _, raw := range queryList(c, "type") {
		t, ok := models.ParseRequestType(raw)
		if !ok {
			return criteria, errors.NewValidation(fmt.Sprintf("unknown request type %q", raw))
		}
		criteria.Types = append(criteria.Types, t)
	}
	for _, raw := range queryList(c, "status") {
		s, ok := models.ParseStatus(raw)
		if !ok {
			return criteria, errors.NewValidation(fmt.Sprintf("unknown status %q", raw))
		}
		criteria.Statuses = append(criteria.Statuses, s)
	}
	for _, raw := range queryList(c, "priority") {
		p, ok := models.ParsePriority(raw)
		if !ok {
			return criteria, errors.NewValidation(fmt.Sprintf("unknown priority %q", raw))
		}
		criteria.Priorities = append(criteria.Priorities, p)
	}

	from, err := parseDateQuery(c, "from", false)
	if err != nil {
		return criteria, err
	}
	to, err := parseDateQuery(c, "to", true)
	if err != nil {
		return criteria, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return criteria, errors.NewValidation("to must not be before from")
	}
	criteria.CreatedFrom, criteria.CreatedTo = from, to

	sortBy := c.Query("sort")
	if sortBy != "" {
		field, err := visibility.ParseSortField(sortBy)
		if err != nil {
			return criteria, errors.NewValidation(err.Error())
		}
		criteria.SortBy = field
	}

	switch order := strings.ToLower(strings.TrimSpace(c.Query("order"))); order {
	case "", "desc":
	case "asc":
		criteria.Ascending = true
	default:
		return criteria, errors.NewValidation(fmt.Sprintf("order must be asc or desc, got %q", order))
	}

	return criteria, nil
}

func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, value := range c.QueryArray(key) {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
