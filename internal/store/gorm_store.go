package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/resourcedesk/internal/lifecycle"
	"github.com/charlesng35/resourcedesk/internal/models"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
	"github.com/charlesng35/resourcedesk/pkg/logger"
)

const (
	// FirstSequence is the number of the first request id, REQ-1001.
	FirstSequence = 1001

	requestIDPrefix = "REQ-"
	createAttempts  = 3
)

// FormatRequestID renders a sequence number as a request id.
func FormatRequestID(sequence int64) string {
	return requestIDPrefix + strconv.FormatInt(sequence, 10)
}

// GormStore implements Store on top of gorm.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
	log *zap.Logger
}

// Option customises a GormStore.
type Option func(*GormStore)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *GormStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewGormStore constructs a Store backed by db.
func NewGormStore(db *gorm.DB, opts ...Option) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("request store: db is required")
	}
	s := &GormStore{
		db:  db,
		now: time.Now,
		log: logger.WithModule("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// ListRequests returns every request ordered by sequence.
func (s *GormStore) ListRequests(ctx context.Context) ([]models.ResourceRequest, error) {
	var out []models.ResourceRequest
	if err := s.db.WithContext(ensureContext(ctx)).Order("sequence ASC").Find(&out).Error; err != nil {
		return nil, TranslateError(err)
	}
	return out, nil
}

// GetRequest loads a request by id.
func (s *GormStore) GetRequest(ctx context.Context, id string) (models.ResourceRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.ResourceRequest{}, apperrors.ErrNotFound
	}
	return s.get(s.db.WithContext(ensureContext(ctx)), id)
}

func (s *GormStore) get(tx *gorm.DB, id string) (models.ResourceRequest, error) {
	var req models.ResourceRequest
	if err := tx.Take(&req, "request_id = ?", id).Error; err != nil {
		return models.ResourceRequest{}, TranslateError(err)
	}
	return req, nil
}

// CreateRequest assigns the next request id and persists payload. The store's
// clock is authoritative: requested, created and updated timestamps share one
// instant and the target resolution date is derived from it. Concurrent
// creators racing for the same sequence are retried a bounded number of times.
func (s *GormStore) CreateRequest(ctx context.Context, payload models.ResourceRequest) (models.ResourceRequest, error) {
	ctx = ensureContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		created, err := s.createOnce(ctx, payload)
		if err == nil {
			return created, nil
		}
		if !isUniqueConstraintError(err) {
			return models.ResourceRequest{}, TranslateError(err)
		}
		lastErr = err
		s.log.Debug("request id collision, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
	return models.ResourceRequest{}, apperrors.ErrRemoteUnavailable.WithInternal(fmt.Errorf("assign request id: %w", lastErr))
}

func (s *GormStore) createOnce(ctx context.Context, payload models.ResourceRequest) (models.ResourceRequest, error) {
	record := payload.Clone()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&models.ResourceRequest{}).Select("COALESCE(MAX(sequence), 0)").Row().Scan(&last); err != nil {
			return err
		}
		next := int64(FirstSequence)
		if last >= next {
			next = last + 1
		}

		now := s.timestamp()
		record.Sequence = next
		record.RequestID = FormatRequestID(next)
		record.CreatedAt = now
		record.UpdatedAt = now
		record.RequestedDate = now
		record.TargetResolutionDate = lifecycle.TargetResolutionDate(now, record.Priority)
		return tx.Create(&record).Error
	})
	if err != nil {
		return models.ResourceRequest{}, err
	}
	return record, nil
}

// UpdateStatus performs a conditional status change so that a writer who
// changed the status first wins and later writers see InvalidTransition.
func (s *GormStore) UpdateStatus(ctx context.Context, id string, from, to models.Status, comment, assignee *string) (models.ResourceRequest, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": s.timestamp(),
	}
	if comment != nil {
		updates["handler_comments"] = *comment
	}
	if assignee != nil && *assignee != "" {
		updates["assigned_approver_id"] = gorm.Expr("COALESCE(NULLIF(assigned_approver_id, ''), ?)", *assignee)
	}
	return s.conditionalUpdate(ensureContext(ctx), id, from, updates)
}

// UpdateDetails changes editable fields while the request is still Submitted.
func (s *GormStore) UpdateDetails(ctx context.Context, id string, description, justification *string, priority *models.Priority) (models.ResourceRequest, error) {
	updates := map[string]any{}
	if description != nil {
		updates["short_description"] = *description
	}
	if justification != nil {
		updates["justification"] = *justification
	}
	if priority != nil {
		updates["priority"] = *priority
	}
	if len(updates) == 0 {
		return models.ResourceRequest{}, apperrors.NewValidation("no changes supplied")
	}
	updates["updated_at"] = s.timestamp()
	return s.conditionalUpdate(ensureContext(ctx), id, models.StatusSubmitted, updates)
}

func (s *GormStore) conditionalUpdate(ctx context.Context, id string, expected models.Status, updates map[string]any) (models.ResourceRequest, error) {
	var out models.ResourceRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ResourceRequest{}).
			Where("request_id = ? AND status = ?", id, expected).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		current, err := s.get(tx, id)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return apperrors.NewInvalidTransition(fmt.Sprintf("request %s is %s, expected %s", id, current.Status, expected))
		}
		out = current
		return nil
	})
	if err != nil {
		return models.ResourceRequest{}, TranslateError(err)
	}
	return out, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
