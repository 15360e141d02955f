package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/resourcedesk/internal/models"
	"github.com/charlesng35/resourcedesk/internal/store"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

// UserService resolves portal members. Users are seeded, not managed through the API.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// GetByID loads a user. Unknown ids yield NOT_FOUND.
func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.User{}, apperrors.ErrNotFound
	}

	var user models.User
	if err := s.db.WithContext(ensureContext(ctx)).Take(&user, "id = ?", id).Error; err != nil {
		return models.User{}, store.TranslateError(err)
	}
	return user, nil
}

// List returns users ordered by name, optionally restricted to one role.
func (s *UserService) List(ctx context.Context, role models.Role) ([]models.User, error) {
	query := s.db.WithContext(ensureContext(ctx)).Order("name ASC")
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, store.TranslateError(err)
	}
	return users, nil
}

// RequireApprover loads id and checks that it is an approver. Any other
// outcome is reported as a validation error naming the id.
func (s *UserService) RequireApprover(ctx context.Context, id string) (models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.User{}, apperrors.NewValidation("assigned approver " + id + " does not exist")
		}
		return models.User{}, err
	}
	if !user.IsApprover() {
		return models.User{}, apperrors.NewValidation("assigned approver " + id + " is not an approver")
	}
	return user, nil
}
