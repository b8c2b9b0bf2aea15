package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// UserService manages library member and staff accounts
type UserService struct {
	store        Store
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewUserService(store Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:        store,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

// CreateUser creates an account on behalf of staff. Role defaults to member
// when the request leaves it empty.
func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, apperr.CodeInternal, "hash password")
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	user, err := s.store.CreateUser(ctx, repository.CreateUserParams{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		PasswordHash:     string(hash),
		Role:             role,
		MembershipNumber: req.MembershipNumber,
		Phone:            req.Phone,
		Address:          req.Address,
		MembershipStart:  req.MembershipStart,
		MembershipEnd:    req.MembershipEnd,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "email or membership number already in use")
		}
		return nil, apperr.FromStore(err, "create user")
	}

	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.FromStore(err, "get user")
	}
	return &user, nil
}

// UpdateUser merges a patch request into the current record
func (s *UserService) UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var user models.User
	err := s.store.WithinTx(ctx, func(q Querier) error {
		current, err := q.GetUserByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("user")
			}
			return apperr.FromStore(err, "get user")
		}

		if req.FirstName != nil {
			current.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			current.LastName = *req.LastName
		}
		if req.Email != nil {
			current.Email = *req.Email
		}
		if req.Role != nil {
			current.Role = *req.Role
		}
		if req.MembershipNumber != nil {
			current.MembershipNumber = req.MembershipNumber
		}
		if req.Phone != nil {
			current.Phone = req.Phone
		}
		if req.Address != nil {
			current.Address = req.Address
		}
		if req.MembershipStart != nil {
			current.MembershipStart = req.MembershipStart
		}
		if req.MembershipEnd != nil {
			current.MembershipEnd = req.MembershipEnd
		}
		if req.IsActive != nil {
			current.IsActive = *req.IsActive
		}

		user, err = q.UpdateUser(ctx, current)
		if err != nil {
			if repository.IsUniqueViolation(err) {
				return apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "email or membership number already in use")
			}
			return apperr.FromStore(err, "update user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser soft-deletes an account. Accounts with ongoing loans or an
// outstanding fines balance are kept until those are settled.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.store.WithinTx(ctx, func(q Querier) error {
		active, err := q.CountActiveLoansByUser(ctx, id)
		if err != nil {
			return apperr.FromStore(err, "count active loans")
		}
		if active > 0 {
			return apperr.New(apperr.KindConstraint, apperr.CodeConstraintViolation, "user has ongoing loans")
		}
		balance, err := q.SumUnpaidFinesByUser(ctx, id)
		if err != nil {
			return apperr.FromStore(err, "sum unpaid fines")
		}
		if balance.IsPositive() {
			return apperr.New(apperr.KindConstraint, apperr.CodeConstraintViolation, "user has unpaid fines")
		}
		if err := q.SoftDeleteUser(ctx, id); err != nil {
			if err == repository.ErrNoRowsAffected {
				return apperr.NotFound("user")
			}
			return apperr.FromStore(err, "delete user")
		}
		return nil
	})
}

func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]models.User, *models.Pagination, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	users, err := s.store.ListUsers(ctx, int32(limit), int32(offset))
	if err != nil {
		return nil, nil, apperr.FromStore(err, "list users")
	}
	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, nil, apperr.FromStore(err, "count users")
	}

	return users, &models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}
