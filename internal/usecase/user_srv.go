package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"walk-booking/internal/data/entity"
	"walk-booking/internal/data/repository"
	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"
	"walk-booking/internal/ledger"
	"walk-booking/pkg/apperr"
	"walk-booking/pkg/utils"

	"go.uber.org/zap"
)

type UserService interface {
	SyncProfile(ctx context.Context, identity request.Identity, req *request.SyncProfileRequest) (*response.ProfileResponse, error)
	GetProfile(ctx context.Context, userID string) (*response.ProfileResponse, error)
}

type userService struct {
	repo   *repository.Repository
	auth   utils.AuthConfig
	policy ledger.Policy
	now    func() time.Time
	log    *zap.Logger
}

func NewUserService(repo *repository.Repository, auth utils.AuthConfig, policy ledger.Policy, log *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		auth:   auth,
		policy: policy,
		now:    time.Now,
		log:    log.With(zap.String("service", "user")),
	}
}

// SyncProfile creates the caller's profile on first sign-in. Later calls
// return the stored profile unchanged; the role is decided only once.
func (s *userService) SyncProfile(ctx context.Context, identity request.Identity, req *request.SyncProfileRequest) (*response.ProfileResponse, error) {
	if err := utils.ValidationError(identity); err != nil {
		return nil, err
	}
	if err := utils.ValidationError(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.User.FindByID(ctx, identity.SubjectID)
	if err != nil {
		logServiceError(s.log, "Profile lookup failed", err, zap.String("user_id", identity.SubjectID))
		return nil, err
	}
	if existing != nil {
		return s.toProfile(existing), nil
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = identity.Name
	}

	role := entity.RoleCustomer
	if s.auth.IsAdminEmail(identity.Email) {
		role = entity.RoleAdmin
	}

	now := s.now()
	user := &entity.User{
		Timestamps: entity.Timestamps{CreatedAt: now, UpdatedAt: now},
		ID:         identity.SubjectID,
		Name:       name,
		Email:      strings.ToLower(identity.Email),
		Role:       role,
	}

	err = s.repo.User.Create(ctx, user)
	if errors.Is(err, repository.ErrUserExists) {
		// a concurrent first sign-in won
		stored, err := s.repo.User.FindByID(ctx, identity.SubjectID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, apperr.ErrUserNotFound
		}
		return s.toProfile(stored), nil
	}
	if err != nil {
		logServiceError(s.log, "Failed to create profile", err, zap.String("user_id", identity.SubjectID))
		return nil, err
	}

	s.log.Info("Profile created",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)

	return s.toProfile(user), nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*response.ProfileResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		logServiceError(s.log, "Profile lookup failed", err, zap.String("user_id", userID))
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrUserNotFound
	}
	return s.toProfile(user), nil
}

func (s *userService) toProfile(u *entity.User) *response.ProfileResponse {
	_, unvetted := u.Eligibility().(entity.Unvetted)

	return &response.ProfileResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		IsVetted: u.IsVetted,
		Balance: response.BalanceResponse{
			Model:        string(s.policy.Model()),
			Tokens:       u.WalkTokens,
			HasFreeWalk:  unvetted && u.FreeWalkBookingID == nil,
			WalksPerWeek: u.WalksPerWeek,
			CanReserve:   s.policy.HasReservationRight(u),
		},
		CreatedAt: u.CreatedAt,
	}
}
