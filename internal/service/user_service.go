package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// userService implements UserService.
type userService struct {
	txr       repository.Transactor
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	txr repository.Transactor,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	logger zerolog.Logger,
) UserService {
	return &userService{
		txr:       txr,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "user").Logger(),
	}
}

// Register creates a user with role "user" and an empty cart.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	return s.create(ctx, req.Email, req.Password, model.RoleUser)
}

func (s *userService) create(ctx context.Context, email, password, role string) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
	}
	cart := &model.Order{
		ID:        uuid.New(),
		UserID:    user.ID,
		Status:    model.OrderStatusPending,
		CreatedAt: now,
	}

	err = runInTx(ctx, s.txr, s.logger, "register user", func(tx pgx.Tx) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		return s.orderRepo.CreateOrder(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", role).
		Msg("user registered")

	return user, nil
}

// Deposit adds a non-negative amount to the user's balance.
func (s *userService) Deposit(ctx context.Context, userID uuid.UUID, amount float64) (float64, error) {
	if amount < 0 {
		return 0, model.ErrNegativeDeposit
	}

	balance, err := s.userRepo.AddBalance(ctx, userID, amount)
	if err != nil {
		return 0, s.wrap(err, "deposit")
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Float64("amount", amount).
		Float64("balance", balance).
		Msg("balance deposited")

	return balance, nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *userService) ChangePassword(ctx context.Context, user *model.User, req *model.ChangePasswordRequest) error {
	if !auth.VerifyPassword(req.OldPassword, user.PasswordHash) {
		return model.ErrIncorrectPassword
	}
	if req.NewPassword != req.NewPasswordRepeat {
		return model.ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return s.wrap(err, "change password")
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("password changed")
	return nil
}

// ChangeEmail moves the account to a new, unused email.
func (s *userService) ChangeEmail(ctx context.Context, userID uuid.UUID, email string) error {
	if err := s.userRepo.UpdateEmail(ctx, userID, strings.TrimSpace(email)); err != nil {
		return s.wrap(err, "change email")
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("email changed")
	return nil
}

// DeleteAccount removes the caller's account and their orders.
func (s *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.DeleteUser(ctx, userID)
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, s.wrap(err, "list users")
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap(err, "get user")
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return s.wrap(err, "delete user")
	}
	return nil
}

// SetBalance overwrites a balance. Administrators may set any value.
func (s *userService) SetBalance(ctx context.Context, id uuid.UUID, balance float64) (*model.User, error) {
	user, err := s.userRepo.SetBalance(ctx, id, balance)
	if err != nil {
		return nil, s.wrap(err, "set balance")
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	s.logger.Info().
		Str("user_id", id.String()).
		Float64("balance", balance).
		Msg("balance set by administrator")

	return user, nil
}

// EnsureAdmin creates the administrator account on first start.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return s.wrap(err, "look up admin")
	}
	if existing != nil {
		if existing.Role != model.RoleAdmin {
			s.logger.Warn().Str("email", email).Msg("configured admin email belongs to a regular user")
		}
		return nil
	}

	if _, err := s.create(ctx, email, password, model.RoleAdmin); err != nil {
		// another instance won the race
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}

// wrap passes domain errors through and annotates storage failures.
func (s *userService) wrap(err error, op string) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error().Err(err).Str("operation", op).Msg("user operation failed")
	return fmt.Errorf("failed to %s: %w", op, err)
}
