package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

type RegisterInput struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"    validate:"required,max=50"`
	Address  string `json:"address"  validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput updates only the non-empty fields.
type ProfileInput struct {
	Name    string `json:"name"    validate:"nullable,max=255"`
	Phone   string `json:"phone"   validate:"nullable,max=50"`
	Address string `json:"address"`
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{users: repositories.NewUserRepository(db)}
}

// Users exposes the repository for middleware.Authenticate.
func (s *UserService) Users() *repositories.UserRepository { return s.users }

// Register creates a customer account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return models.User{}, internal(err)
	}
	if taken {
		return models.User{}, apperr.Conflict("Email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, apperr.Internal("hash password", err)
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Role:     models.RoleCustomer,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, internal(err)
	}
	return user, nil
}

// Login checks the credentials and issues a token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(user.Password, in.Password)) {
		return "", models.User{}, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return "", models.User{}, internal(err)
	}
	if user.IsBlocked() {
		return "", models.User{}, apperr.Forbidden("Your account has been blocked")
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", models.User{}, apperr.Internal("issue token", err)
	}
	return token, user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	return user, notFound(err, "User not found")
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.All(ctx)
	return users, internal(err)
}

// ToggleBlock flips a customer between customer and blocked-customer.
func (s *UserService) ToggleBlock(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return user, notFound(err, "User not found")
	}
	if user.IsAdministrator() {
		return user, apperr.InvalidInput("Administrators cannot be blocked")
	}

	role := models.RoleBlockedCustomer
	if user.IsBlocked() {
		role = models.RoleCustomer
	}
	if err := s.users.UpdateColumns(ctx, &user, map[string]any{"role": role}); err != nil {
		return user, internal(err)
	}
	user.Role = role
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return user, notFound(err, "User not found")
	}

	changes := map[string]any{}
	if v := strings.TrimSpace(in.Name); v != "" {
		changes["name"] = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		changes["phone"] = v
	}
	if v := strings.TrimSpace(in.Address); v != "" {
		changes["address"] = v
	}
	if len(changes) == 0 {
		return user, nil
	}
	if err := s.users.UpdateColumns(ctx, &user, changes); err != nil {
		return user, internal(err)
	}
	user, err = s.users.FindByID(ctx, id)
	return user, internal(err)
}

func (s *UserService) ChangePassword(ctx context.Context, id uint, in PasswordInput) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "User not found")
	}
	if !auth.CheckPassword(user.Password, in.CurrentPassword) {
		return apperr.Unauthorized("Current password is incorrect")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	return internal(s.users.UpdateColumns(ctx, &user, map[string]any{"password": hash}))
}
