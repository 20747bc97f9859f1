// Package repositories is the gorm data access layer. Every repository holds
// an explicit *gorm.DB; WithTx rebinds it to a transaction.
package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, err
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateColumns writes only the given columns.
func (r *UserRepository) UpdateColumns(ctx context.Context, user *models.User, columns map[string]any) error {
	return r.db.WithContext(ctx).Model(user).Updates(columns).Error
}

func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

// RoleOf satisfies middleware.RoleLookup.
func (r *UserRepository) RoleOf(ctx context.Context, userID uint) (string, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "role").First(&user, userID).Error
	return user.Role, err
}
