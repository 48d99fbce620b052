package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/bootcamp-tracker/models"
)

// UserDirectory handles name based login and the ranked member listing.
type UserDirectory struct {
	db  *gorm.DB
	log *zap.Logger
}

// UserFilter narrows a ranked listing.
type UserFilter struct {
	Search string
	Gender models.Gender
}

func NewUserDirectory(db *gorm.DB, logger *zap.Logger) *UserDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserDirectory{db: db, log: logger}
}

// LoginOrCreate returns the user with the given name, creating it on first login.
// The gender is only applied on creation.
func (d *UserDirectory) LoginOrCreate(ctx context.Context, name string, gender models.Gender) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !gender.Valid() {
		return nil, fmt.Errorf("%w: invalid gender %q", ErrValidation, gender)
	}

	db := d.db.WithContext(ctx)
	candidate := models.User{Name: name, Gender: gender}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&candidate)
	if res.Error != nil {
		return nil, res.Error
	}

	var user models.User
	if err := db.Where("name = ?", name).First(&user).Error; err != nil {
		return nil, err
	}
	if res.RowsAffected > 0 {
		d.log.Info("user created", zap.Uint("user_id", user.ID), zap.String("name", user.Name))
	}
	return &user, nil
}

// GetUser loads a user by id.
func (d *UserDirectory) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateGender changes a user's gender. A missing user is reported before a bad gender.
func (d *UserDirectory) UpdateGender(ctx context.Context, id uint, gender models.Gender) (*models.User, error) {
	user, err := d.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !gender.Valid() {
		return nil, fmt.Errorf("%w: invalid gender %q", ErrValidation, gender)
	}
	if err := d.db.WithContext(ctx).Model(user).Update("gender", string(gender)).Error; err != nil {
		return nil, err
	}
	user.Gender = gender
	return user, nil
}

// ListUsersByRank returns users ordered by total points, highest first.
func (d *UserDirectory) ListUsersByRank(ctx context.Context, skip, limit int, f UserFilter) ([]models.User, error) {
	q := d.db.WithContext(ctx).Model(&models.User{}).
		Order("total_points DESC").
		Order("id ASC")
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if f.Gender != "" {
		q = q.Where("gender = ?", string(f.Gender))
	}
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	users := []models.User{}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
