package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/himique/Industial-Automation/models"
)

// FindUserByUsername returns the user record or nil when no such user exists.
func FindUserByUsername(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return &user, nil
}

// EnsureUser inserts the user unless a row with the same username already
// exists. This is the provisioning contract used by the createadmin tool;
// an existing user's hash and flags are left untouched.
func EnsureUser(ctx context.Context, db *gorm.DB, username, passwordHash string, isAdmin bool) (*models.User, bool, error) {
	existing, err := FindUserByUsername(ctx, db, username)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		IsActive:     true,
	}
	err = db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent insert; the row is there.
		existing, ferr := FindUserByUsername(ctx, db, username)
		if ferr != nil {
			return nil, false, ferr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("creating user: %w", err)
	}
	return &user, true, nil
}
