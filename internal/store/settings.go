package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"orgroles/internal/models"
)

// Settings returns the stored settings row, or the defaults when none exists.
func (s *Store) Settings(ctx context.Context) (models.Settings, error) {
	var st models.Settings
	err := s.DB.WithContext(ctx).First(&st, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, wrap(err, "get settings")
	}
	return st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st models.Settings) error {
	st.ID = 1
	return wrap(s.DB.WithContext(ctx).Save(&st).Error, "save settings")
}
