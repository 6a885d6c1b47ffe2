package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/hallbridge/internal/models"
)

// RunLateFees adds the configured percentage to every overdue pending payment that has not
// been surcharged yet. The repository applies predicate and update in one statement, so
// repeated or concurrent runs never charge twice.
func (s *Service) RunLateFees(ctx context.Context) (int, error) {
	percent, err := s.GetSetting(ctx, models.SettingLateFeePercent)
	if err != nil {
		return 0, err
	}
	if percent <= 0 {
		s.log.Info("Late fee percent is not positive, nothing to apply")
		return 0, nil
	}

	now := s.now()
	updated, err := s.store.ApplyLateFees(ctx, percent, now)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"percent": percent, "updated": updated}).Info("Late fees applied")
	return updated, nil
}
