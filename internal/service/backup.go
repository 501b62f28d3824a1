package service

import (
	"context"
	"fmt"
	"time"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/reducer"
	"aminashop/backend/internal/store"
	"aminashop/backend/internal/validation"
)

const backupTimeLayout = "15:04"

// Export returns the whole document in the backup file format.
func (s *Service) Export(ctx context.Context) (domain.Document, error) {
	if err := s.authorize(ctx, domain.ModuleSettings); err != nil {
		return domain.Document{}, err
	}
	return s.snapshot(), nil
}

// RestoreData replaces the document with a backup and ends the session.
func (s *Service) RestoreData(ctx context.Context, doc domain.Document) error {
	if doc.CountRole(domain.RoleAdmin) == 0 {
		return fmt.Errorf("%w: backup has no Admin user", ErrInvalidBackup)
	}
	for _, u := range doc.Users {
		if u.ID == "" || !u.Role.Valid() {
			return fmt.Errorf("%w: user %q is incomplete", ErrInvalidBackup, u.ID)
		}
	}
	return s.apply(ctx, domain.ModuleSettings, func(domain.Document) (reducer.Action, error) {
		return reducer.RestoreData{Document: doc}, nil
	})
}

// ResetAllData clears business data and keeps users, categories and
// backup settings.
func (s *Service) ResetAllData(ctx context.Context) error {
	return s.apply(ctx, domain.ModuleSettings, func(domain.Document) (reducer.Action, error) {
		return reducer.ResetAllData{}, nil
	})
}

func (s *Service) BackupSettings(ctx context.Context) (domain.BackupSettings, error) {
	if err := s.authorize(ctx, domain.ModuleSettings); err != nil {
		return domain.BackupSettings{}, err
	}
	return s.snapshot().BackupSettings, nil
}

func (s *Service) UpdateBackupSettings(ctx context.Context, req domain.BackupSettingsInput) (domain.BackupSettings, error) {
	if err := validation.Check(req); err != nil {
		return domain.BackupSettings{}, err
	}
	if _, err := time.Parse(backupTimeLayout, req.Time); err != nil {
		return domain.BackupSettings{}, fmt.Errorf("%w: backup time %q is not HH:MM", store.ErrInvalidTransaction, req.Time)
	}

	var settings domain.BackupSettings
	err := s.apply(ctx, domain.ModuleSettings, func(doc domain.Document) (reducer.Action, error) {
		settings = doc.BackupSettings
		settings.Enabled = req.Enabled
		settings.Frequency = req.Frequency
		settings.Time = req.Time
		return reducer.UpdateBackupSettings{Settings: settings}, nil
	})
	return settings, err
}

func (s *Service) UpdateLastBackupTimestamp(ctx context.Context, at time.Time) (domain.BackupSettings, error) {
	var settings domain.BackupSettings
	err := s.apply(ctx, domain.ModuleSettings, func(doc domain.Document) (reducer.Action, error) {
		ts := at.UnixMilli()
		settings = doc.BackupSettings
		settings.LastBackupTimestamp = &ts
		return reducer.UpdateLastBackup{TimestampMillis: ts}, nil
	})
	return settings, err
}

// BackupDue reports whether an automatic backup should run at now.
func (s *Service) BackupDue(now time.Time) bool {
	var settings domain.BackupSettings
	s.store.View(func(doc domain.Document, _ uint64) {
		settings = doc.BackupSettings
	})
	return BackupDue(settings, now)
}

// BackupDue compares the last run with the most recent scheduled slot.
// Weekly backups run once the previous one is at least six slots old.
func BackupDue(settings domain.BackupSettings, now time.Time) bool {
	if !settings.Enabled {
		return false
	}
	at, err := time.Parse(backupTimeLayout, settings.Time)
	if err != nil {
		return false
	}
	slot := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if now.Before(slot) {
		slot = slot.AddDate(0, 0, -1)
	}
	if settings.LastBackupTimestamp == nil {
		return true
	}
	last := time.UnixMilli(*settings.LastBackupTimestamp)
	if settings.Frequency == domain.BackupWeekly {
		return last.Before(slot.AddDate(0, 0, -6))
	}
	return last.Before(slot)
}
