package services

import (
	"context"
	"log"
	"sync"

	"shieldsite/internal/repository"
)

type SettingService struct {
	repo         *repository.SettingRepository
	settings     map[string]string
	settingsLock sync.RWMutex
	onChange     []func()
}

func NewSettingService(repo *repository.SettingRepository) *SettingService {
	s := &SettingService{
		repo:     repo,
		settings: make(map[string]string),
	}
	s.loadSettings(context.Background())
	return s
}

func (s *SettingService) loadSettings(ctx context.Context) {
	settings, err := s.repo.GetAllSettings(ctx)
	if err != nil {
		log.Printf("failed to load settings: %v", err)
		return
	}
	s.settingsLock.Lock()
	s.settings = settings
	s.settingsLock.Unlock()
}

// OnChange registers a callback run after every successful UpdateSettings.
func (s *SettingService) OnChange(fn func()) {
	s.settingsLock.Lock()
	defer s.settingsLock.Unlock()
	s.onChange = append(s.onChange, fn)
}

// GetAllSettings returns a copy of the cached settings.
func (s *SettingService) GetAllSettings() map[string]string {
	s.settingsLock.RLock()
	defer s.settingsLock.RUnlock()

	settingsCopy := make(map[string]string, len(s.settings))
	for key, value := range s.settings {
		settingsCopy[key] = value
	}
	return settingsCopy
}

// UpdateSettings persists the given settings and refreshes the cache.
func (s *SettingService) UpdateSettings(ctx context.Context, settings map[string]string) error {
	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return err
	}
	s.loadSettings(ctx)

	s.settingsLock.RLock()
	callbacks := append([]func(){}, s.onChange...)
	s.settingsLock.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
	return nil
}

// GetSetting returns a single cached value, "" when unset.
func (s *SettingService) GetSetting(key string) string {
	s.settingsLock.RLock()
	defer s.settingsLock.RUnlock()
	return s.settings[key]
}
