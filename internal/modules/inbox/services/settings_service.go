package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatandika/wa-automation-be/internal/core/hours"
	"github.com/chatandika/wa-automation-be/internal/core/rules"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/repositories"
)

// SettingsService manages per-workspace automation settings and
// materializes defaults on first access.
type SettingsService struct {
	repo repositories.SettingsRepo
}

func NewSettingsService(repo repositories.SettingsRepo) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get returns the workspace settings, creating the default record when
// none exists yet.
func (s *SettingsService) Get(workspaceID uuid.UUID) (*models.AutomationSetting, error) {
	setting, err := s.repo.GetByWorkspace(workspaceID)
	if err == nil {
		return setting, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	schedule, err := json.Marshal(hours.DefaultWeek())
	if err != nil {
		return nil, fmt.Errorf("failed to encode default schedule: %w", err)
	}
	ruleList, err := json.Marshal(rules.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("failed to encode default rules: %w", err)
	}

	setting = &models.AutomationSetting{
		WorkspaceID: workspaceID,
		HolidayMode: false,
		Schedule:    schedule,
		Rules:       ruleList,
	}
	if err := s.repo.Create(setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// UpdateInput is the mutable slice of settings.
type UpdateInput struct {
	HolidayMode *bool               `json:"holiday_mode,omitempty"`
	Schedule    []hours.DaySchedule `json:"schedule,omitempty"`
	Rules       []rules.Rule        `json:"rules,omitempty"`
}

// Update applies a partial settings change.
func (s *SettingsService) Update(workspaceID uuid.UUID, in UpdateInput) (*models.AutomationSetting, error) {
	setting, err := s.Get(workspaceID)
	if err != nil {
		return nil, err
	}

	if in.HolidayMode != nil {
		setting.HolidayMode = *in.HolidayMode
	}
	if in.Schedule != nil {
		raw, err := json.Marshal(in.Schedule)
		if err != nil {
			return nil, fmt.Errorf("failed to encode schedule: %w", err)
		}
		setting.Schedule = raw
	}
	if in.Rules != nil {
		raw, err := json.Marshal(rules.Normalize(in.Rules))
		if err != nil {
			return nil, fmt.Errorf("failed to encode rules: %w", err)
		}
		setting.Rules = raw
	}

	if err := s.repo.Update(setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// Schedule decodes the stored weekly schedule.
func (s *SettingsService) Schedule(setting *models.AutomationSetting) ([]hours.DaySchedule, error) {
	var days []hours.DaySchedule
	if len(setting.Schedule) == 0 {
		return hours.DefaultWeek(), nil
	}
	if err := json.Unmarshal(setting.Schedule, &days); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}
	return days, nil
}

// Rules decodes the stored rule list with kinds filled in.
func (s *SettingsService) Rules(setting *models.AutomationSetting) ([]rules.Rule, error) {
	var list []rules.Rule
	if len(setting.Rules) == 0 {
		return rules.DefaultRules(), nil
	}
	if err := json.Unmarshal(setting.Rules, &list); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}
	return rules.Normalize(list), nil
}
