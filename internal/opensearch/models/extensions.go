package models

import "time"

// InstitutionExt - поля, заполняемые только для учебных заведений
type InstitutionExt struct {
	Ranking        int      `json:"ranking,omitempty"`
	AcceptanceRate *float64 `json:"acceptance_rate,omitempty"`
	Tuition        *float64 `json:"tuition,omitempty"`
	Country        string   `json:"country,omitempty"`
	City           string   `json:"city,omitempty"`
}

// ProgramExt - поля программ обучения
type ProgramExt struct {
	Degree        string   `json:"degree,omitempty"`
	DurationMonth int      `json:"duration_months,omitempty"`
	Tuition       *float64 `json:"tuition,omitempty"`
	Language      string   `json:"language,omitempty"`
}

// FundingExt - поля грантов и стипендий
type FundingExt struct {
	Amount   *float64   `json:"amount,omitempty"`
	Currency string     `json:"currency,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Provider string     `json:"provider,omitempty"`
}

// ContentExt - поля информационных материалов
type ContentExt struct {
	Format      string `json:"format,omitempty"`
	ReadingTime int    `json:"reading_time_minutes,omitempty"`
}

// ApplicationExt - поля записей о заявках
type ApplicationExt struct {
	Status     string     `json:"status,omitempty"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	TargetID   string     `json:"target_id,omitempty"`
	TargetType string     `json:"target_type,omitempty"`
}
