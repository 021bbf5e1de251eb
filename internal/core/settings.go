package core

import "time"

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"

	English    Language = "en"
	Indonesian Language = "id"
)

type (
	Theme    string
	Language string

	// AppSettings is the process-wide settings singleton. Only Currency and
	// Language are read by the calculation code.
	AppSettings struct {
		Theme               Theme      `json:"theme"`
		Currency            string     `json:"currency"`
		Language            Language   `json:"language"`
		PinEnabled          bool       `json:"pinEnabled"`
		PinHash             string     `json:"pinHash,omitempty"`
		BiometricEnabled    bool       `json:"biometricEnabled"`
		OnboardingCompleted bool       `json:"onboardingCompleted"`
		LastOpenedAt        *time.Time `json:"lastOpenedAt,omitempty"`
	}
)

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() AppSettings {
	return AppSettings{
		Theme:    ThemeSystem,
		Currency: "IDR",
		Language: Indonesian,
	}
}

// Normalize fills empty fields with defaults.
func (s AppSettings) Normalize() AppSettings {
	def := DefaultSettings()
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		s.Theme = def.Theme
	}
	if s.Currency == "" {
		s.Currency = def.Currency
	}
	if s.Language != English && s.Language != Indonesian {
		s.Language = def.Language
	}
	return s
}
