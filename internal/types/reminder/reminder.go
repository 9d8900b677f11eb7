package reminder

import "fmt"

type Reminder struct {
	ID      string `json:"id"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Enabled bool   `json:"enabled"`
}

// TimeOfDay renders the reminder as HH:MM.
func (r Reminder) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// WithEnabled returns a copy of r with the enabled flag replaced.
func (r Reminder) WithEnabled(enabled bool) Reminder {
	return Reminder{
		ID:      r.ID,
		Hour:    r.Hour,
		Minute:  r.Minute,
		Enabled: enabled,
	}
}

type Settings struct {
	NotificationsEnabled bool `json:"notificationsEnabled"`
}

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type AddReminderRequest struct {
	Time string `json:"time"` // HH:MM
}

type UpdateSettingsRequest struct {
	NotificationsEnabled *bool `json:"notificationsEnabled"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
