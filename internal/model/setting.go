package model

// Setting keys.
const (
	SettingAdminWhatsApp = "admin_whatsapp"
)

// DefaultWhatsApp is shown publicly until an admin configures a number.
const DefaultWhatsApp = "6281234567890"

// Setting is a single key/value site setting.
type Setting struct {
	Key   string `json:"key" db:"setting_key"`
	Value string `json:"value" db:"setting_value"`
}
