package models

import "strings"

// SensitivePayload is the category-dependent secret data kept on an assignment.
// Notebooks carry the disk encryption password; phones carry mail, line and 2FA recovery data.
type SensitivePayload struct {
	DiskEncryptionPassword string `gorm:"size:255" json:"disk_encryption_password,omitempty"`
	MailAccount            string `gorm:"size:255" json:"mail_account,omitempty"`
	MailPassword           string `gorm:"size:255" json:"mail_password,omitempty"`
	PhoneNumber            string `gorm:"size:50" json:"phone_number,omitempty"`
	TwoFactorRecovery      string `gorm:"size:255" json:"two_factor_recovery,omitempty"`
}

type SensitiveKind string

const (
	SensitiveNone     SensitiveKind = ""
	SensitiveNotebook SensitiveKind = "notebook"
	SensitivePhone    SensitiveKind = "phone"
)

// sensitiveCategories maps normalized category names to the payload they carry.
// Names are matched whole: "Headphones" or "Notebook stand" carry nothing.
var sensitiveCategories = map[string]SensitiveKind{
	"notebook":     SensitiveNotebook,
	"notebooks":    SensitiveNotebook,
	"phone":        SensitivePhone,
	"phones":       SensitivePhone,
	"mobile phone": SensitivePhone,
	"cell phone":   SensitivePhone,
	"smartphone":   SensitivePhone,
}

// SensitiveKindFor classifies a category name, ignoring case and surrounding
// or repeated whitespace.
func SensitiveKindFor(category string) SensitiveKind {
	c := strings.Join(strings.Fields(strings.ToLower(category)), " ")
	return sensitiveCategories[c]
}

// Restrict withholds every field that does not belong to kind.
func (p SensitivePayload) Restrict(kind SensitiveKind) SensitivePayload {
	switch kind {
	case SensitiveNotebook:
		return SensitivePayload{DiskEncryptionPassword: p.DiskEncryptionPassword}
	case SensitivePhone:
		return SensitivePayload{
			MailAccount:       p.MailAccount,
			MailPassword:      p.MailPassword,
			PhoneNumber:       p.PhoneNumber,
			TwoFactorRecovery: p.TwoFactorRecovery,
		}
	}
	return SensitivePayload{}
}

// FieldSelector picks the single sensitive column exposed for an assignment.
type FieldSelector func(a *Assignment) string

// SensitiveFieldFor returns the exposed field for a category, or false when the
// category exposes nothing.
func SensitiveFieldFor(category string) (FieldSelector, bool) {
	switch SensitiveKindFor(category) {
	case SensitiveNotebook:
		return func(a *Assignment) string { return a.Sensitive.DiskEncryptionPassword }, true
	case SensitivePhone:
		return func(a *Assignment) string { return a.Sensitive.MailPassword }, true
	}
	return nil, false
}

// MaskedSensitive evaluates the policy for one row. An absent assignment or an
// excluded category always yields nil.
func MaskedSensitive(category string, a *Assignment) *string {
	if a == nil {
		return nil
	}
	sel, ok := SensitiveFieldFor(category)
	if !ok {
		return nil
	}
	v := sel(a)
	return &v
}
