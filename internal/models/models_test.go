package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset_tracker/internal/apperr"
)

func ptr(v int64) *int64 { return &v }

func TestNewDestination_ExactlyOne(t *testing.T) {
	d, err := NewDestination(ptr(5), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, EmployeeDestination(5), d)

	d, err = NewDestination(nil, nil, ptr(2))
	require.NoError(t, err)
	assert.Equal(t, BranchDestination(2), d)

	_, err = NewDestination(nil, nil, nil)
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = NewDestination(ptr(1), ptr(2), nil)
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = NewDestination(nil, ptr(0), nil)
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestAssignmentSetDestinationClearsOthers(t *testing.T) {
	a := Assignment{}
	a.SetDestination(EmployeeDestination(3))
	a.SetDestination(SectorDestination(7))

	assert.Nil(t, a.EmployeeID)
	assert.Nil(t, a.BranchID)
	require.NotNil(t, a.SectorID)
	assert.Equal(t, int64(7), *a.SectorID)
	assert.Equal(t, SectorDestination(7), a.Destination())
	assert.Equal(t, "sector #7", a.DestinationLabel())

	a.Sector = &Sector{ID: 7, Name: "Finance"}
	assert.Equal(t, "Sector: Finance", a.DestinationLabel())
}

func TestSensitivePolicy(t *testing.T) {
	a := &Assignment{Sensitive: SensitivePayload{
		DiskEncryptionPassword: "disk-secret",
		MailPassword:           "mail-secret",
	}}

	got := MaskedSensitive("Notebook", a)
	require.NotNil(t, got)
	assert.Equal(t, "disk-secret", *got)

	got = MaskedSensitive("Mobile Phone", a)
	require.NotNil(t, got)
	assert.Equal(t, "mail-secret", *got)

	assert.Nil(t, MaskedSensitive("Monitor", a))
	assert.Nil(t, MaskedSensitive("Phone", nil))
}

func TestSensitiveKindForMatchesWholeName(t *testing.T) {
	cases := map[string]SensitiveKind{
		"Notebook":       SensitiveNotebook,
		"  NOTEBOOK ":    SensitiveNotebook,
		"Phone":          SensitivePhone,
		"Mobile   Phone": SensitivePhone,
		"Headphones":     SensitiveNone,
		"Microphone":     SensitiveNone,
		"Notebook stand": SensitiveNone,
		"Phone case":     SensitiveNone,
		"Monitor":        SensitiveNone,
		"":               SensitiveNone,
	}
	for name, want := range cases {
		assert.Equalf(t, want, SensitiveKindFor(name), "category %q", name)
	}

	p := SensitivePayload{MailAccount: "ops@example.com", MailPassword: "mail", DiskEncryptionPassword: "disk"}
	assert.Equal(t, SensitivePayload{}, p.Restrict(SensitiveKindFor("Headphones")))
}

func TestSensitiveRestrict(t *testing.T) {
	p := SensitivePayload{
		DiskEncryptionPassword: "disk",
		MailAccount:            "ops@example.com",
		MailPassword:           "mail",
		PhoneNumber:            "+54 11 5555",
		TwoFactorRecovery:      "codes",
	}

	assert.Equal(t, SensitivePayload{DiskEncryptionPassword: "disk"}, p.Restrict(SensitiveNotebook))
	phone := p.Restrict(SensitivePhone)
	assert.Empty(t, phone.DiskEncryptionPassword)
	assert.Equal(t, "mail", phone.MailPassword)
	assert.Equal(t, SensitivePayload{}, p.Restrict(SensitiveNone))
}
