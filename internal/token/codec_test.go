package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-portal/internal/model"
)

func sampleClaims() model.SessionClaims {
	role := "HR"
	dept := "People Ops"
	return model.SessionClaims{
		UserID:      "u-1",
		Email:       "hr@example.com",
		Username:    "hruser",
		Role:        &role,
		Permissions: []string{"LEAVE_APPROVE", "EMP_VIEW"},
		JTI:         "jti-1",
		Employee: &model.EmployeeSnapshot{
			ID:         42,
			FullName:   "Jane Roe",
			Department: &dept,
		},
		LastLoginAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")
	in := sampleClaims()

	raw, err := codec.Mint(in, time.Hour)
	require.NoError(t, err)

	out, err := codec.Verify(raw)
	require.NoError(t, err)

	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Email, out.Email)
	assert.Equal(t, in.Username, out.Username)
	assert.Equal(t, in.JTI, out.JTI)
	require.NotNil(t, out.Role)
	assert.Equal(t, "HR", *out.Role)
	assert.ElementsMatch(t, in.Permissions, out.Permissions)
	require.NotNil(t, out.Employee)
	assert.Equal(t, int64(42), out.Employee.ID)
	assert.Equal(t, "Jane Roe", out.Employee.FullName)
	require.NotNil(t, out.Employee.Department)
	assert.Equal(t, "People Ops", *out.Employee.Department)
	assert.Nil(t, out.Employee.Position)
	assert.Equal(t, in.LastLoginAt, out.LastLoginAt)
	assert.False(t, out.IssuedAt.IsZero())
	assert.True(t, out.ExpiresAt.After(out.IssuedAt))
}

func TestCodec_Expired(t *testing.T) {
	codec := NewCodec("test-secret")
	now := time.Now().UTC()

	raw, err := codec.MintWithExpiry(sampleClaims(), now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodec_TamperDetection(t *testing.T) {
	codec := NewCodec("test-secret")

	raw, err := codec.Mint(sampleClaims(), time.Hour)
	require.NoError(t, err)

	// Flip one byte in the payload section.
	b := []byte(raw)
	mid := len(b) / 2
	if b[mid] == 'A' {
		b[mid] = 'B'
	} else {
		b[mid] = 'A'
	}

	_, err = codec.Verify(string(b))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_WrongSecret(t *testing.T) {
	raw, err := NewCodec("secret-a").Mint(sampleClaims(), time.Hour)
	require.NoError(t, err)

	_, err = NewCodec("secret-b").Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_RefreshKeepsExpiry(t *testing.T) {
	codec := NewCodec("test-secret")
	in := sampleClaims()

	raw, err := codec.Mint(in, time.Hour)
	require.NoError(t, err)
	original, err := codec.Verify(raw)
	require.NoError(t, err)

	// Re-mint with the original timestamps, as the linkage refresh does.
	refreshed, err := codec.MintWithExpiry(original, original.IssuedAt, original.ExpiresAt)
	require.NoError(t, err)
	out, err := codec.Verify(refreshed)
	require.NoError(t, err)

	assert.Equal(t, original.JTI, out.JTI)
	assert.Equal(t, original.ExpiresAt, out.ExpiresAt)
}
