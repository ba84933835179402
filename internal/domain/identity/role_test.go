package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		role    Role
		isValid bool
	}{
		{RoleOwner, true},
		{RoleAdmin, true},
		{RoleManager, true},
		{RoleAgent, true},
		{RoleViewer, true},
		{Role("SUPERUSER"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.role.IsValid())
		})
	}
}

func TestRole_CanAutoApprovePayments(t *testing.T) {
	tests := []struct {
		role    Role
		allowed bool
	}{
		{RoleOwner, true},
		{RoleAdmin, true},
		{RoleManager, false},
		{RoleAgent, false},
		{RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.role.CanAutoApprovePayments())
		})
	}
}

func TestRole_CanApprove(t *testing.T) {
	assert.True(t, RoleOwner.CanApprove())
	assert.True(t, RoleAdmin.CanApprove())
	assert.True(t, RoleManager.CanApprove())
	assert.False(t, RoleAgent.CanApprove())
	assert.False(t, RoleViewer.CanApprove())
}

func TestRole_CanDeleteDirectly(t *testing.T) {
	assert.True(t, RoleOwner.CanDeleteDirectly())
	assert.True(t, RoleAdmin.CanDeleteDirectly())
	assert.False(t, RoleManager.CanDeleteDirectly())
	assert.False(t, RoleAgent.CanDeleteDirectly())
}

func TestRole_CanRecordPayments(t *testing.T) {
	assert.True(t, RoleAgent.CanRecordPayments())
	assert.False(t, RoleViewer.CanRecordPayments())
}

func TestNewActor(t *testing.T) {
	actor, err := NewActor(uuid.New(), RoleAgent)
	require.NoError(t, err)
	assert.Equal(t, RoleAgent, actor.Role)

	_, err = NewActor(uuid.Nil, RoleAgent)
	assert.Error(t, err)

	_, err = NewActor(uuid.New(), Role("ROOT"))
	assert.Error(t, err)
}
