package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceStatusIsValid(t *testing.T) {
	valid := []ServiceStatus{
		ServiceStatusOperational,
		ServiceStatusDegraded,
		ServiceStatusPartialOutage,
		ServiceStatusMajorOutage,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %q to be valid", s)
	}

	invalid := []ServiceStatus{"", "operational", "Down", "MAJOR OUTAGE"}
	for _, s := range invalid {
		assert.False(t, s.IsValid(), "expected %q to be invalid", s)
	}
}

func TestIncidentStatusIsValid(t *testing.T) {
	valid := []IncidentStatus{
		IncidentStatusNew,
		IncidentStatusAcknowledged,
		IncidentStatusInProgress,
		IncidentStatusOnHold,
		IncidentStatusEscalated,
		IncidentStatusResolved,
		IncidentStatusMonitoring,
		IncidentStatusClosed,
		IncidentStatusReopened,
		IncidentStatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %q to be valid", s)
	}

	invalid := []IncidentStatus{"", "new", "Open", "resolved"}
	for _, s := range invalid {
		assert.False(t, s.IsValid(), "expected %q to be invalid", s)
	}
}

func TestRoleHasPermission(t *testing.T) {
	assert.True(t, RoleAdmin.HasPermission(RoleMember))
	assert.True(t, RoleAdmin.HasPermission(RoleAdmin))
	assert.True(t, RoleMember.HasPermission(RoleMember))
	assert.False(t, RoleMember.HasPermission(RoleAdmin))
}
