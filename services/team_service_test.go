package services

import (
	"context"
	"testing"

	"wms-audit/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignTeamMemberRejectsSecondActiveAssignment(t *testing.T) {
	f := newFixture(t)

	_, err := f.teams.AssignTeamMember(context.Background(), f.manager, AssignTeamMemberInput{
		ManagerID:   f.manager.UserID,
		AuditUserID: f.auditor.UserID,
		WarehouseID: f.warehouse.ID,
	})
	assert.True(t, IsKind(err, KindConflict), "got %v", err)
}

func TestRemovedMemberCanBeReassigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.teams.ListTeam(ctx, f.manager, ListTeamInput{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, team, 1)

	removed, err := f.teams.RemoveTeamMember(ctx, f.manager, team[0].ID)
	require.NoError(t, err)
	assert.False(t, removed.IsActive)
	require.NotNil(t, removed.DeactivatedBy)
	assert.Equal(t, f.manager.UserID, *removed.DeactivatedBy)

	_, err = f.teams.RemoveTeamMember(ctx, f.manager, team[0].ID)
	assert.True(t, IsKind(err, KindConflict))

	again, err := f.teams.AssignTeamMember(ctx, f.manager, AssignTeamMemberInput{
		ManagerID:   f.manager.UserID,
		AuditUserID: f.auditor.UserID,
		WarehouseID: f.warehouse.ID,
	})
	require.NoError(t, err)
	assert.True(t, again.IsActive)

	all, err := f.teams.ListTeam(ctx, f.manager, ListTeamInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2, "deactivated assignments stay on record")
}

func TestAdminListsEveryTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := models.Warehouse{Code: "BDG", Name: "Warehouse BDG", AuditManagerID: &f.site.UserID}
	require.NoError(t, f.db.Create(&other).Error)
	_, err := f.teams.AssignTeamMember(ctx, f.site, AssignTeamMemberInput{
		ManagerID: f.site.UserID, AuditUserID: f.outsider.UserID, WarehouseID: other.ID,
	})
	require.NoError(t, err)

	all, err := f.teams.ListTeam(ctx, f.admin, ListTeamInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.teams.ListTeam(ctx, f.admin, ListTeamInput{ManagerID: f.site.UserID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, other.ID, mine[0].WarehouseID)

	own, err := f.teams.ListTeam(ctx, f.manager, ListTeamInput{})
	require.NoError(t, err)
	require.Len(t, own, 1, "managers without a filter see only their own team")
	assert.Equal(t, f.warehouse.ID, own[0].WarehouseID)
}

func TestAssignTeamMemberAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := AssignTeamMemberInput{ManagerID: f.manager.UserID, AuditUserID: f.outsider.UserID, WarehouseID: f.warehouse.ID}

	_, err := f.teams.AssignTeamMember(ctx, f.auditor, in)
	assert.True(t, IsKind(err, KindAuthorization), "audit users cannot manage teams")

	_, err = f.teams.AssignTeamMember(ctx, f.site, in)
	assert.True(t, IsKind(err, KindAuthorization), "a manager cannot assign into another manager's team")

	in.ManagerID = f.site.UserID
	_, err = f.teams.AssignTeamMember(ctx, f.site, in)
	assert.True(t, IsKind(err, KindAuthorization), "site manager is not the warehouse audit manager")

	in.ManagerID = f.manager.UserID
	_, err = f.teams.AssignTeamMember(ctx, f.admin, in)
	assert.NoError(t, err, "admins may act on behalf of the audit manager")
}

func TestAssignTeamMemberRejectsAdmins(t *testing.T) {
	f := newFixture(t)

	_, err := f.teams.AssignTeamMember(context.Background(), f.manager, AssignTeamMemberInput{
		ManagerID:   f.manager.UserID,
		AuditUserID: f.admin.UserID,
		WarehouseID: f.warehouse.ID,
	})
	assert.True(t, IsKind(err, KindValidation))
}

func TestListAssignedWarehouses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	second := f.newWarehouse(t, "JKT", 1)

	warehouses, err := f.teams.ListAssignedWarehouses(ctx, f.auditor, f.auditor.UserID)
	require.NoError(t, err)
	require.Len(t, warehouses, 2)
	assert.Equal(t, "CKY", warehouses[0].Code)
	assert.Equal(t, second.ID, warehouses[1].ID)

	none, err := f.teams.ListAssignedWarehouses(ctx, f.manager, f.outsider.UserID)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.teams.ListAssignedWarehouses(ctx, f.outsider, f.auditor.UserID)
	assert.True(t, IsKind(err, KindAuthorization))
}
