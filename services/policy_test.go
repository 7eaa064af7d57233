package services

import (
	"testing"

	"wms-audit/models"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	assert.NoError(t, authorize(Actor{UserID: 1, Role: RoleAuditUser}, CapRecordCount))
	assert.NoError(t, authorize(Actor{UserID: 1, Role: RoleAdmin}, CapFinalizeSession))

	err := authorize(Actor{UserID: 1, Role: RoleAuditUser}, CapCreateSession)
	assert.True(t, IsKind(err, KindAuthorization))

	err = authorize(Actor{UserID: 1, Role: "warehouse_clerk"}, CapViewSession)
	assert.True(t, IsKind(err, KindAuthorization))

	err = authorize(Actor{Role: RoleAdmin}, CapViewSession)
	assert.True(t, IsKind(err, KindAuthorization), "anonymous callers are rejected")
}

func TestAuthorizeWarehouseChecksAuditManager(t *testing.T) {
	managerID := uint(7)
	w := &models.Warehouse{Code: "CKY", AuditManagerID: &managerID}

	assert.NoError(t, authorizeWarehouse(Actor{UserID: 7, Role: RoleAuditManager}, w))
	assert.NoError(t, authorizeWarehouse(Actor{UserID: 1, Role: RoleAdmin}, w))
	assert.True(t, IsKind(authorizeWarehouse(Actor{UserID: 8, Role: RoleAuditManager}, w), KindAuthorization))

	unmanaged := &models.Warehouse{Code: "NEW"}
	assert.True(t, IsKind(authorizeWarehouse(Actor{UserID: 7, Role: RoleAuditManager}, unmanaged), KindAuthorization))
}

func TestErrorKindHelpers(t *testing.T) {
	err := newError(KindIncomplete, "%d pending", 3)
	assert.Equal(t, KindIncomplete, KindOf(err))
	assert.Equal(t, "IncompletePrecondition: 3 pending", err.Error())
	assert.Equal(t, ErrorKind(""), KindOf(assert.AnError))
}
