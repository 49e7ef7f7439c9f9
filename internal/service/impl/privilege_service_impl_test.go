package impl

import (
	"context"
	"errors"
	"testing"

	"iam/internal/domain"
	"iam/internal/dto"
)

type privilegeFixture struct {
	svc        *PrivilegeServiceImpl
	privileges *fakePrivilegeRepo
	roles      *fakeRoleRepo
}

func newPrivilegeFixture(t *testing.T) *privilegeFixture {
	t.Helper()
	privileges := newFakePrivilegeRepo()
	roles := newFakeRoleRepo()
	return &privilegeFixture{
		svc:        NewPrivilegeService(privileges, roles),
		privileges: privileges,
		roles:      roles,
	}
}

func TestCreatePrivilegeRejectsDuplicateName(t *testing.T) {
	f := newPrivilegeFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePrivilege(ctx, dto.CreatePrivilegeRequest{
		PrivilegeName:  "report:export",
		Description:    "Can export reports",
		PrivilegeGroup: domain.GroupSettings,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if p.PrivilegeName != "report:export" {
		t.Fatalf("unexpected privilege: %+v", p)
	}

	if _, err := f.svc.CreatePrivilege(ctx, dto.CreatePrivilegeRequest{PrivilegeName: "report:export"}); !errors.Is(err, domain.ErrDuplicatePrivilegeName) {
		t.Fatalf("expected ErrDuplicatePrivilegeName, got %v", err)
	}
}

func TestUpdatePrivilegeAppliesPartialPatch(t *testing.T) {
	f := newPrivilegeFixture(t)
	ctx := context.Background()
	p := f.privileges.addPrivilege("report:export", domain.GroupSettings)

	desc := "Can export all reports"
	updated, err := f.svc.UpdatePrivilege(ctx, p.ID, dto.UpdatePrivilegeRequest{Description: &desc})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if updated.Description != desc {
		t.Fatalf("description not applied: %q", updated.Description)
	}
	if updated.PrivilegeName != "report:export" || updated.PrivilegeGroup != domain.GroupSettings {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	if _, err := f.svc.UpdatePrivilege(ctx, newID(), dto.UpdatePrivilegeRequest{Description: &desc}); !errors.Is(err, domain.ErrPrivilegeNotFound) {
		t.Fatalf("expected ErrPrivilegeNotFound, got %v", err)
	}
}

func TestUpdatePrivilegeRejectsDuplicateName(t *testing.T) {
	f := newPrivilegeFixture(t)
	ctx := context.Background()
	f.privileges.addPrivilege("report:export", domain.GroupSettings)
	other := f.privileges.addPrivilege("report:read", domain.GroupSettings)

	taken := "report:export"
	if _, err := f.svc.UpdatePrivilege(ctx, other.ID, dto.UpdatePrivilegeRequest{PrivilegeName: &taken}); !errors.Is(err, domain.ErrDuplicatePrivilegeName) {
		t.Fatalf("expected ErrDuplicatePrivilegeName, got %v", err)
	}
	// Renaming to the current name is a no-op, not a conflict.
	same := "report:read"
	if _, err := f.svc.UpdatePrivilege(ctx, other.ID, dto.UpdatePrivilegeRequest{PrivilegeName: &same}); err != nil {
		t.Fatalf("self rename returned error: %v", err)
	}
}

func TestAssignPrivilegeToRole(t *testing.T) {
	f := newPrivilegeFixture(t)
	ctx := context.Background()
	role := f.roles.addRole("AUDITOR", domain.RoleTypeCustom, false)
	p := f.privileges.addPrivilege("report:export", domain.GroupSettings)

	if err := f.svc.AssignPrivilegeToRole(ctx, role.ID, p.ID); err != nil {
		t.Fatalf("assign returned error: %v", err)
	}
	// A duplicate active grant is rejected, not ignored.
	if err := f.svc.AssignPrivilegeToRole(ctx, role.ID, p.ID); !errors.Is(err, domain.ErrPrivilegeAlreadyGranted) {
		t.Fatalf("expected ErrPrivilegeAlreadyGranted, got %v", err)
	}

	if err := f.svc.AssignPrivilegeToRole(ctx, newID(), p.ID); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if err := f.svc.AssignPrivilegeToRole(ctx, role.ID, newID()); !errors.Is(err, domain.ErrPrivilegeNotFound) {
		t.Fatalf("expected ErrPrivilegeNotFound, got %v", err)
	}
}

func TestRemovePrivilegeFromRoleIsNotIdempotent(t *testing.T) {
	f := newPrivilegeFixture(t)
	ctx := context.Background()
	role := f.roles.addRole("AUDITOR", domain.RoleTypeCustom, false)
	p := f.privileges.addPrivilege("report:export", domain.GroupSettings)

	if err := f.svc.AssignPrivilegeToRole(ctx, role.ID, p.ID); err != nil {
		t.Fatalf("assign returned error: %v", err)
	}
	if err := f.svc.RemovePrivilegeFromRole(ctx, role.ID, p.ID); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if err := f.svc.RemovePrivilegeFromRole(ctx, role.ID, p.ID); !errors.Is(err, domain.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestGetRolePrivileges(t *testing.T) {
	f := newPrivilegeFixture(t)
	ctx := context.Background()
	role := f.roles.addRole("AUDITOR", domain.RoleTypeCustom, false)
	a := f.privileges.addPrivilege("report:export", domain.GroupSettings)
	b := f.privileges.addPrivilege("report:read", domain.GroupSettings)

	for _, p := range []domain.PrivilegeID{a.ID, b.ID} {
		if err := f.svc.AssignPrivilegeToRole(ctx, role.ID, p); err != nil {
			t.Fatalf("assign returned error: %v", err)
		}
	}

	got, err := f.svc.GetRolePrivileges(ctx, role.ID)
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 privileges, got %d", len(got))
	}

	if _, err := f.svc.GetRolePrivileges(ctx, newID()); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestDeletePrivilege(t *testing.T) {
	f := newPrivilegeFixture(t)
	ctx := context.Background()
	p := f.privileges.addPrivilege("report:export", domain.GroupSettings)

	if err := f.svc.DeletePrivilege(ctx, p.ID); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if _, err := f.svc.GetPrivilege(ctx, p.ID); !errors.Is(err, domain.ErrPrivilegeNotFound) {
		t.Fatalf("expected ErrPrivilegeNotFound, got %v", err)
	}
	if err := f.svc.DeletePrivilege(ctx, p.ID); !errors.Is(err, domain.ErrPrivilegeNotFound) {
		t.Fatalf("expected ErrPrivilegeNotFound for repeat delete, got %v", err)
	}
}
