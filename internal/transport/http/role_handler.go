package http

import (
	"net/http"

	"iam/internal/dto"
	"iam/internal/service"
)

type RoleHandler struct {
	Roles      service.RoleService
	Privileges service.PrivilegeService
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role, err := h.Roles.CreateRole(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.Roles.GetRoles(r.Context(), listQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	role, err := h.Roles.GetRole(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role, err := h.Roles.UpdateRole(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Roles.DeleteRole(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SwitchRole changes the caller's own active role; it is not an admin
// operation.
func (h *RoleHandler) SwitchRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := userFromContext(r.Context())
	var req dto.SwitchRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Roles.SwitchActiveRole(r.Context(), caller.UserID, req.RoleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RoleHandler) ListPrivileges(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	privileges, err := h.Privileges.GetRolePrivileges(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, privileges)
}

func (h *RoleHandler) GrantPrivilege(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	privilegeID, ok := pathID(w, r, "privilegeId")
	if !ok {
		return
	}
	if err := h.Privileges.AssignPrivilegeToRole(r.Context(), roleID, privilegeID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) RevokePrivilege(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	privilegeID, ok := pathID(w, r, "privilegeId")
	if !ok {
		return
	}
	if err := h.Privileges.RemovePrivilegeFromRole(r.Context(), roleID, privilegeID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
