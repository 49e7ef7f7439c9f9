package http

import (
	"net/http"

	"iam/internal/dto"
	"iam/internal/service"
)

type PrivilegeHandler struct {
	Privileges service.PrivilegeService
}

func (h *PrivilegeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePrivilegeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	privilege, err := h.Privileges.CreatePrivilege(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, privilege)
}

func (h *PrivilegeHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.Privileges.GetPrivileges(r.Context(), listQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PrivilegeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	privilege, err := h.Privileges.GetPrivilege(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, privilege)
}

func (h *PrivilegeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdatePrivilegeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	privilege, err := h.Privileges.UpdatePrivilege(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, privilege)
}

func (h *PrivilegeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Privileges.DeletePrivilege(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
