package handlers

import (
	"net/http"

	"kboard/apperr"
	"kboard/models"

	"github.com/google/uuid"
)

type ProjectInput struct {
	Title string `json:"title"`
}

type JoinProjectInput struct {
	ProjectID uuid.UUID `json:"projectId"`
}

type AddMemberInput struct {
	MemberID uuid.UUID `json:"memberId"`
}

type RemoveMembersInput struct {
	MembersID []uuid.UUID `json:"membersId"`
}

func (h *Handler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input ProjectInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.projects.Create(r.Context(), p, input.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project.Response())
}

func (h *Handler) ListOwnedProjectsHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	projects, err := h.projects.Owned(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProjectResponses(projects))
}

func (h *Handler) ListMemberProjectsHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	projects, err := h.projects.Participating(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProjectResponses(projects))
}

func (h *Handler) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.projects.Get(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project.Response())
}

func (h *Handler) UpdateProjectHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var input ProjectInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.projects.Rename(r.Context(), p, id, input.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project.Response())
}

func (h *Handler) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.projects.Delete(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// JoinProjectHandler adds the caller to a project's members.
func (h *Handler) JoinProjectHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input JoinProjectInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	if input.ProjectID == uuid.Nil {
		writeError(w, r, apperr.New(apperr.KindBadRequest, "projectId cannot be null"))
		return
	}
	project, err := h.projects.Join(r.Context(), p, input.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project.Response())
}

// AddMemberHandler lets the owner add another user.
func (h *Handler) AddMemberHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var input AddMemberInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	if input.MemberID == uuid.Nil {
		writeError(w, r, apperr.New(apperr.KindBadRequest, "memberId cannot be null"))
		return
	}
	project, err := h.projects.AddMember(r.Context(), p, id, input.MemberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project.Response())
}

func (h *Handler) RemoveMembersHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var input RemoveMembersInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.projects.RemoveMembers(r.Context(), p, id, input.MembersID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project.Response())
}
