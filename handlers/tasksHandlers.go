package handlers

import (
	"net/http"

	"kboard/apperr"
	"kboard/services"

	"github.com/google/uuid"
)

type CreateTaskInput struct {
	ProjectID   uuid.UUID   `json:"projectId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Color       string      `json:"color"`
	Tags        []string    `json:"tags"`
	MembersID   []uuid.UUID `json:"membersId"`
}

// UpdateTaskInput is a partial edit; absent fields keep their value.
type UpdateTaskInput struct {
	Status      *string      `json:"status"`
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Color       *string      `json:"color"`
	Tags        *[]string    `json:"tags"`
	Responsible *[]uuid.UUID `json:"responsible"`
}

func (h *Handler) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input CreateTaskInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	if input.ProjectID == uuid.Nil {
		writeError(w, r, apperr.New(apperr.KindBadRequest, "projectId cannot be null"))
		return
	}
	task, err := h.tasks.Create(r.Context(), p, services.CreateTaskInput{
		ProjectID:     input.ProjectID,
		Title:         input.Title,
		Description:   input.Description,
		Status:        input.Status,
		Color:         input.Color,
		Tags:          input.Tags,
		ResponsibleID: input.MembersID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task.Response())
}

// ListTasksHandler returns a project's tasks grouped by status, optionally
// only those assigned to ?memberId=.
func (h *Handler) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	projectID, err := pathID(r, "projectId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var memberID *uuid.UUID
	if raw := r.URL.Query().Get("memberId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, apperr.Newf(apperr.KindBadRequest, "Invalid memberId: %s", raw))
			return
		}
		memberID = &id
	}

	list, err := h.tasks.List(r.Context(), p, projectID, memberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "taskId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	task, err := h.tasks.Get(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task.Response())
}

func (h *Handler) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "taskId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var input UpdateTaskInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	task, err := h.tasks.Update(r.Context(), p, id, services.UpdateTaskInput{
		Title:         input.Title,
		Description:   input.Description,
		Status:        input.Status,
		Color:         input.Color,
		Tags:          input.Tags,
		ResponsibleID: input.Responsible,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task.Response())
}

func (h *Handler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "taskId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.tasks.Delete(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
