package handlers

import (
	"net/http"

	"kboard/services"
)

type UpdateUserInput struct {
	Name *string `json:"name"`
}

type ChangePasswordInput struct {
	Password string `json:"password"`
}

// GetUserHandler returns the authenticated user's profile.
func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Response())
}

// UpdateUserHandler edits name and photo. Photos require a multipart form.
func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var in services.UpdateUserInput
	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			writeError(w, r, err)
			return
		}
		photo, done, err := formUpload(r, "photo")
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer done()
		in = services.UpdateUserInput{Name: formValue(r, "name"), Photo: photo}
	} else {
		var input UpdateUserInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}
		in = services.UpdateUserInput{Name: input.Name}
	}

	user, err := h.users.Update(r.Context(), p, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Response())
}

func (h *Handler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input ChangePasswordInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.users.ChangePassword(r.Context(), p, input.Password); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
