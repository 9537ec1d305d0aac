package handlers

import (
	"net/http"

	"kboard/services"
	"kboard/utilities"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler exchanges email and password for a token.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.auth.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utilities.LogInfo("User %s logged in", resp.User.ID)
	writeJSON(w, http.StatusOK, resp)
}

// RegisterHandler accepts a JSON body or a multipart form with an optional
// photo file.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	closeUpload := func() {}

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
		closeUpload = done
		in = services.RegisterInput{
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
			Photo:    photo,
		}
	} else {
		var input RegisterInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}
		in = services.RegisterInput{Name: input.Name, Email: input.Email, Password: input.Password}
	}
	defer closeUpload()

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user.Response())
}
