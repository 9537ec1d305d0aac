// Package handlers is the HTTP surface. Handlers read the principal once with
// auth.Current and hand it to the services explicitly.
package handlers

import (
	"net/http"

	"kboard/auth"
	"kboard/models"
	"kboard/services"

	"github.com/gorilla/mux"
)

type Handler struct {
	auth     *services.AuthService
	users    *services.UserService
	projects *services.ProjectService
	tasks    *services.TaskService
}

func NewHandler(authSvc *services.AuthService, users *services.UserService, projects *services.ProjectService, tasks *services.TaskService) *Handler {
	return &Handler{auth: authSvc, users: users, projects: projects, tasks: tasks}
}

// principal returns the authenticated user or writes a 401.
func principal(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	p, err := auth.Current(r.Context())
	if err != nil {
		writeError(w, r, err)
		return models.User{}, false
	}
	return p, true
}

// Register mounts every route on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/auth/login", h.LoginHandler).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", h.RegisterHandler).Methods(http.MethodPost)

	r.HandleFunc("/user", h.GetUserHandler).Methods(http.MethodGet)
	r.HandleFunc("/user", h.UpdateUserHandler).Methods(http.MethodPut)
	r.HandleFunc("/user/password", h.ChangePasswordHandler).Methods(http.MethodPut)

	r.HandleFunc("/project", h.CreateProjectHandler).Methods(http.MethodPost)
	r.HandleFunc("/project/owner", h.ListOwnedProjectsHandler).Methods(http.MethodGet)
	r.HandleFunc("/project/member", h.ListMemberProjectsHandler).Methods(http.MethodGet)
	r.HandleFunc("/project/member", h.JoinProjectHandler).Methods(http.MethodPut)
	r.HandleFunc("/project/{id}", h.GetProjectHandler).Methods(http.MethodGet)
	r.HandleFunc("/project/{id}", h.UpdateProjectHandler).Methods(http.MethodPut)
	r.HandleFunc("/project/{id}", h.DeleteProjectHandler).Methods(http.MethodDelete)
	r.HandleFunc("/project/{id}/member", h.AddMemberHandler).Methods(http.MethodPut)
	r.HandleFunc("/project/{id}/members", h.RemoveMembersHandler).Methods(http.MethodDelete)

	r.HandleFunc("/task", h.CreateTaskHandler).Methods(http.MethodPost)
	r.HandleFunc("/task/info/{taskId}", h.GetTaskHandler).Methods(http.MethodGet)
	r.HandleFunc("/task/{projectId}", h.ListTasksHandler).Methods(http.MethodGet)
	r.HandleFunc("/task/{taskId}", h.UpdateTaskHandler).Methods(http.MethodPut)
	r.HandleFunc("/task/{taskId}", h.DeleteTaskHandler).Methods(http.MethodDelete)

	r.HandleFunc("/v3/api-docs", DocsHandler(r)).Methods(http.MethodGet)
}
