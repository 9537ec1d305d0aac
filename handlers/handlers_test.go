package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kboard/apperr"
	"kboard/auth"
	"kboard/models"
	"kboard/services"
	"kboard/services/servicestest"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *servicestest.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := servicestest.NewStore()
	avatars := &servicestest.Avatars{}
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokens := auth.NewTokenService(testSecret, auth.DefaultTokenTTL)
	projects := services.NewProjectService(store, store)
	h := NewHandler(
		services.NewAuthService(store, hasher, tokens, avatars),
		services.NewUserService(store, hasher, avatars),
		projects,
		services.NewTaskService(store, projects),
	)
	router := mux.NewRouter()
	h.Register(router)
	return &testServer{t: t, handler: LoggingMiddleware(AuthMiddleware(tokens, store)(router)), store: store}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) expect(rec *httptest.ResponseRecorder, status int, out any) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			s.t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
}

// signUp registers and logs in a user, returning the token and profile.
func (s *testServer) signUp(name string) (string, models.UserResponse) {
	s.t.Helper()
	email := strings.ToLower(name) + "@example.com"
	s.expect(s.do(http.MethodPost, "/auth/register", "", RegisterInput{Name: name, Email: email, Password: "pw-" + name}), http.StatusCreated, nil)

	var login models.LoginResponse
	s.expect(s.do(http.MethodPost, "/auth/login", "", LoginInput{Email: email, Password: "pw-" + name}), http.StatusOK, &login)
	if login.Token == "" || login.User.Email != email {
		s.t.Fatalf("unexpected login response %+v", login)
	}
	return login.Token, login.User
}

func TestRoadmapOverHTTP(t *testing.T) {
	s := newTestServer(t)
	aTok, _ := s.signUp("Alice")
	bTok, bob := s.signUp("Bob")

	var roadmap models.ProjectResponse
	s.expect(s.do(http.MethodPost, "/project", aTok, ProjectInput{Title: "Roadmap"}), http.StatusCreated, &roadmap)
	if len(roadmap.Members) != 0 {
		t.Fatalf("new project should have no members: %+v", roadmap)
	}
	projectPath := "/project/" + roadmap.ID.String()

	s.expect(s.do(http.MethodGet, projectPath, bTok, nil), http.StatusForbidden, nil)

	var withBob models.ProjectResponse
	s.expect(s.do(http.MethodPut, projectPath+"/member", aTok, AddMemberInput{MemberID: bob.ID}), http.StatusOK, &withBob)
	if len(withBob.Members) != 1 || withBob.Members[0].ID != bob.ID {
		t.Fatalf("bob should be a member: %+v", withBob)
	}
	s.expect(s.do(http.MethodGet, projectPath, bTok, nil), http.StatusOK, nil)

	var errBody ErrorResponse
	s.expect(s.do(http.MethodPut, "/project/member", aTok, JoinProjectInput{ProjectID: roadmap.ID}), http.StatusBadRequest, &errBody)
	if errBody.Message != "User is project's owner." {
		t.Fatalf("unexpected message %q", errBody.Message)
	}

	s.expect(s.do(http.MethodDelete, projectPath, bTok, nil), http.StatusForbidden, &errBody)
	if errBody.Message != apperr.ForbiddenMessage || errBody.Status != http.StatusForbidden {
		t.Fatalf("unexpected body %+v", errBody)
	}
	s.expect(s.do(http.MethodPut, projectPath, bTok, ProjectInput{Title: "Hijack"}), http.StatusForbidden, nil)

	s.expect(s.do(http.MethodDelete, projectPath, aTok, nil), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, projectPath, aTok, nil), http.StatusNotFound, &errBody)
	if errBody.Message != "Project not found with id: "+roadmap.ID.String() {
		t.Fatalf("unexpected message %q", errBody.Message)
	}
}

func TestTasksOverHTTP(t *testing.T) {
	s := newTestServer(t)
	aTok, alice := s.signUp("Alice")
	bTok, bob := s.signUp("Bob")
	eTok, eve := s.signUp("Eve")

	var project models.ProjectResponse
	s.expect(s.do(http.MethodPost, "/project", aTok, ProjectInput{Title: "Roadmap"}), http.StatusCreated, &project)
	s.expect(s.do(http.MethodPut, "/project/member", bTok, JoinProjectInput{ProjectID: project.ID}), http.StatusOK, nil)

	var task models.TaskResponse
	s.expect(s.do(http.MethodPost, "/task", bTok, CreateTaskInput{
		ProjectID: project.ID, Title: "Draft", Description: "write", Color: "#0f0",
		Tags: []string{"docs"}, MembersID: []uuid.UUID{alice.ID, bob.ID},
	}), http.StatusCreated, &task)
	if task.Status != models.StatusPending || len(task.Members) != 2 || task.CreatedBy.ID != bob.ID {
		t.Fatalf("unexpected task %+v", task)
	}

	var errBody ErrorResponse
	s.expect(s.do(http.MethodPost, "/task", aTok, CreateTaskInput{
		ProjectID: project.ID, Title: "Nope", MembersID: []uuid.UUID{eve.ID},
	}), http.StatusNotFound, &errBody)
	if !strings.Contains(errBody.Message, eve.ID.String()) {
		t.Fatalf("missing id not reported: %q", errBody.Message)
	}

	s.expect(s.do(http.MethodGet, "/task/info/"+task.ID.String(), eTok, nil), http.StatusForbidden, nil)

	status := "doing"
	var edited models.TaskResponse
	s.expect(s.do(http.MethodPut, "/task/"+task.ID.String(), aTok, UpdateTaskInput{Status: &status}), http.StatusOK, &edited)
	if edited.Status != models.StatusDoing || edited.Title != "Draft" || len(edited.Members) != 2 {
		t.Fatalf("partial edit changed other fields: %+v", edited)
	}

	var list models.TaskListResponse
	s.expect(s.do(http.MethodGet, "/task/"+project.ID.String()+"?memberId="+bob.ID.String(), aTok, nil), http.StatusOK, &list)
	if list.Total != 1 || list.TotalDoing != 1 || len(list.Pending) != 0 {
		t.Fatalf("unexpected list %+v", list)
	}
	s.expect(s.do(http.MethodGet, "/task/"+project.ID.String()+"?memberId="+eve.ID.String(), aTok, nil), http.StatusOK, &list)
	if list.Total != 0 {
		t.Fatalf("eve has no tasks, got %+v", list)
	}
	s.expect(s.do(http.MethodGet, "/task/"+project.ID.String()+"?memberId=nope", aTok, nil), http.StatusBadRequest, nil)

	s.expect(s.do(http.MethodDelete, "/task/"+task.ID.String(), eTok, nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodDelete, "/task/"+task.ID.String(), bTok, nil), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/task/info/"+task.ID.String(), aTok, nil), http.StatusNotFound, nil)
}

func TestRemoveMembersOverHTTP(t *testing.T) {
	s := newTestServer(t)
	aTok, _ := s.signUp("Alice")
	_, bob := s.signUp("Bob")

	var project models.ProjectResponse
	s.expect(s.do(http.MethodPost, "/project", aTok, ProjectInput{Title: "Roadmap"}), http.StatusCreated, &project)
	path := "/project/" + project.ID.String()
	s.expect(s.do(http.MethodPut, path+"/member", aTok, AddMemberInput{MemberID: bob.ID}), http.StatusOK, nil)

	ghost := uuid.New()
	var errBody ErrorResponse
	s.expect(s.do(http.MethodDelete, path+"/members", aTok, RemoveMembersInput{MembersID: []uuid.UUID{ghost}}), http.StatusNotFound, &errBody)
	if errBody.Message != "Users not found with IDs: ["+ghost.String()+"]" {
		t.Fatalf("unexpected message %q", errBody.Message)
	}

	var after models.ProjectResponse
	s.expect(s.do(http.MethodDelete, path+"/members", aTok, RemoveMembersInput{MembersID: []uuid.UUID{bob.ID}}), http.StatusOK, &after)
	if len(after.Members) != 0 {
		t.Fatalf("bob should be removed: %+v", after)
	}
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	tok, me := s.signUp("Ana")

	var profile models.UserResponse
	s.expect(s.do(http.MethodGet, "/user", tok, nil), http.StatusOK, &profile)
	if profile.ID != me.ID {
		t.Fatalf("unexpected profile %+v", profile)
	}

	name := "Ana Maria"
	s.expect(s.do(http.MethodPut, "/user", tok, UpdateUserInput{Name: &name}), http.StatusOK, &profile)
	if profile.Name != name {
		t.Fatalf("name not updated: %+v", profile)
	}

	s.expect(s.do(http.MethodPut, "/user/password", tok, ChangePasswordInput{Password: "next"}), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodPost, "/auth/login", "", LoginInput{Email: me.Email, Password: "pw-Ana"}), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodPost, "/auth/login", "", LoginInput{Email: me.Email, Password: "next"}), http.StatusOK, nil)
}

func TestRegisterMultipartWithPhoto(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("name", "Ana")
	mw.WriteField("email", "ana@example.com")
	mw.WriteField("password", "pw")
	fw, _ := mw.CreateFormFile("photo", "ana.png")
	fw.Write([]byte("\x89PNG"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var user models.UserResponse
	s.expect(rec, http.StatusCreated, &user)
	if user.PhotoURL != "https://cdn.example.com/ana.png" {
		t.Fatalf("unexpected photo url %q", user.PhotoURL)
	}
}

func TestLoginErrors(t *testing.T) {
	s := newTestServer(t)
	s.signUp("Ana")

	var errBody ErrorResponse
	s.expect(s.do(http.MethodPost, "/auth/login", "", LoginInput{Email: "ana@example.com", Password: "wrong"}), http.StatusUnauthorized, &errBody)
	if errBody.Message != "Invalid email or password." {
		t.Fatalf("unexpected message %q", errBody.Message)
	}
	s.expect(s.do(http.MethodPost, "/auth/register", "", RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "x"}), http.StatusBadRequest, &errBody)
	if errBody.Message != "Email already registered." {
		t.Fatalf("unexpected message %q", errBody.Message)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.expect(rec, http.StatusBadRequest, nil)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	s := newTestServer(t)
	var errBody ErrorResponse
	s.expect(s.do(http.MethodGet, "/project/owner", "", nil), http.StatusUnauthorized, &errBody)
	if errBody.Message != "Token is missing." {
		t.Fatalf("unexpected message %q", errBody.Message)
	}
}

func TestDocsListsRoutes(t *testing.T) {
	s := newTestServer(t)
	var docs struct {
		Routes []RouteDoc `json:"routes"`
	}
	s.expect(s.do(http.MethodGet, "/v3/api-docs", "", nil), http.StatusOK, &docs)

	found := map[string]RouteDoc{}
	for _, r := range docs.Routes {
		found[r.Path] = r
	}
	login, ok := found["/auth/login"]
	if !ok || !login.Public {
		t.Fatalf("login route missing or not public: %+v", docs.Routes)
	}
	project, ok := found["/project/{id}"]
	if !ok || project.Public || len(project.Methods) != 3 {
		t.Fatalf("unexpected project route %+v", project)
	}
}
