package policy

import (
	"errors"
	"slices"
	"testing"

	"kboard/apperr"
	"kboard/models"

	"github.com/google/uuid"
)

type fixture struct {
	owner    models.User
	member   models.User
	stranger models.User
	project  models.Project
}

func newFixture() fixture {
	owner := models.User{ID: uuid.New(), Email: "owner@example.com"}
	member := models.User{ID: uuid.New(), Email: "member@example.com"}
	stranger := models.User{ID: uuid.New(), Email: "stranger@example.com"}
	return fixture{
		owner:    owner,
		member:   member,
		stranger: stranger,
		project: models.Project{
			ID:      uuid.New(),
			Title:   "Roadmap",
			Owner:   owner,
			Members: []models.User{member},
		},
	}
}

func TestAccessMatrix(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name                          string
		principal                     models.User
		owner, member, access, manage bool
	}{
		{"owner", f.owner, true, false, true, true},
		{"member", f.member, false, true, true, false},
		{"stranger", f.stranger, false, false, false, false},
		{"zero principal", models.User{}, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOwner(tt.principal, f.project); got != tt.owner {
				t.Errorf("IsOwner = %v, want %v", got, tt.owner)
			}
			if got := IsMember(tt.principal, f.project); got != tt.member {
				t.Errorf("IsMember = %v, want %v", got, tt.member)
			}
			if got := CanAccessProject(tt.principal, f.project); got != tt.access {
				t.Errorf("CanAccessProject = %v, want %v", got, tt.access)
			}
			if got := CanManageProject(tt.principal, f.project); got != tt.manage {
				t.Errorf("CanManageProject = %v, want %v", got, tt.manage)
			}
		})
	}
}

func TestIdentityComparesByValue(t *testing.T) {
	f := newFixture()
	// A separately built value with the same id is the same principal.
	parsed := uuid.MustParse(f.owner.ID.String())
	if !IsOwner(models.User{ID: parsed}, f.project) {
		t.Fatal("expected owner match by id value")
	}
}

func TestZeroOwnerDoesNotGrantZeroPrincipal(t *testing.T) {
	project := models.Project{ID: uuid.New()}
	if CanAccessProject(models.User{}, project) {
		t.Fatal("zero principal must not access a project with a zero owner")
	}
}

func TestRequireAccessAndManage(t *testing.T) {
	f := newFixture()

	if err := RequireAccess(f.member, f.project); err != nil {
		t.Fatalf("member access: %v", err)
	}
	err := RequireAccess(f.stranger, f.project)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != apperr.ForbiddenMessage {
		t.Fatalf("unexpected forbidden message: %v", err)
	}

	if err := RequireManage(f.owner, f.project); err != nil {
		t.Fatalf("owner manage: %v", err)
	}
	if err := RequireManage(f.member, f.project); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected Forbidden for member manage, got %v", err)
	}
}

func TestCanJoinAsMember(t *testing.T) {
	f := newFixture()
	err := CanJoinAsMember(f.owner, f.project)
	if !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Fatalf("expected InvalidOperation for owner, got %v", err)
	}
	if err.Error() != "User is project's owner." {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := CanJoinAsMember(f.stranger, f.project); err != nil {
		t.Fatalf("stranger should be able to join: %v", err)
	}
}

func TestValidateResponsibleSet(t *testing.T) {
	f := newFixture()
	ghost := uuid.New()
	other := uuid.New()

	tests := []struct {
		name       string
		candidates []uuid.UUID
		want       []uuid.UUID
	}{
		{"empty", nil, nil},
		{"owner and member", []uuid.UUID{f.owner.ID, f.member.ID}, nil},
		{"stranger", []uuid.UUID{f.member.ID, f.stranger.ID}, []uuid.UUID{f.stranger.ID}},
		{"unknown ids keep order", []uuid.UUID{ghost, f.owner.ID, other}, []uuid.UUID{ghost, other}},
		{"repeated unknown reported once", []uuid.UUID{ghost, ghost}, []uuid.UUID{ghost}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateResponsibleSet(tt.candidates, f.project)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValidateResponsibleSetAfterMemberRemoval(t *testing.T) {
	f := newFixture()
	f.project.Members = nil
	got := ValidateResponsibleSet([]uuid.UUID{f.member.ID}, f.project)
	if !slices.Equal(got, []uuid.UUID{f.member.ID}) {
		t.Fatalf("expected removed member to be ineligible, got %v", got)
	}
}

func TestEligible(t *testing.T) {
	f := newFixture()
	eligible := Eligible(f.project)
	if len(eligible) != 2 {
		t.Fatalf("expected owner and member, got %d entries", len(eligible))
	}
	if _, ok := eligible[f.stranger.ID]; ok {
		t.Fatal("stranger must not be eligible")
	}
}

func TestDuplicateIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := DuplicateIDs([]uuid.UUID{a, b, a, a, b})
	if !slices.Equal(got, []uuid.UUID{a, b}) {
		t.Fatalf("expected [a b], got %v", got)
	}
	if got := DuplicateIDs([]uuid.UUID{a, b}); len(got) != 0 {
		t.Fatalf("expected no duplicates, got %v", got)
	}
}
