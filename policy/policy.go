// Package policy decides whether a principal may act on a project or one of
// its tasks. Every function is pure: it reads already-fetched values and never
// touches storage.
//
// Task access has no ACL of its own; callers check the task's parent project.
package policy

import (
	"kboard/apperr"
	"kboard/models"

	"github.com/google/uuid"
)

// IsOwner reports whether p owns project. The zero id never owns anything.
func IsOwner(p models.User, project models.Project) bool {
	return p.ID != uuid.Nil && project.Owner.ID == p.ID
}

// IsMember reports whether p is in project's member set.
func IsMember(p models.User, project models.Project) bool {
	if p.ID == uuid.Nil {
		return false
	}
	for _, m := range project.Members {
		if m.ID == p.ID {
			return true
		}
	}
	return false
}

// CanAccessProject gates reading a project and reading or writing its tasks.
func CanAccessProject(p models.User, project models.Project) bool {
	return IsOwner(p, project) || IsMember(p, project)
}

// CanManageProject gates renaming, deleting and removing members.
func CanManageProject(p models.User, project models.Project) bool {
	return IsOwner(p, project)
}

// RequireAccess returns a Forbidden error unless p can access project.
func RequireAccess(p models.User, project models.Project) error {
	if !CanAccessProject(p, project) {
		return apperr.Forbidden()
	}
	return nil
}

// RequireManage returns a Forbidden error unless p owns project.
func RequireManage(p models.User, project models.Project) error {
	if !CanManageProject(p, project) {
		return apperr.Forbidden()
	}
	return nil
}

// CanJoinAsMember rejects adding the owner to its own member set.
func CanJoinAsMember(p models.User, project models.Project) error {
	if IsOwner(p, project) {
		return apperr.New(apperr.KindInvalidOperation, "User is project's owner.")
	}
	return nil
}

// ValidateResponsibleSet returns the candidate ids that are neither the owner
// nor a current member, in input order and without repeats. An empty result
// means every candidate may be assigned.
func ValidateResponsibleSet(candidateIDs []uuid.UUID, project models.Project) []uuid.UUID {
	eligible := Eligible(project)
	seen := make(map[uuid.UUID]struct{}, len(candidateIDs))
	var missing []uuid.UUID
	for _, id := range candidateIDs {
		if _, ok := eligible[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}

// Eligible indexes the users a task in project may be assigned to: the owner
// and the current members.
func Eligible(project models.Project) map[uuid.UUID]models.User {
	out := make(map[uuid.UUID]models.User, len(project.Members)+1)
	if project.Owner.ID != uuid.Nil {
		out[project.Owner.ID] = project.Owner
	}
	for _, m := range project.Members {
		if m.ID != uuid.Nil {
			out[m.ID] = m
		}
	}
	return out
}

// DuplicateIDs returns the ids listed more than once, in order of their
// second occurrence.
func DuplicateIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]int, len(ids))
	var dups []uuid.UUID
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
