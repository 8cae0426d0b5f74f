// Package policy centralizes the role-based authorization rules that govern
// which actor may see or mutate which resource. Decisions are pure predicates
// over (actor role, actor identity, target ownership); the only I/O is the
// parent/child relation lookup needed to resolve a parent's visibility.
package policy

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/user"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionGrade  Action = "grade"
)

type Resource string

const (
	ResourceSubject       Resource = "subject"
	ResourceCourse        Resource = "course"
	ResourceCourseContent Resource = "course_content" // modules, lessons, resources
	ResourceLearningTool  Resource = "learning_tool"
	ResourceEnrollment    Resource = "enrollment"
	ResourceAssignment    Resource = "assignment"
	ResourceSubmission    Resource = "submission"
)

type Effect int

const (
	Deny Effect = iota
	Allow
	// AllowOwn admits the action only when the actor owns the target:
	// teachers own courses (and everything under them), students own their
	// enrollments and submissions, parents "own" their children's records.
	AllowOwn
)

// Scope is the visibility window applied to list endpoints. Listing never
// fails with a permission error; it returns the scoped (possibly empty) set.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeAll
	ScopeOwn
	ScopeOwnCourses
	ScopeChildren
)

// Target carries the ownership attributes of the resource under check.
// Zero values are fine for attributes irrelevant to the (role, resource) pair.
type Target struct {
	CourseTeacherID  string // owning teacher of the (enclosing) course
	StudentID        string // owning student of an enrollment or submission
	Published        bool   // assignment visibility to students
	ActivelyEnrolled bool   // whether the actor has an active enrollment in the target course
}

// ParentLookup resolves the parent/child relation.
type ParentLookup interface {
	IsChildOf(parentID, childID string) (bool, error)
}

type Engine struct {
	parents ParentLookup
}

func NewEngine(parents ParentLookup) *Engine {
	return &Engine{parents: parents}
}

type ruleKey struct {
	role     string
	action   Action
	resource Resource
}

// rules maps (role, action, resource) to an effect for the non-staff roles.
// admin and admin_teacher are unrestricted and short-circuit before lookup.
// Missing entries deny.
var rules = map[ruleKey]Effect{
	// teacher
	{user.RoleTeacher, ActionRead, ResourceSubject}:         Allow,
	{user.RoleTeacher, ActionRead, ResourceCourse}:          Allow,
	{user.RoleTeacher, ActionCreate, ResourceCourse}:        AllowOwn, // only for themselves
	{user.RoleTeacher, ActionUpdate, ResourceCourse}:        AllowOwn,
	{user.RoleTeacher, ActionDelete, ResourceCourse}:        AllowOwn,
	{user.RoleTeacher, ActionRead, ResourceCourseContent}:   Allow,
	{user.RoleTeacher, ActionCreate, ResourceCourseContent}: AllowOwn,
	{user.RoleTeacher, ActionUpdate, ResourceCourseContent}: AllowOwn,
	{user.RoleTeacher, ActionDelete, ResourceCourseContent}: AllowOwn,
	{user.RoleTeacher, ActionRead, ResourceLearningTool}:    Allow,
	{user.RoleTeacher, ActionRead, ResourceEnrollment}:      AllowOwn,
	{user.RoleTeacher, ActionCreate, ResourceEnrollment}:    Allow, // may enroll any student
	{user.RoleTeacher, ActionUpdate, ResourceEnrollment}:    AllowOwn,
	{user.RoleTeacher, ActionDelete, ResourceEnrollment}:    AllowOwn,
	{user.RoleTeacher, ActionRead, ResourceAssignment}:      AllowOwn,
	{user.RoleTeacher, ActionCreate, ResourceAssignment}:    AllowOwn,
	{user.RoleTeacher, ActionUpdate, ResourceAssignment}:    AllowOwn,
	{user.RoleTeacher, ActionDelete, ResourceAssignment}:    AllowOwn,
	{user.RoleTeacher, ActionRead, ResourceSubmission}:      AllowOwn,
	{user.RoleTeacher, ActionGrade, ResourceSubmission}:     AllowOwn,

	// student
	{user.RoleStudent, ActionRead, ResourceSubject}:       Allow,
	{user.RoleStudent, ActionRead, ResourceCourse}:        Allow,
	{user.RoleStudent, ActionRead, ResourceCourseContent}: Allow,
	{user.RoleStudent, ActionRead, ResourceLearningTool}:  Allow,
	{user.RoleStudent, ActionRead, ResourceEnrollment}:    AllowOwn,
	{user.RoleStudent, ActionCreate, ResourceEnrollment}:  Allow, // self only; binding enforced at the service
	{user.RoleStudent, ActionUpdate, ResourceEnrollment}:  AllowOwn,
	{user.RoleStudent, ActionRead, ResourceAssignment}:    AllowOwn, // published + actively enrolled
	{user.RoleStudent, ActionRead, ResourceSubmission}:    AllowOwn,
	{user.RoleStudent, ActionCreate, ResourceSubmission}:  AllowOwn,

	// parent: read-only, scoped to children; may enroll a child
	{user.RoleParent, ActionRead, ResourceSubject}:      Allow,
	{user.RoleParent, ActionRead, ResourceCourse}:       Allow,
	{user.RoleParent, ActionRead, ResourceLearningTool}: Allow,
	{user.RoleParent, ActionRead, ResourceEnrollment}:   AllowOwn,
	{user.RoleParent, ActionCreate, ResourceEnrollment}: AllowOwn,
	{user.RoleParent, ActionRead, ResourceSubmission}:   AllowOwn,
}

// Can looks up the rule table. Staff roles are always allowed.
func Can(role string, action Action, res Resource) Effect {
	for _, staff := range user.StaffRoles {
		if role == staff {
			return Allow
		}
	}
	return rules[ruleKey{role, action, res}]
}

// Authorize decides whether actor may perform action on the target resource.
// A rule violation yields a PermissionDenied error, never a silent filter;
// msg overrides the default error message when provided.
func (e *Engine) Authorize(actor user.User, action Action, res Resource, tgt Target, msg ...string) error {
	deny := func() error {
		if len(msg) > 0 {
			return core.NewPermissionDeniedError(msg[0])
		}
		return core.NewPermissionDeniedError(fmt.Sprintf("you don't have permission to %s this %s", action, res))
	}

	switch Can(actor.Role, action, res) {
	case Allow:
		return nil
	case AllowOwn:
		owned, err := e.owns(actor, res, tgt)
		if err != nil {
			return errors.Wrap(err, "resolving ownership")
		}
		if owned {
			return nil
		}
		return deny()
	}
	return deny()
}

func (e *Engine) owns(actor user.User, res Resource, tgt Target) (bool, error) {
	switch {
	case actor.IsTeacher():
		return tgt.CourseTeacherID == actor.ID, nil
	case actor.IsStudent():
		if res == ResourceAssignment {
			return tgt.Published && tgt.ActivelyEnrolled, nil
		}
		return tgt.StudentID == actor.ID, nil
	case actor.IsParent():
		if tgt.StudentID == "" {
			return false, nil
		}
		return e.parents.IsChildOf(actor.ID, tgt.StudentID)
	}
	return false, nil
}

// ListScope returns the visibility window for list endpoints of res.
func ListScope(actor user.User, res Resource) Scope {
	if actor.IsStaff() {
		return ScopeAll
	}
	switch actor.Role {
	case user.RoleStudent:
		if res == ResourceEnrollment || res == ResourceSubmission || res == ResourceAssignment {
			return ScopeOwn
		}
	case user.RoleTeacher:
		return ScopeOwnCourses
	case user.RoleParent:
		if res == ResourceEnrollment || res == ResourceSubmission {
			return ScopeChildren
		}
	}
	return ScopeNone
}

// enrollmentPatchFields is the per-role field allow-list for enrollment
// updates. Roles absent from the map (students of other records, parents)
// may not patch at all; staff roles bypass the check.
var enrollmentPatchFields = map[string][]string{
	user.RoleStudent: {"progress"},
	user.RoleTeacher: {"grade", "is_active", "completion_date"},
}

// CheckEnrollmentPatch rejects the entire patch when any key in the payload
// falls outside the actor role's allow-list. None of the fields are applied
// on rejection.
func CheckEnrollmentPatch(actor user.User, keys []string) error {
	if actor.IsStaff() {
		return nil
	}
	allowed, ok := enrollmentPatchFields[actor.Role]
	if !ok {
		return core.NewPermissionDeniedError("you don't have permission to update this enrollment")
	}
	for _, key := range keys {
		var found bool
		for _, fld := range allowed {
			if key == fld {
				found = true
				break
			}
		}
		if !found {
			return core.NewPermissionDeniedError(fmt.Sprintf("you don't have permission to update the %s field", key))
		}
	}
	return nil
}
