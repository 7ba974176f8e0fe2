package group

import (
	"context"
	"time"

	"github.com/ltoral/escolar/core"
)

// Group statuses
const (
	StatusActive    = 1
	StatusInactive  = 2
	StatusCompleted = 3
)

// Membership statuses. A membership's status is independent of the group's
// status and of all three delete flags involved.
const (
	MembershipActive   = 1
	MembershipInactive = 2
)

type (
	Group struct {
		ID           string     `json:"id"`
		Grade        int        `json:"grade"`
		Label        string     `json:"label"`
		SchoolID     string     `json:"school_id"`
		SchoolYearID string     `json:"school_year_id"`
		StatusID     int        `json:"status_id"`
		Deleted      bool       `json:"delete_flag"`
		DeletedAt    *time.Time `json:"deleted_at"`
		CreatedAt    time.Time  `json:"created_at"` // UTC
		UpdatedAt    time.Time  `json:"updated_at"` // UTC
	}

	// StudentGroup is the membership join row between a student and a group,
	// with its own lifecycle.
	StudentGroup struct {
		ID        string     `json:"id"`
		StudentID string     `json:"student_id"`
		GroupID   string     `json:"group_id"`
		StatusID  int        `json:"status_id"`
		Deleted   bool       `json:"delete_flag"`
		DeletedAt *time.Time `json:"deleted_at"`
	}

	// Collection partitions one school fetch by delete flag.
	Collection struct {
		Active  []Group `json:"active"`
		Deleted []Group `json:"deleted"`
	}
)

// Partition splits rows by delete flag; every row lands in exactly one side.
func Partition(groups []Group) Collection {
	col := Collection{Active: []Group{}, Deleted: []Group{}}
	for _, g := range groups {
		if g.Deleted {
			col.Deleted = append(col.Deleted, g)
		} else {
			col.Active = append(col.Active, g)
		}
	}
	return col
}

// IsActiveMembership reconciles the three independent lifecycles that decide
// whether a student is currently in a group: the membership row's own status
// and delete flag, the group's status and delete flag, and the student's
// delete flag.
func IsActiveMembership(sg StudentGroup, g Group, studentDeleted bool) bool {
	if sg.Deleted || sg.StatusID != MembershipActive {
		return false
	}
	if g.Deleted || g.StatusID != StatusActive {
		return false
	}
	return !studentDeleted
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Grade        int    `json:"grade" validate:"required,min=1,max=12"`
	Label        string `json:"label" validate:"required"`
	SchoolYearID string `json:"school_year_id" validate:"required"`
	StatusID     int    `json:"status_id" validate:"omitempty,min=1,max=3"`
}

func (ng *NewGroup) Validate(ctx context.Context, svc *Service) error {
	ng.Label = core.CleanString(ng.Label, true /* lower */)
	if err := core.Validate.Struct(ng); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, ng.Grade, ng.Label, ng.SchoolYearID)
}

// UpdateGroup defines what may be modified on an existing Group. The owning
// school is immutable after creation.
type UpdateGroup struct {
	Grade    int    `json:"grade" validate:"required,min=1,max=12"`
	Label    string `json:"label" validate:"required"`
	StatusID int    `json:"status_id" validate:"omitempty,min=1,max=3"`
}

func (ug *UpdateGroup) Validate(ctx context.Context, orig Group, svc *Service) error {
	ug.Label = core.CleanString(ug.Label, true /* lower */)
	if err := core.Validate.Struct(ug); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, ug.Grade, ug.Label, orig.SchoolYearID, orig)
}
