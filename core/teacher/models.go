package teacher

import (
	"context"
	"time"

	"github.com/ltoral/escolar/core"
)

// Teacher statuses
const (
	StatusActive   = 1
	StatusInactive = 2
)

type (
	Teacher struct {
		ID           string     `json:"id"`
		FirstName    string     `json:"first_name"`
		PaternalName string     `json:"paternal_name"`
		MaternalName string     `json:"maternal_name"`
		Email        string     `json:"email"`
		Phone        string     `json:"phone"`
		SchoolID     string     `json:"school_id"`
		StatusID     int        `json:"status_id"`
		Deleted      bool       `json:"delete_flag"`
		DeletedAt    *time.Time `json:"deleted_at"`
		CreatedAt    time.Time  `json:"created_at"` // UTC
		UpdatedAt    time.Time  `json:"updated_at"` // UTC
	}

	// Collection partitions one school fetch by delete flag.
	Collection struct {
		Active  []Teacher `json:"active"`
		Deleted []Teacher `json:"deleted"`
	}
)

func (t Teacher) FullName() string {
	name := t.FirstName + " " + t.PaternalName
	if t.MaternalName != "" {
		name += " " + t.MaternalName
	}
	return name
}

// Partition splits rows by delete flag; every row lands in exactly one side.
func Partition(teachers []Teacher) Collection {
	col := Collection{Active: []Teacher{}, Deleted: []Teacher{}}
	for _, t := range teachers {
		if t.Deleted {
			col.Deleted = append(col.Deleted, t)
		} else {
			col.Active = append(col.Active, t)
		}
	}
	return col
}

// NewTeacher contains information needed to register a new Teacher.
type NewTeacher struct {
	FirstName    string `json:"first_name" validate:"required"`
	PaternalName string `json:"paternal_name" validate:"required"`
	MaternalName string `json:"maternal_name"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone"`
	StatusID     int    `json:"status_id" validate:"omitempty,min=1,max=2"`
}

func (nt *NewTeacher) Validate(ctx context.Context, svc *Service) error {
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.PaternalName = core.CleanString(nt.PaternalName)
	nt.MaternalName = core.CleanString(nt.MaternalName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)

	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(ctx, nt.Email)
}

// UpdateTeacher defines what may be modified on an existing Teacher. The
// owning school is immutable after creation.
type UpdateTeacher struct {
	FirstName    string `json:"first_name" validate:"required"`
	PaternalName string `json:"paternal_name" validate:"required"`
	MaternalName string `json:"maternal_name"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone"`
	StatusID     int    `json:"status_id" validate:"omitempty,min=1,max=2"`
}

func (ut *UpdateTeacher) Validate(ctx context.Context, orig Teacher, svc *Service) error {
	ut.FirstName = core.CleanString(ut.FirstName)
	ut.PaternalName = core.CleanString(ut.PaternalName)
	ut.MaternalName = core.CleanString(ut.MaternalName)
	ut.Email = core.CleanString(ut.Email, true /* lower */)

	if err := core.Validate.Struct(ut); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(ctx, ut.Email, orig)
}
