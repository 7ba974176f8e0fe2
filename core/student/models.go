package student

import (
	"context"
	"time"

	"github.com/ltoral/escolar/core"
)

// Student statuses
const (
	StatusEnrolled  = 1
	StatusInactive  = 2
	StatusGraduated = 3
)

// Gender references
const (
	GenderMale   = 1
	GenderFemale = 2
)

type (
	Student struct {
		ID           string     `json:"id"`
		FirstName    string     `json:"first_name"`
		PaternalName string     `json:"paternal_name"`
		MaternalName string     `json:"maternal_name"`
		// CURP is the 18-char Mexican population registry key, the natural
		// key for a student. Unique among non-deleted rows only.
		CURP      string     `json:"curp"`
		BirthDate time.Time  `json:"birth_date"`
		GenderID  int        `json:"gender_id"`
		Email     string     `json:"email"`
		Phone     string     `json:"phone"`
		Address   string     `json:"address"`
		SchoolID  string     `json:"school_id"`
		StatusID  int        `json:"status_id"`
		Deleted   bool       `json:"delete_flag"`
		DeletedAt *time.Time `json:"deleted_at"`
		CreatedAt time.Time  `json:"created_at"` // UTC
		UpdatedAt time.Time  `json:"updated_at"` // UTC
	}

	// Collection partitions one school fetch by delete flag.
	Collection struct {
		Active  []Student `json:"active"`
		Deleted []Student `json:"deleted"`
	}
)

func (s Student) FullName() string {
	name := s.FirstName + " " + s.PaternalName
	if s.MaternalName != "" {
		name += " " + s.MaternalName
	}
	return name
}

// Partition splits rows by delete flag; every row lands in exactly one side.
func Partition(students []Student) Collection {
	col := Collection{Active: []Student{}, Deleted: []Student{}}
	for _, s := range students {
		if s.Deleted {
			col.Deleted = append(col.Deleted, s)
		} else {
			col.Active = append(col.Active, s)
		}
	}
	return col
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	FirstName    string `json:"first_name" validate:"required"`
	PaternalName string `json:"paternal_name" validate:"required"`
	MaternalName string `json:"maternal_name"`
	CURP         string `json:"curp" validate:"required,curp"`
	BirthDate    string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	GenderID     int    `json:"gender_id" validate:"required,min=1,max=2"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	StatusID     int    `json:"status_id" validate:"omitempty,min=1,max=3"`
}

func (ns *NewStudent) Validate(ctx context.Context, svc *Service) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.PaternalName = core.CleanString(ns.PaternalName)
	ns.MaternalName = core.CleanString(ns.MaternalName)
	ns.CURP = core.CleanString(ns.CURP)
	ns.CURP = upper(ns.CURP)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkCURPUniqueness(ctx, ns.CURP)
}

// UpdateStudent defines what may be modified on an existing Student. The
// owning school is immutable after creation.
type UpdateStudent struct {
	FirstName    string `json:"first_name" validate:"required"`
	PaternalName string `json:"paternal_name" validate:"required"`
	MaternalName string `json:"maternal_name"`
	CURP         string `json:"curp" validate:"required,curp"`
	BirthDate    string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	GenderID     int    `json:"gender_id" validate:"required,min=1,max=2"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	StatusID     int    `json:"status_id" validate:"omitempty,min=1,max=3"`
}

func (us *UpdateStudent) Validate(ctx context.Context, orig Student, svc *Service) error {
	us.FirstName = core.CleanString(us.FirstName)
	us.PaternalName = core.CleanString(us.PaternalName)
	us.MaternalName = core.CleanString(us.MaternalName)
	us.CURP = core.CleanString(us.CURP)
	us.CURP = upper(us.CURP)
	us.Email = core.CleanString(us.Email, true /* lower */)

	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	return svc.checkCURPUniqueness(ctx, us.CURP, orig)
}
