package event

import (
	"time"

	"github.com/ltoral/escolar/core"
)

// Event statuses
const (
	StatusScheduled = 1
	StatusCancelled = 2
)

type (
	// Event is a calendar entry owned by a school. Events are all-day:
	// StartsAt/EndsAt are normalized to UTC midnight on the way in.
	Event struct {
		ID           string     `json:"id"`
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		SchoolID     string     `json:"school_id"`
		SchoolYearID string     `json:"school_year_id"`
		EventTypeID  int        `json:"event_type_id"`
		StartsAt     time.Time  `json:"starts_at"` // UTC midnight
		EndsAt       time.Time  `json:"ends_at"`   // UTC midnight
		AllDay       bool       `json:"all_day"`
		StatusID     int        `json:"status_id"`
		CreatedBy    string     `json:"created_by"`
		Recipients   []Recipient `json:"recipients"`
		Deleted      bool       `json:"delete_flag"`
		DeletedAt    *time.Time `json:"deleted_at"`
		CreatedAt    time.Time  `json:"created_at"` // UTC
		UpdatedAt    time.Time  `json:"updated_at"` // UTC
	}

	// Recipient ties a role to an event. Recipient rows have no identity
	// worth preserving: every event update replaces them wholesale, so their
	// ids are not stable across edits.
	Recipient struct {
		ID      string `json:"id"`
		EventID string `json:"event_id"`
		RoleID  int    `json:"role_id"`
	}

	EventType struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"` // hex, may be empty
	}

	Role struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	// CalendarData is everything the calendar screen needs in one response.
	CalendarData struct {
		Events     []Event     `json:"events"`
		EventTypes []EventType `json:"event_types"`
		Roles      []Role      `json:"roles"`
	}
)

// NewEvent contains information needed to create a new Event. Dates arrive as
// strings (`YYYY-MM-DD` or ISO-with-time) and are normalized by the service.
type NewEvent struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description"`
	SchoolYearID   string `json:"school_year_id" validate:"required"`
	EventTypeID    int    `json:"event_type_id" validate:"required,min=1"`
	StartDate      string `json:"start_date" validate:"required"`
	EndDate        string `json:"end_date"`
	RecipientRoles []int  `json:"recipient_roles" validate:"omitempty,dive,min=1"`
}

func (ne *NewEvent) Validate() error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	return core.Validate.Struct(ne)
}

// UpdateEvent defines what may be modified on an existing Event. The owning
// school and school year are immutable after creation. RecipientRoles always
// replaces the previous recipient list; nil keeps an empty list too.
type UpdateEvent struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description"`
	EventTypeID    int    `json:"event_type_id" validate:"required,min=1"`
	StartDate      string `json:"start_date" validate:"required"`
	EndDate        string `json:"end_date"`
	StatusID       int    `json:"status_id" validate:"omitempty,min=1,max=2"`
	RecipientRoles []int  `json:"recipient_roles" validate:"omitempty,dive,min=1"`
}

func (ue *UpdateEvent) Validate() error {
	ue.Title = core.CleanString(ue.Title)
	ue.Description = core.CleanString(ue.Description)
	return core.Validate.Struct(ue)
}

// QueryFilter scopes calendar fetches. SchoolID is always set from the
// session; SchoolYearID is optional.
type QueryFilter struct {
	SchoolID     string
	SchoolYearID string
}
