// Package dummydb provides in-memory repository implementations for tests.
package dummydb

import (
	"sync"

	"github.com/ltoral/escolar/core/event"
	"github.com/ltoral/escolar/core/group"
	"github.com/ltoral/escolar/core/schoolyear"
	"github.com/ltoral/escolar/core/student"
	"github.com/ltoral/escolar/core/teacher"
)

type (
	DB struct {
		event      *eventTable
		group      *groupTable
		student    *studentTable
		teacher    *teacherTable
		schoolYear *schoolYearTable
	}

	eventTable struct {
		sync.RWMutex
		events     map[string]*event.Event
		recipients map[string]*event.Recipient
		types      []event.EventType
		roles      []event.Role
	}

	groupTable struct {
		sync.RWMutex
		groups      map[string]*group.Group
		memberships map[string]*group.StudentGroup
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	teacherTable struct {
		sync.RWMutex
		table map[string]*teacher.Teacher
	}

	schoolYearTable struct {
		sync.RWMutex
		table map[string]*schoolyear.SchoolYear
	}
)

func Open() (*DB, error) {
	db := &DB{
		event: &eventTable{
			events:     make(map[string]*event.Event),
			recipients: make(map[string]*event.Recipient),
		},
		group: &groupTable{
			groups:      make(map[string]*group.Group),
			memberships: make(map[string]*group.StudentGroup),
		},
		student:    &studentTable{table: make(map[string]*student.Student)},
		teacher:    &teacherTable{table: make(map[string]*teacher.Teacher)},
		schoolYear: &schoolYearTable{table: make(map[string]*schoolyear.SchoolYear)},
	}
	return db, nil
}

// SeedEventTypes loads the reference event types served by QueryEventTypes.
func (db *DB) SeedEventTypes(types ...event.EventType) {
	db.event.Lock()
	defer db.event.Unlock()
	db.event.types = append(db.event.types, types...)
}

// SeedRoles loads the reference roles served by QueryRoles.
func (db *DB) SeedRoles(roles ...event.Role) {
	db.event.Lock()
	defer db.event.Unlock()
	db.event.roles = append(db.event.roles, roles...)
}

// SeedSchoolYears loads school years; the fixture decides which one is current.
func (db *DB) SeedSchoolYears(years ...schoolyear.SchoolYear) {
	db.schoolYear.Lock()
	defer db.schoolYear.Unlock()
	for i := range years {
		yr := years[i]
		db.schoolYear.table[yr.ID] = &yr
	}
}

// SeedMemberships loads student-group memberships directly.
func (db *DB) SeedMemberships(sgs ...group.StudentGroup) {
	db.group.Lock()
	defer db.group.Unlock()
	for i := range sgs {
		sg := sgs[i]
		db.group.memberships[sg.ID] = &sg
	}
}
