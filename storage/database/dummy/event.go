package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/event"
)

type eventRepository struct {
	db *eventTable
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter event.QueryFilter, _ ...core.DBExecutor) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	evts := make([]event.Event, 0, len(repo.db.events))
	for _, evt := range repo.db.events {
		if evt.Deleted || evt.SchoolID != filter.SchoolID {
			continue
		}
		if filter.SchoolYearID != "" && evt.SchoolYearID != filter.SchoolYearID {
			continue
		}
		evts = append(evts, *evt)
	}
	sort.Slice(evts, func(i, j int) bool { return evts[i].StartsAt.Before(evts[j].StartsAt) })
	return evts, nil
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string, _ ...core.DBExecutor) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if evt, ok := repo.db.events[id]; ok {
		return *evt, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) CreateEvent(ctx context.Context, evt event.Event, _ ...core.DBExecutor) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	evt.ID = uuid.New().String()
	repo.db.events[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, evt event.Event, _ ...core.DBExecutor) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.events[evt.ID]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	orig.Title = evt.Title
	orig.Description = evt.Description
	orig.EventTypeID = evt.EventTypeID
	orig.StartsAt = evt.StartsAt
	orig.EndsAt = evt.EndsAt
	orig.AllDay = evt.AllDay
	orig.StatusID = evt.StatusID
	orig.UpdatedAt = evt.UpdatedAt
	return *orig, nil
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	evt, ok := repo.db.events[id]
	if !ok {
		return event.ErrNotFound
	}
	now := time.Now().UTC()
	evt.Deleted = true
	evt.DeletedAt = &now
	evt.UpdatedAt = now
	return nil
}

func (repo *eventRepository) RestoreEvent(ctx context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	evt, ok := repo.db.events[id]
	if !ok {
		return event.ErrNotFound
	}
	evt.Deleted = false
	evt.DeletedAt = nil
	evt.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *eventRepository) QueryEventTypes(ctx context.Context, _ ...core.DBExecutor) ([]event.EventType, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	types := make([]event.EventType, len(repo.db.types))
	copy(types, repo.db.types)
	return types, nil
}

func (repo *eventRepository) QueryRoles(ctx context.Context, _ ...core.DBExecutor) ([]event.Role, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	roles := make([]event.Role, len(repo.db.roles))
	copy(roles, repo.db.roles)
	return roles, nil
}

func (repo *eventRepository) QueryRecipients(ctx context.Context, eventIDs []string, _ ...core.DBExecutor) ([]event.Recipient, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}
	var recips []event.Recipient
	for _, r := range repo.db.recipients {
		if wanted[r.EventID] {
			recips = append(recips, *r)
		}
	}
	sort.Slice(recips, func(i, j int) bool { return recips[i].RoleID < recips[j].RoleID })
	return recips, nil
}

func (repo *eventRepository) CreateRecipients(ctx context.Context, eventID string, roleIDs []int, _ ...core.DBExecutor) ([]event.Recipient, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	recips := make([]event.Recipient, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		r := event.Recipient{ID: uuid.New().String(), EventID: eventID, RoleID: roleID}
		repo.db.recipients[r.ID] = &r
		recips = append(recips, r)
	}
	return recips, nil
}

func (repo *eventRepository) DeleteRecipients(ctx context.Context, eventID string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, r := range repo.db.recipients {
		if r.EventID == eventID {
			delete(repo.db.recipients, id)
		}
	}
	return nil
}
