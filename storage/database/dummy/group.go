package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/group"
)

type groupRepository struct {
	db *groupTable
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db.group}
}

func (repo *groupRepository) QueryGroupsBySchool(ctx context.Context, schoolID string, _ []core.DBOrdering, _ ...core.DBExecutor) ([]group.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	groups := make([]group.Group, 0, len(repo.db.groups))
	for _, grp := range repo.db.groups {
		if grp.SchoolID == schoolID {
			groups = append(groups, *grp)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Grade != groups[j].Grade {
			return groups[i].Grade < groups[j].Grade
		}
		return groups[i].Label < groups[j].Label
	})
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string, _ ...core.DBExecutor) (group.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if grp, ok := repo.db.groups[id]; ok {
		return *grp, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) CheckGroupUniqueness(ctx context.Context, grade int, label, schoolYearID string, excluded []group.Group, _ ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, grp := range repo.db.groups {
		if grp.Deleted || grp.Grade != grade || grp.Label != label || grp.SchoolYearID != schoolYearID {
			continue
		}
		if len(excluded) > 0 && excluded[0].ID == grp.ID {
			continue
		}
		return group.ErrGroupExists
	}
	return nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.Group, _ ...core.DBExecutor) (group.Group, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	grp.ID = uuid.New().String()
	repo.db.groups[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, grp group.Group, _ ...core.DBExecutor) (group.Group, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.groups[grp.ID]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	orig.Grade = grp.Grade
	orig.Label = grp.Label
	orig.StatusID = grp.StatusID
	orig.UpdatedAt = grp.UpdatedAt
	return *orig, nil
}

func (repo *groupRepository) DeleteGroup(ctx context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	grp, ok := repo.db.groups[id]
	if !ok {
		return group.ErrNotFound
	}
	now := time.Now().UTC()
	grp.Deleted = true
	grp.DeletedAt = &now
	grp.StatusID = group.StatusInactive
	grp.UpdatedAt = now
	return nil
}

func (repo *groupRepository) RestoreGroup(ctx context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	grp, ok := repo.db.groups[id]
	if !ok {
		return group.ErrNotFound
	}
	grp.Deleted = false
	grp.DeletedAt = nil
	grp.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *groupRepository) QueryMembershipsBySchool(ctx context.Context, schoolID string, _ ...core.DBExecutor) ([]group.StudentGroup, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sgs []group.StudentGroup
	for _, sg := range repo.db.memberships {
		grp, ok := repo.db.groups[sg.GroupID]
		if !ok || grp.SchoolID != schoolID {
			continue
		}
		sgs = append(sgs, *sg)
	}
	sort.Slice(sgs, func(i, j int) bool { return sgs[i].ID < sgs[j].ID })
	return sgs, nil
}
