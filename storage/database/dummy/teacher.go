package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/teacher"
)

type teacherRepository struct {
	db *teacherTable
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db.teacher}
}

func (repo *teacherRepository) QueryTeachersBySchool(ctx context.Context, schoolID string, _ []core.DBOrdering, _ ...core.DBExecutor) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(repo.db.table))
	for _, tch := range repo.db.table {
		if tch.SchoolID == schoolID {
			teachers = append(teachers, *tch)
		}
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].PaternalName != teachers[j].PaternalName {
			return teachers[i].PaternalName < teachers[j].PaternalName
		}
		return teachers[i].FirstName < teachers[j].FirstName
	})
	return teachers, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id string, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tch, ok := repo.db.table[id]; ok {
		return *tch, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded []teacher.Teacher, _ ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, tch := range repo.db.table {
		if tch.Deleted || tch.Email != email {
			continue
		}
		if len(excluded) > 0 && excluded[0].ID == tch.ID {
			continue
		}
		return teacher.ErrEmailExists
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tch.ID = uuid.New().String()
	repo.db.table[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[tch.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	orig.FirstName = tch.FirstName
	orig.PaternalName = tch.PaternalName
	orig.MaternalName = tch.MaternalName
	orig.Email = tch.Email
	orig.Phone = tch.Phone
	orig.StatusID = tch.StatusID
	orig.UpdatedAt = tch.UpdatedAt
	return *orig, nil
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	tch, ok := repo.db.table[id]
	if !ok {
		return teacher.ErrNotFound
	}
	now := time.Now().UTC()
	tch.Deleted = true
	tch.DeletedAt = &now
	tch.UpdatedAt = now
	return nil
}

func (repo *teacherRepository) RestoreTeacher(ctx context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	tch, ok := repo.db.table[id]
	if !ok {
		return teacher.ErrNotFound
	}
	tch.Deleted = false
	tch.DeletedAt = nil
	tch.UpdatedAt = time.Now().UTC()
	return nil
}
