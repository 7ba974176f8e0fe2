package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) QueryStudentsBySchool(ctx context.Context, schoolID string, _ []core.DBOrdering, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.table))
	for _, std := range repo.db.table {
		if std.SchoolID == schoolID {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].PaternalName != students[j].PaternalName {
			return students[i].PaternalName < students[j].PaternalName
		}
		return students[i].FirstName < students[j].FirstName
	})
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) CheckCURPUniqueness(ctx context.Context, curp string, excluded []student.Student, _ ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, std := range repo.db.table {
		if std.Deleted || std.CURP != curp {
			continue
		}
		if len(excluded) > 0 && excluded[0].ID == std.ID {
			continue
		}
		return student.ErrCURPExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = uuid.New().String()
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	orig.FirstName = std.FirstName
	orig.PaternalName = std.PaternalName
	orig.MaternalName = std.MaternalName
	orig.CURP = std.CURP
	orig.BirthDate = std.BirthDate
	orig.GenderID = std.GenderID
	orig.Email = std.Email
	orig.Phone = std.Phone
	orig.Address = std.Address
	orig.StatusID = std.StatusID
	orig.UpdatedAt = std.UpdatedAt
	return *orig, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	std, ok := repo.db.table[id]
	if !ok {
		return student.ErrNotFound
	}
	now := time.Now().UTC()
	std.Deleted = true
	std.DeletedAt = &now
	std.UpdatedAt = now
	return nil
}

func (repo *studentRepository) RestoreStudent(ctx context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	std, ok := repo.db.table[id]
	if !ok {
		return student.ErrNotFound
	}
	std.Deleted = false
	std.DeletedAt = nil
	std.UpdatedAt = time.Now().UTC()
	return nil
}
