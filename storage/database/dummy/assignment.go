package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.New().String()
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter assignment.QueryFilter, ordering ...core.DBOrdering) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]assignment.Assignment, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		if filter.CourseID != "" && a.CourseID != filter.CourseID {
			continue
		}
		if filter.CreatedBy != "" && a.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.PublishedOnly && !a.IsPublished() {
			continue
		}
		assignments = append(assignments, *a)
	}

	byDueAsc := len(ordering) > 0 && ordering[0].Field == "due_at" && ordering[0].Ascending
	sort.Slice(assignments, func(i, j int) bool {
		if byDueAsc {
			return assignments[i].DueAt.Before(assignments[j].DueAt)
		}
		return assignments[i].CreatedAt.After(assignments[j].CreatedAt)
	})
	return assignments, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
