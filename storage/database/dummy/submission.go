package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.AssignmentID == sub.AssignmentID && existing.StudentID == sub.StudentID {
			return submission.Submission{}, submission.ErrAlreadySubmitted
		}
	}
	sub.ID = uuid.New().String()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return *sub, nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) GetSubmissionByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.table {
		if sub.AssignmentID == assignmentID && sub.StudentID == studentID {
			return *sub, nil
		}
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, filter submission.QueryFilter) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]submission.Submission, 0, len(repo.db.table))
	for _, sub := range repo.db.table {
		if filter.AssignmentID != "" && sub.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && sub.StudentID != filter.StudentID {
			continue
		}
		subs = append(subs, *sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
	return subs, nil
}

func (repo *submissionRepository) UpdateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sub.ID]; !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	repo.db.table[sub.ID] = &sub
	return sub, nil
}
