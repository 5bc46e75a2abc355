package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/transfer"
)

type fakePostRepo struct {
	posts  map[int64]*models.ScheduledPost
	nextID int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.ScheduledPost), nextID: 1}
}

func (f *fakePostRepo) seed(post *models.ScheduledPost) int64 {
	id := f.nextID
	f.nextID++
	post.ID = id
	f.posts[id] = post
	return id
}

func (f *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) (int64, error) {
	stored := *post
	return f.seed(&stored), nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	return f.posts[id], nil
}

func (f *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	var out []*models.ScheduledPost
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	p, ok := f.posts[postID]
	return ok && p.UserID == userID, nil
}

func (f *fakePostRepo) ClaimPending(ctx context.Context, postID int64) (bool, error) {
	p, ok := f.posts[postID]
	if !ok || p.Status != models.PostStatusPending {
		return false, nil
	}
	p.Status = models.PostStatusProcessing
	return true, nil
}

func (f *fakePostRepo) UpdateStatusFrom(ctx context.Context, postID int64, from, to string) (bool, error) {
	p, ok := f.posts[postID]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (f *fakePostRepo) UpdatePending(ctx context.Context, post *models.ScheduledPost) (bool, error) {
	p, ok := f.posts[post.ID]
	if !ok || p.Status != models.PostStatusPending {
		return false, nil
	}
	*p = *post
	p.Status = models.PostStatusPending
	return true, nil
}

func (f *fakePostRepo) ListDuePending(ctx context.Context, due time.Time) ([]*models.ScheduledPost, error) {
	var out []*models.ScheduledPost
	for _, p := range f.posts {
		if p.Status == models.PostStatusPending && !p.ScheduledTime.After(due) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) Remove(ctx context.Context, id int64) error {
	delete(f.posts, id)
	return nil
}

type fakeTargetRepo struct {
	targets []*models.PostTarget
}

func (f *fakeTargetRepo) Create(ctx context.Context, tx *sql.Tx, target *models.PostTarget) error {
	f.targets = append(f.targets, target)
	return nil
}

func (f *fakeTargetRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PostTarget, error) {
	var out []*models.PostTarget
	for _, t := range f.targets {
		if t.PostID == postID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTargetRepo) RemoveByPostID(ctx context.Context, tx *sql.Tx, postID int64) error {
	kept := f.targets[:0]
	for _, t := range f.targets {
		if t.PostID != postID {
			kept = append(kept, t)
		}
	}
	f.targets = kept
	return nil
}

func newScheduleFixture() (ScheduleService, *fakePostRepo, *fakeTargetRepo) {
	pr := newFakePostRepo()
	tr := &fakeTargetRepo{}
	svc := NewScheduleService(nil, pr, tr, nil, nil)
	return svc, pr, tr
}

func TestCreateRejectsBadSchedules(t *testing.T) {
	svc, _, _ := newScheduleFixture()
	future := time.Now().Add(time.Hour).Format(scheduledTimeLayout)

	tests := []struct {
		name    string
		req     transfer.SchedulePostRequest
		wantErr error
	}{
		{
			name: "past time",
			req: transfer.SchedulePostRequest{
				ScheduledTime: "2020-01-01T09:00",
				ConnectionIDs: []int64{1},
			},
			wantErr: ErrInvalidScheduleTime,
		},
		{
			name: "no targets",
			req: transfer.SchedulePostRequest{
				ScheduledTime: future,
			},
			wantErr: ErrNoTargets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Create(context.Background(), 1, &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("unparseable time", func(t *testing.T) {
		_, _, err := svc.Create(context.Background(), 1, &transfer.SchedulePostRequest{
			ScheduledTime: "tomorrow at nine",
			ConnectionIDs: []int64{1},
		})
		if err == nil {
			t.Error("Create accepted an unparseable scheduled time")
		}
	})
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	svc, pr, _ := newScheduleFixture()
	id := pr.seed(&models.ScheduledPost{
		UserID:        1,
		Title:         "old title",
		Status:        models.PostStatusProcessing,
		ScheduledTime: time.Now().Add(time.Hour),
	})

	err := svc.Update(context.Background(), 1, id, &transfer.ScheduleUpdateRequest{Title: "new title"})
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("err = %v, want ErrInvalidStateTransition", err)
	}
	if pr.posts[id].Title != "old title" {
		t.Error("claimed post was modified")
	}
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	svc, pr, _ := newScheduleFixture()
	when := time.Now().Add(time.Hour)
	id := pr.seed(&models.ScheduledPost{
		UserID:        1,
		Title:         "old title",
		Body:          "old body",
		Status:        models.PostStatusPending,
		ScheduledTime: when,
	})

	err := svc.Update(context.Background(), 1, id, &transfer.ScheduleUpdateRequest{Title: "new title"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if pr.posts[id].Title != "new title" {
		t.Errorf("Title = %q", pr.posts[id].Title)
	}
	if pr.posts[id].Body != "old body" {
		t.Errorf("Body = %q, untouched fields must survive", pr.posts[id].Body)
	}

	err = svc.Update(context.Background(), 1, id, &transfer.ScheduleUpdateRequest{ScheduledTime: "2020-01-01T09:00"})
	if !errors.Is(err, ErrInvalidScheduleTime) {
		t.Errorf("err = %v, want ErrInvalidScheduleTime for past reschedule", err)
	}
}

func TestCancelRespectsStateMachine(t *testing.T) {
	svc, pr, _ := newScheduleFixture()

	pending := pr.seed(&models.ScheduledPost{UserID: 1, Status: models.PostStatusPending, ScheduledTime: time.Now().Add(time.Hour)})
	claimed := pr.seed(&models.ScheduledPost{UserID: 1, Status: models.PostStatusProcessing, ScheduledTime: time.Now().Add(time.Hour)})

	if err := svc.Cancel(context.Background(), 1, pending); err != nil {
		t.Fatalf("cancelling a pending post failed: %v", err)
	}
	if pr.posts[pending].Status != models.PostStatusCancelled {
		t.Errorf("status = %q, want cancelled", pr.posts[pending].Status)
	}

	if err := svc.Cancel(context.Background(), 1, claimed); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("err = %v, want ErrInvalidStateTransition for a claimed post", err)
	}

	if err := svc.Cancel(context.Background(), 2, pending); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for a foreign post", err)
	}
}

func TestRemoveBlockedWhileProcessing(t *testing.T) {
	svc, pr, tr := newScheduleFixture()

	processing := pr.seed(&models.ScheduledPost{UserID: 1, Status: models.PostStatusProcessing, ScheduledTime: time.Now().Add(time.Hour)})
	if err := svc.Remove(context.Background(), 1, processing); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("err = %v, want ErrInvalidStateTransition", err)
	}

	done := pr.seed(&models.ScheduledPost{UserID: 1, Status: models.PostStatusCompleted, ScheduledTime: time.Now().Add(-time.Hour)})
	tr.targets = append(tr.targets, &models.PostTarget{PostID: done, Platform: models.PlatformTwitter, ConnectionID: 9})

	if err := svc.Remove(context.Background(), 1, done); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, ok := pr.posts[done]; ok {
		t.Error("post still present after Remove")
	}
	if len(tr.targets) != 0 {
		t.Error("targets still present after Remove")
	}
}
