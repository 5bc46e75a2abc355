package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/transfer"
)

type fakeContentRepo struct {
	records   map[int64]*models.ContentRecord
	nextID    int64
	createErr error
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{records: make(map[int64]*models.ContentRecord), nextID: 1}
}

func (f *fakeContentRepo) Create(ctx context.Context, tx *sql.Tx, record *models.ContentRecord) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	id := f.nextID
	f.nextID++
	stored := *record
	stored.ID = id
	f.records[id] = &stored
	return id, nil
}

func (f *fakeContentRepo) GetByID(ctx context.Context, id int64) (*models.ContentRecord, error) {
	return f.records[id], nil
}

func (f *fakeContentRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.ContentRecord, error) {
	var out []*models.ContentRecord
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error) {
	r, ok := f.records[contentID]
	return ok && r.UserID == userID, nil
}

func (f *fakeContentRepo) UpdateStatus(ctx context.Context, status string, contentID int64) error {
	if r, ok := f.records[contentID]; ok {
		r.Status = status
	}
	return nil
}

func (f *fakeContentRepo) Remove(ctx context.Context, id int64) error {
	delete(f.records, id)
	return nil
}

type fakeUsageRepo struct {
	entries []*models.UsageLog
}

func (f *fakeUsageRepo) Create(ctx context.Context, entry *models.UsageLog) (int64, error) {
	f.entries = append(f.entries, entry)
	return int64(len(f.entries)), nil
}

func (f *fakeUsageRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.UsageLog, error) {
	return f.entries, nil
}

// stubGenerator returns a canned result or error without any network.
type stubGenerator struct {
	result *transfer.GenerationResult
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context, req *transfer.GenerationRequest) (*transfer.GenerationResult, error) {
	return s.result, s.err
}

type contentFixture struct {
	svc     ContentService
	credits *fakeCreditRepo
	content *fakeContentRepo
	usage   *fakeUsageRepo
}

func newContentFixture(balance int64, gen GenerationService) *contentFixture {
	credits := &fakeCreditRepo{balance: balance}
	content := newFakeContentRepo()
	usage := &fakeUsageRepo{}
	settings := &stubSettings{}
	svc := NewContentService(content, usage, NewCreditService(credits), gen, settings)
	return &contentFixture{svc: svc, credits: credits, content: content, usage: usage}
}

func articleResult() *transfer.GenerationResult {
	return &transfer.GenerationResult{
		Title:     "Espresso Basics",
		Content:   "<h2>Intro</h2><p>Grind fine, tamp evenly.</p>",
		WordCount: 4,
		Shape:     transfer.ShapeArray,
	}
}

func TestGeneratePipelineHappyPath(t *testing.T) {
	fx := newContentFixture(10, &stubGenerator{result: articleResult()})

	outcome, err := fx.svc.Generate(context.Background(), 1, &transfer.GenerationRequest{
		Topic:  "espresso",
		Length: "medium",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if outcome.CreditsUsed != 3 {
		t.Errorf("CreditsUsed = %d, want 3", outcome.CreditsUsed)
	}
	if fx.credits.balance != 7 {
		t.Errorf("balance = %d, want 7", fx.credits.balance)
	}
	if !outcome.Persisted || outcome.Record == nil {
		t.Fatal("successful generation was not persisted")
	}
	if outcome.Record.Status != models.ContentStatusDraft {
		t.Errorf("Status = %q, want draft", outcome.Record.Status)
	}
	if outcome.Record.PlainText == "" || outcome.Record.PlainText == outcome.Record.Content {
		t.Errorf("PlainText = %q, want stripped copy of content", outcome.Record.PlainText)
	}

	if len(fx.usage.entries) != 1 {
		t.Fatalf("usage log rows = %d, want 1", len(fx.usage.entries))
	}
	entry := fx.usage.entries[0]
	if !entry.Success || entry.CreditsUsed != 3 || entry.ResultTitle != "Espresso Basics" {
		t.Errorf("unexpected usage entry: %+v", entry)
	}
}

func TestGenerateInsufficientCredits(t *testing.T) {
	fx := newContentFixture(2, &stubGenerator{result: articleResult()})

	_, err := fx.svc.Generate(context.Background(), 1, &transfer.GenerationRequest{Length: "medium"})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
	if fx.credits.balance != 2 {
		t.Errorf("balance = %d, want untouched 2", fx.credits.balance)
	}
	if len(fx.content.records) != 0 {
		t.Error("content was persisted despite the rejected debit")
	}
	if len(fx.usage.entries) != 1 || fx.usage.entries[0].Success {
		t.Errorf("want one failed usage entry, got %+v", fx.usage.entries)
	}
	if fx.usage.entries[0].CreditsUsed != 0 {
		t.Errorf("rejected attempt logged CreditsUsed = %d, want 0", fx.usage.entries[0].CreditsUsed)
	}
}

func TestGenerateLogsUsageOnAnyDebitError(t *testing.T) {
	fx := newContentFixture(10, &stubGenerator{result: articleResult()})
	fx.credits.err = errors.New("connection reset")

	_, err := fx.svc.Generate(context.Background(), 1, &transfer.GenerationRequest{Length: "medium"})
	if err == nil {
		t.Fatal("Generate succeeded despite the failing ledger")
	}
	if len(fx.usage.entries) != 1 {
		t.Fatalf("usage rows = %d, want 1: every invocation is logged", len(fx.usage.entries))
	}
	entry := fx.usage.entries[0]
	if entry.Success || entry.CreditsUsed != 0 || entry.ErrorMessage == "" {
		t.Errorf("unexpected usage entry: %+v", entry)
	}
}

func TestGenerateUntilExhausted(t *testing.T) {
	fx := newContentFixture(5, &stubGenerator{result: articleResult()})
	req := &transfer.GenerationRequest{Length: "medium"}

	if _, err := fx.svc.Generate(context.Background(), 1, req); err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
	if fx.credits.balance != 2 {
		t.Fatalf("balance = %d, want 2", fx.credits.balance)
	}

	_, err := fx.svc.Generate(context.Background(), 1, req)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("second generation err = %v, want ErrInsufficientCredits", err)
	}
	if fx.credits.balance != 2 {
		t.Errorf("balance = %d, want 2 after rejected attempt", fx.credits.balance)
	}
	if len(fx.usage.entries) != 2 {
		t.Errorf("usage rows = %d, want one per invocation", len(fx.usage.entries))
	}
}

func TestGenerateRefundsOnHardFailure(t *testing.T) {
	fx := newContentFixture(10, &stubGenerator{err: ErrGenerationFailed})

	_, err := fx.svc.Generate(context.Background(), 1, &transfer.GenerationRequest{Length: "long"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if fx.credits.balance != 10 {
		t.Errorf("balance = %d, want 10 after refund", fx.credits.balance)
	}

	// The ledger shows both sides of the round trip.
	if len(fx.credits.entries) != 2 {
		t.Fatalf("ledger rows = %d, want debit plus refund", len(fx.credits.entries))
	}
	if fx.credits.entries[0].Amount != -5 || fx.credits.entries[1].Amount != 5 {
		t.Errorf("ledger amounts = %d, %d", fx.credits.entries[0].Amount, fx.credits.entries[1].Amount)
	}
	if len(fx.usage.entries) != 1 || fx.usage.entries[0].Success {
		t.Errorf("want one failed usage entry, got %+v", fx.usage.entries)
	}
}

func TestGenerateFallbackIsBilled(t *testing.T) {
	result := articleResult()
	result.Fallback = true
	fx := newContentFixture(10, &stubGenerator{result: result})

	outcome, err := fx.svc.Generate(context.Background(), 1, &transfer.GenerationRequest{Length: "short"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if outcome.CreditsUsed != 2 {
		t.Errorf("CreditsUsed = %d, want 2", outcome.CreditsUsed)
	}
	if fx.credits.balance != 8 {
		t.Errorf("balance = %d, fallback content must still be billed", fx.credits.balance)
	}
	if !outcome.Result.Fallback {
		t.Error("Fallback flag was lost")
	}
}

func TestGenerateSurvivesStorageFailure(t *testing.T) {
	fx := newContentFixture(10, &stubGenerator{result: articleResult()})
	fx.content.createErr = errors.New("connection reset")

	outcome, err := fx.svc.Generate(context.Background(), 1, &transfer.GenerationRequest{Length: "medium"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if outcome.Persisted {
		t.Error("Persisted = true after a storage failure")
	}
	if outcome.Record != nil {
		t.Error("Record set for unpersisted content")
	}
	if outcome.Result == nil || outcome.Result.Content == "" {
		t.Fatal("content was lost along with the storage failure")
	}
	if fx.credits.balance != 7 {
		t.Errorf("balance = %d, want 7: storage failure does not refund", fx.credits.balance)
	}
	if len(fx.usage.entries) != 1 || !fx.usage.entries[0].Success {
		t.Errorf("want one successful usage entry, got %+v", fx.usage.entries)
	}
}

func TestInfoEnforcesOwnership(t *testing.T) {
	fx := newContentFixture(10, &stubGenerator{result: articleResult()})

	id, err := fx.content.Create(context.Background(), nil, &models.ContentRecord{UserID: 1, Title: "mine"})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := fx.svc.Info(context.Background(), 1, id); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := fx.svc.Info(context.Background(), 2, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign lookup err = %v, want ErrNotFound", err)
	}
	if err := fx.svc.Remove(context.Background(), 2, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign remove err = %v, want ErrNotFound", err)
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<h2>Title</h2>\n<p>One <strong>two</strong> three.</p>")
	want := "Title One two three."
	if got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}
}
