package match_item

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	jobrt "github.com/yungbote/admatch-backend/internal/jobs/runtime"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/types"
)

type stubItemRepo struct {
	item *types.Item
	err  error
}

func (s *stubItemRepo) BulkUpsert(ctx context.Context, tx *gorm.DB, items []*types.Item) ([]*types.Item, error) {
	return items, nil
}
func (s *stubItemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Item, error) {
	return s.item, s.err
}
func (s *stubItemRepo) ListByAdvertisement(ctx context.Context, tx *gorm.DB, adID uuid.UUID) ([]*types.Item, error) {
	return nil, nil
}
func (s *stubItemRepo) SetMatched(ctx context.Context, tx *gorm.DB, id uuid.UUID, matched bool) error {
	return nil
}

type stubCatalogRepo struct {
	err error
}

func (s *stubCatalogRepo) SimilarProducts(ctx context.Context, tx *gorm.DB, query string, limit int) ([]repos.Candidate, error) {
	return nil, s.err
}
func (s *stubCatalogRepo) SimilarProductGroups(ctx context.Context, tx *gorm.DB, query string, limit int) ([]repos.Candidate, error) {
	return nil, s.err
}
func (s *stubCatalogRepo) SimilarBrands(ctx context.Context, tx *gorm.DB, query string, limit int) ([]repos.Candidate, error) {
	return nil, s.err
}
func (s *stubCatalogRepo) SeedProducts(ctx context.Context, tx *gorm.DB, names []string) error {
	return nil
}
func (s *stubCatalogRepo) SeedProductGroups(ctx context.Context, tx *gorm.DB, names []string) error {
	return nil
}
func (s *stubCatalogRepo) SeedBrands(ctx context.Context, tx *gorm.DB, names []string) error {
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func matchContext(t *testing.T, itemID uuid.UUID) *jobrt.Context {
	t.Helper()
	raw, _ := json.Marshal(payload.MatchItem{ItemID: itemID})
	job := &types.JobRun{
		JobType:     payload.TypeMatchItem,
		Status:      types.JobStatusRunning,
		Attempts:    1,
		MaxAttempts: 3,
		Payload:     datatypes.JSON(raw),
	}
	return jobrt.NewContext(context.Background(), nil, job, nil, nil)
}

func TestRunCatalogFailureStillSucceeds(t *testing.T) {
	itemID := uuid.New()
	p := New(nil, testLogger(t),
		&stubItemRepo{item: &types.Item{ID: itemID, Description: "Oat Milk"}},
		&stubCatalogRepo{err: errors.New("catalog unavailable")},
		nil)

	jc := matchContext(t, itemID)
	if err := p.Run(jc); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if jc.Job.Status != types.JobStatusSucceeded {
		t.Fatalf("status = %q, want succeeded despite catalog failure", jc.Job.Status)
	}
	var result map[string]any
	if err := json.Unmarshal(jc.Job.Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result["match_error"] == nil {
		t.Fatal("result should record the match error")
	}
}

func TestRunMissingItemIsTerminal(t *testing.T) {
	p := New(nil, testLogger(t), &stubItemRepo{item: nil}, &stubCatalogRepo{}, nil)
	jc := matchContext(t, uuid.New())
	if err := p.Run(jc); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if jc.Job.Status != types.JobStatusFailed {
		t.Fatalf("status = %q, want failed", jc.Job.Status)
	}
}

func TestRunItemLookupErrorRetries(t *testing.T) {
	p := New(nil, testLogger(t), &stubItemRepo{err: errors.New("db down")}, &stubCatalogRepo{}, nil)
	jc := matchContext(t, uuid.New())
	if err := p.Run(jc); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if jc.Job.Status != types.JobStatusQueued {
		t.Fatalf("status = %q, want queued for retry", jc.Job.Status)
	}
}

func TestRoundScore(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.123456, 0.12},
		{0.995, 1.0},
		{0.4449, 0.44},
		{1.0, 1.0},
		{0, 0},
	}
	for _, tc := range cases {
		if got := roundScore(tc.in); got != tc.want {
			t.Errorf("roundScore(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
