package store_page

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	jobrt "github.com/yungbote/admatch-backend/internal/jobs/runtime"
	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/repos/testutil"
	"github.com/yungbote/admatch-backend/internal/services"
	"github.com/yungbote/admatch-backend/internal/types"
)

type noopBucket struct{}

func (noopBucket) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}
func (noopBucket) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, nil
}
func (noopBucket) ListKeys(ctx context.Context, prefix string) ([]string, error) { return nil, nil }
func (noopBucket) DeletePrefix(ctx context.Context, prefix string) error         { return nil }

type readyCapture struct {
	ready []uuid.UUID
}

func (r *readyCapture) AdvertisementReady(adID uuid.UUID) { r.ready = append(r.ready, adID) }

func storePageContext(t *testing.T, body payload.StorePage) *jobrt.Context {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	job := &types.JobRun{
		JobType:     payload.TypeStorePage,
		Status:      types.JobStatusRunning,
		Attempts:    1,
		MaxAttempts: 2,
		Payload:     datatypes.JSON(raw),
	}
	return jobrt.NewContext(context.Background(), nil, job, nil, nil)
}

func TestStorePageRedeliveryConverges(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	retailer := testutil.SeedRetailer(t, ctx, tx, testutil.UniqueName("retailer"))
	ad := testutil.SeedAdvertisement(t, ctx, tx, retailer.ID, 1)

	adRepo := repos.NewAdvertisementRepo(tx, log)
	pageRepo := repos.NewPageRepo(tx, log)
	itemRepo := repos.NewItemRepo(tx, log)
	jobRunRepo := repos.NewJobRunRepo(tx, log)
	jobService := services.NewJobService(log, jobRunRepo)
	notify := &readyCapture{}

	p := New(tx, log, adRepo, pageRepo, itemRepo, jobService, noopBucket{}, notify)

	body := payload.StorePage{
		AdvertisementID: ad.ID,
		Image:           payload.FileBlob{Data: []byte("jpeg-bytes"), Mime: "image/jpeg"},
		Index:           0,
		Entries: []payload.ScannedEntry{
			{Name: "Milk 1L", Price: 1.09},
			{Name: "Butter 250g", Price: 2.49},
		},
	}

	jc := storePageContext(t, body)
	if err := p.Run(jc); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if jc.Job.Status != types.JobStatusSucceeded {
		t.Fatalf("first run status = %q, want succeeded", jc.Job.Status)
	}

	// At-least-once delivery: the identical payload arrives a second time.
	jc2 := storePageContext(t, body)
	if err := p.Run(jc2); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if jc2.Job.Status != types.JobStatusSucceeded {
		t.Fatalf("second run status = %q, want succeeded", jc2.Job.Status)
	}

	pageCount, err := pageRepo.CountByAdvertisement(ctx, nil, ad.ID)
	if err != nil {
		t.Fatalf("count pages: %v", err)
	}
	if pageCount != 1 {
		t.Fatalf("page count = %d, want 1 after redelivery", pageCount)
	}

	items, err := itemRepo.ListByAdvertisement(ctx, nil, ad.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("item count = %d, want 2 after redelivery", len(items))
	}

	got, err := adRepo.GetByID(ctx, nil, ad.ID)
	if err != nil {
		t.Fatalf("reload ad: %v", err)
	}
	if got.Status != types.AdvertisementStatusNeedsReview {
		t.Fatalf("status = %q, want needs_review once all pages landed", got.Status)
	}
	if len(notify.ready) != 1 {
		t.Fatalf("AdvertisementReady fired %d times, want exactly 1", len(notify.ready))
	}
}

func TestStorePageBelowTotalDoesNotFlip(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	retailer := testutil.SeedRetailer(t, ctx, tx, testutil.UniqueName("retailer"))
	ad := testutil.SeedAdvertisement(t, ctx, tx, retailer.ID, 3)

	adRepo := repos.NewAdvertisementRepo(tx, log)
	pageRepo := repos.NewPageRepo(tx, log)
	itemRepo := repos.NewItemRepo(tx, log)
	jobService := services.NewJobService(log, repos.NewJobRunRepo(tx, log))
	notify := &readyCapture{}

	p := New(tx, log, adRepo, pageRepo, itemRepo, jobService, noopBucket{}, notify)

	jc := storePageContext(t, payload.StorePage{
		AdvertisementID: ad.ID,
		Image:           payload.FileBlob{Data: []byte("jpeg-bytes"), Mime: "image/jpeg"},
		Index:           0,
		Entries:         []payload.ScannedEntry{{Name: "Milk", Price: 1}},
	})
	if err := p.Run(jc); err != nil {
		t.Fatalf("run: %v", err)
	}
	if jc.Job.Status != types.JobStatusSucceeded {
		t.Fatalf("status = %q, want succeeded", jc.Job.Status)
	}

	got, err := adRepo.GetByID(ctx, nil, ad.ID)
	if err != nil {
		t.Fatalf("reload ad: %v", err)
	}
	if got.Status != types.AdvertisementStatusIntake {
		t.Fatalf("status = %q, want intake while pages are outstanding", got.Status)
	}
	if len(notify.ready) != 0 {
		t.Fatal("AdvertisementReady must not fire before the last page")
	}
}

func TestStorePageFansOutOneMatchJobPerItem(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	retailer := testutil.SeedRetailer(t, ctx, tx, testutil.UniqueName("retailer"))
	ad := testutil.SeedAdvertisement(t, ctx, tx, retailer.ID, 1)

	p := New(tx, log,
		repos.NewAdvertisementRepo(tx, log),
		repos.NewPageRepo(tx, log),
		repos.NewItemRepo(tx, log),
		services.NewJobService(log, repos.NewJobRunRepo(tx, log)),
		noopBucket{}, &readyCapture{})

	jc := storePageContext(t, payload.StorePage{
		AdvertisementID: ad.ID,
		Image:           payload.FileBlob{Data: []byte("jpeg-bytes"), Mime: "image/jpeg"},
		Index:           0,
		Entries: []payload.ScannedEntry{
			{Name: "A", Price: 1},
			{Name: "B", Price: 2},
			{Name: "C", Price: 3},
		},
	})
	if err := p.Run(jc); err != nil {
		t.Fatalf("run: %v", err)
	}

	var matchJobs int64
	if err := tx.WithContext(ctx).Model(&types.JobRun{}).
		Where("job_type = ? AND queue = ?", payload.TypeMatchItem, payload.QueueMatch).
		Where("entity_id IN (SELECT id FROM item WHERE page_id IN (SELECT id FROM page WHERE advertisement_id = ?))", ad.ID).
		Count(&matchJobs).Error; err != nil {
		t.Fatalf("count match jobs: %v", err)
	}
	if matchJobs != 3 {
		t.Fatalf("match jobs = %d, want one per item (3)", matchJobs)
	}
}
