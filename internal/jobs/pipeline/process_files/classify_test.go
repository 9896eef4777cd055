package process_files

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	jobrt "github.com/yungbote/admatch-backend/internal/jobs/runtime"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/types"
)

func blob(mime string) payload.FileBlob {
	return payload.FileBlob{Data: []byte("x"), Mime: mime, Size: 1}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		files   []payload.FileBlob
		want    batchKind
		wantErr bool
	}{
		{"single pdf", []payload.FileBlob{blob("application/pdf")}, batchPDFs, false},
		{"multiple pdfs", []payload.FileBlob{blob("application/pdf"), blob("application/pdf")}, batchPDFs, false},
		{"images", []payload.FileBlob{blob("image/jpeg"), blob("image/png")}, batchImages, false},
		{"pdf with images", []payload.FileBlob{blob("application/pdf"), blob("image/jpeg")}, batchMixed, false},
		{"images around a pdf", []payload.FileBlob{blob("image/png"), blob("application/pdf"), blob("image/jpeg")}, batchMixed, false},
		{"unsupported", []payload.FileBlob{blob("text/plain")}, batchInvalid, true},
		{"empty", nil, batchInvalid, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := classify(tc.files)
			if (err != nil) != tc.wantErr {
				t.Fatalf("classify err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPDFDocsKeepsOnlyPDFsInUploadOrder(t *testing.T) {
	first := payload.FileBlob{Data: []byte("pdf-1"), Mime: "application/pdf", Size: 5}
	second := payload.FileBlob{Data: []byte("pdf-2"), Mime: "application/pdf", Size: 5}
	docs := pdfDocs([]payload.FileBlob{blob("image/jpeg"), first, blob("image/png"), second})
	if len(docs) != 2 {
		t.Fatalf("pdfDocs returned %d docs, want 2", len(docs))
	}
	if string(docs[0]) != "pdf-1" || string(docs[1]) != "pdf-2" {
		t.Fatalf("pdfDocs order = %q, %q, want upload order", docs[0], docs[1])
	}
}

func TestRunUnsupportedTypeFailsBeforeFanout(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	p := New(nil, log, nil, nil)

	raw, _ := json.Marshal(payload.ProcessFiles{
		AdvertisementID: uuid.New(),
		Files:           []payload.FileBlob{blob("application/pdf"), blob("text/plain")},
	})
	job := &types.JobRun{
		JobType:     payload.TypeProcessFiles,
		Status:      types.JobStatusRunning,
		Attempts:    1,
		MaxAttempts: 2,
		Payload:     datatypes.JSON(raw),
	}
	jc := jobrt.NewContext(context.Background(), nil, job, nil, nil)
	if err := p.Run(jc); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if job.Status != types.JobStatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if job.Stage != "validate" {
		t.Fatalf("stage = %q, want validate", job.Stage)
	}
}
