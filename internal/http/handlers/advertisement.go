package handlers

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/admatch-backend/internal/http/response"
	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/services"
)

const maxUploadBytes = 64 << 20

type AdvertisementHandler struct {
	log *logger.Logger
	ads services.AdvertisementService
}

func NewAdvertisementHandler(baseLog *logger.Logger, ads services.AdvertisementService) *AdvertisementHandler {
	return &AdvertisementHandler{
		log: baseLog.With("handler", "AdvertisementHandler"),
		ads: ads,
	}
}

// POST /api/retailers
func (h *AdvertisementHandler) CreateRetailer(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	retailer, err := h.ads.CreateRetailer(c.Request.Context(), strings.TrimSpace(body.Name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "create_retailer_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"retailer": retailer})
}

// POST /api/advertisements
func (h *AdvertisementHandler) CreateAdvertisement(c *gin.Context) {
	var body struct {
		RetailerID uuid.UUID `json:"retailer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	ad, err := h.ads.Create(c.Request.Context(), body.RetailerID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "create_advertisement_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"advertisement": ad})
}

// POST /api/advertisements/:id/files
//
// Multipart upload of the source batch. Validation happens synchronously so
// the uploader hears about a bad batch on this request; the heavy work runs
// on the ingest queue and the response carries the job to poll.
func (h *AdvertisementHandler) UploadFiles(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_advertisement_id", err)
		return
	}
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	form := c.Request.MultipartForm
	if form == nil || len(form.File["files"]) == 0 {
		response.RespondError(c, http.StatusBadRequest, "no_files", fmt.Errorf("no files in field %q", "files"))
		return
	}

	blobs := make([]payload.FileBlob, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		blob, err := readUpload(fh)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "read_file_failed", err)
			return
		}
		blobs = append(blobs, blob)
	}

	job, err := h.ads.UploadFiles(c.Request.Context(), adID, blobs)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "upload_rejected", err)
		return
	}
	response.RespondAccepted(c, gin.H{"job": job})
}

func readUpload(fh *multipart.FileHeader) (payload.FileBlob, error) {
	f, err := fh.Open()
	if err != nil {
		return payload.FileBlob{}, fmt.Errorf("open %q: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return payload.FileBlob{}, fmt.Errorf("read %q: %w", fh.Filename, err)
	}
	return payload.FileBlob{
		Data: data,
		Mime: uploadMimeType(fh),
		Size: int64(len(data)),
	}, nil
}

func uploadMimeType(fh *multipart.FileHeader) string {
	ct := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if ct != "" && ct != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			return mt
		}
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename)))
}

// GET /api/advertisements/:id
func (h *AdvertisementHandler) GetAdvertisement(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_advertisement_id", err)
		return
	}
	view, err := h.ads.GetWithMatchStats(c.Request.Context(), adID)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "advertisement_not_found", err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/advertisements/:id/items
func (h *AdvertisementHandler) ListItems(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_advertisement_id", err)
		return
	}
	items, err := h.ads.ListItems(c.Request.Context(), adID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_items_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

// POST /api/advertisements/:id/finish-later
func (h *AdvertisementHandler) FinishLater(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_advertisement_id", err)
		return
	}
	view, err := h.ads.FinishLater(c.Request.Context(), adID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "finish_later_failed", err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/advertisements/:id/complete
func (h *AdvertisementHandler) MarkComplete(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_advertisement_id", err)
		return
	}
	view, err := h.ads.MarkComplete(c.Request.Context(), adID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "mark_complete_failed", err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/advertisements/:id
func (h *AdvertisementHandler) DeleteAdvertisement(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_advertisement_id", err)
		return
	}
	if err := h.ads.Delete(c.Request.Context(), adID); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": adID})
}
