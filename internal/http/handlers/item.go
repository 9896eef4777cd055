package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/admatch-backend/internal/http/response"
	"github.com/yungbote/admatch-backend/internal/repos"
	"github.com/yungbote/admatch-backend/internal/services"
)

type ItemHandler struct {
	ads services.AdvertisementService
}

func NewItemHandler(ads services.AdvertisementService) *ItemHandler {
	return &ItemHandler{ads: ads}
}

// POST /api/items/:id/match
func (h *ItemHandler) ConfirmMatch(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	var body struct {
		Kind         string    `json:"kind" binding:"required"`
		SuggestionID uuid.UUID `json:"suggestion_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	kind := repos.SuggestionKind(body.Kind)
	switch kind {
	case repos.SuggestionKindProduct, repos.SuggestionKindProductGroup, repos.SuggestionKindBrand:
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_kind",
			fmt.Errorf("unknown suggestion kind %q", body.Kind))
		return
	}
	if err := h.ads.ConfirmMatch(c.Request.Context(), itemID, kind, body.SuggestionID); err != nil {
		response.RespondError(c, http.StatusBadRequest, "confirm_match_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"item_id": itemID, "matched": true})
}

// POST /api/items/:id/unmatch
func (h *ItemHandler) Unmatch(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	if err := h.ads.Unmatch(c.Request.Context(), itemID); err != nil {
		response.RespondError(c, http.StatusBadRequest, "unmatch_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"item_id": itemID, "matched": false})
}
