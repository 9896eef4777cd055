// Package match_item is the matcher: it looks one extracted item up against
// the product, product-group and brand catalogs by trigram similarity and
// records the top candidates as suggestions.
package match_item

import (
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/jobs/payload"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/repos"
)

// suggestionLimit caps each candidate list; review surfaces at most the top
// three per kind.
const suggestionLimit = 3

type Pipeline struct {
	db  *gorm.DB
	log *logger.Logger

	itemRepo       repos.ItemRepo
	catalogRepo    repos.CatalogRepo
	suggestionRepo repos.SuggestionRepo
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	itemRepo repos.ItemRepo,
	catalogRepo repos.CatalogRepo,
	suggestionRepo repos.SuggestionRepo,
) *Pipeline {
	return &Pipeline{
		db:             db,
		log:            baseLog.With("job", payload.TypeMatchItem),
		itemRepo:       itemRepo,
		catalogRepo:    catalogRepo,
		suggestionRepo: suggestionRepo,
	}
}

func (p *Pipeline) Type() string { return payload.TypeMatchItem }
