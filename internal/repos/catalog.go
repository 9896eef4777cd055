package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/types"
)

// Candidate is one fuzzy-match candidate from a reference catalog with its
// pg_trgm similarity score in [0,1].
type Candidate struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Score float64   `json:"score"`
}

type CatalogRepo interface {
	SimilarProducts(ctx context.Context, tx *gorm.DB, query string, limit int) ([]Candidate, error)
	SimilarProductGroups(ctx context.Context, tx *gorm.DB, query string, limit int) ([]Candidate, error)
	SimilarBrands(ctx context.Context, tx *gorm.DB, query string, limit int) ([]Candidate, error)
	SeedProducts(ctx context.Context, tx *gorm.DB, names []string) error
	SeedProductGroups(ctx context.Context, tx *gorm.DB, names []string) error
	SeedBrands(ctx context.Context, tx *gorm.DB, names []string) error
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{
		db:  db,
		log: baseLog.With("repo", "CatalogRepo"),
	}
}

func (r *catalogRepo) similar(ctx context.Context, tx *gorm.DB, table string, query string, limit int) ([]Candidate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		return []Candidate{}, nil
	}
	var out []Candidate
	// Parameterized throughout; the table name comes from the fixed set below.
	err := transaction.WithContext(ctx).Raw(`
		SELECT id, name, similarity(name, ?) AS score
		FROM `+table+`
		WHERE similarity(name, ?) > 0
		ORDER BY score DESC, name ASC
		LIMIT ?
	`, query, query, limit).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) SimilarProducts(ctx context.Context, tx *gorm.DB, query string, limit int) ([]Candidate, error) {
	return r.similar(ctx, tx, "product", query, limit)
}

func (r *catalogRepo) SimilarProductGroups(ctx context.Context, tx *gorm.DB, query string, limit int) ([]Candidate, error) {
	return r.similar(ctx, tx, "product_group", query, limit)
}

func (r *catalogRepo) SimilarBrands(ctx context.Context, tx *gorm.DB, query string, limit int) ([]Candidate, error) {
	return r.similar(ctx, tx, "brand", query, limit)
}

func (r *catalogRepo) seedNames(ctx context.Context, tx *gorm.DB, model interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(model).Error
}

func (r *catalogRepo) SeedProducts(ctx context.Context, tx *gorm.DB, names []string) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]types.Product, 0, len(names))
	for _, n := range names {
		rows = append(rows, types.Product{Name: n})
	}
	return r.seedNames(ctx, tx, &rows)
}

func (r *catalogRepo) SeedProductGroups(ctx context.Context, tx *gorm.DB, names []string) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]types.ProductGroup, 0, len(names))
	for _, n := range names {
		rows = append(rows, types.ProductGroup{Name: n})
	}
	return r.seedNames(ctx, tx, &rows)
}

func (r *catalogRepo) SeedBrands(ctx context.Context, tx *gorm.DB, names []string) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]types.Brand, 0, len(names))
	for _, n := range names {
		rows = append(rows, types.Brand{Name: n})
	}
	return r.seedNames(ctx, tx, &rows)
}
