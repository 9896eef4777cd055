package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/admatch-backend/internal/platform/envutil"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
	"github.com/yungbote/admatch-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := envutil.Str("POSTGRES_HOST", "localhost")
	postgresPort := envutil.Str("POSTGRES_PORT", "5432")
	postgresUser := envutil.Str("POSTGRES_USER", "postgres")
	postgresPassword := envutil.Str("POSTGRES_PASSWORD", "")
	postgresName := envutil.Str("POSTGRES_NAME", "admatch")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...", "host", postgresHost, "db", postgresName)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}
	// pg_trgm backs the similarity() scoring used by the matcher.
	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm;`).Error; err != nil {
		return nil, fmt.Errorf("enable pg_trgm extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Retailer{},
		&types.Advertisement{},
		&types.Page{},
		&types.Item{},
		&types.Product{},
		&types.ProductGroup{},
		&types.Brand{},
		&types.ProductSuggestion{},
		&types.ProductGroupSuggestion{},
		&types.BrandSuggestion{},
		&types.JobRun{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		table, name, sql string
	}{
		{"advertisement", "fk_advertisement_retailer_id",
			`FOREIGN KEY ("retailer_id") REFERENCES "retailer"("id") ON DELETE CASCADE`},
		{"page", "fk_page_advertisement_id",
			`FOREIGN KEY ("advertisement_id") REFERENCES "advertisement"("id") ON DELETE CASCADE`},
		{"item", "fk_item_page_id",
			`FOREIGN KEY ("page_id") REFERENCES "page"("id") ON DELETE CASCADE`},
		{"product_suggestion", "fk_product_suggestion_item_id",
			`FOREIGN KEY ("item_id") REFERENCES "item"("id") ON DELETE CASCADE`},
		{"product_group_suggestion", "fk_product_group_suggestion_item_id",
			`FOREIGN KEY ("item_id") REFERENCES "item"("id") ON DELETE CASCADE`},
		{"brand_suggestion", "fk_brand_suggestion_item_id",
			`FOREIGN KEY ("item_id") REFERENCES "item"("id") ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		drop := fmt.Sprintf(`ALTER TABLE "%s" DROP CONSTRAINT IF EXISTS "%s"`, c.table, c.name)
		if err := s.db.Exec(drop).Error; err != nil {
			return fmt.Errorf("drop %s: %w", c.name, err)
		}
		add := fmt.Sprintf(`ALTER TABLE "%s" ADD CONSTRAINT "%s" %s`, c.table, c.name, c.sql)
		if err := s.db.Exec(add).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
