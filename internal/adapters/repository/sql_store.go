package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/craftshop/core/internal/domain/entities"
	"github.com/craftshop/core/internal/infrastructure/database"
)

// SQLStore keeps the craft collection in the crafts table, ordered by position
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a store over a migrated database
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

type craftRow struct {
	Position    int           `db:"position"`
	ID          sql.NullInt64 `db:"id"`
	Name        string        `db:"name"`
	Image       string        `db:"image"`
	Description string        `db:"description"`
	Supplies    string        `db:"supplies"`
}

func (s *SQLStore) Load(ctx context.Context) ([]entities.Craft, error) {
	query := `
		SELECT position, id, name, image, description, supplies
		FROM crafts
		ORDER BY position`

	var rows []craftRow
	if err := s.db.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load crafts: %w", err)
	}

	crafts := make([]entities.Craft, 0, len(rows))
	for _, row := range rows {
		craft := entities.Craft{
			Name:        row.Name,
			Image:       row.Image,
			Description: row.Description,
		}
		if row.ID.Valid {
			craft.ID = entities.Int64Ptr(row.ID.Int64)
		}
		if err := json.Unmarshal([]byte(row.Supplies), &craft.Supplies); err != nil {
			return nil, fmt.Errorf("decode supplies at position %d: %w", row.Position, err)
		}
		crafts = append(crafts, craft)
	}

	return crafts, nil
}

// Save replaces every row in one transaction
func (s *SQLStore) Save(ctx context.Context, crafts []entities.Craft) error {
	insert := s.db.DB.Rebind(`
		INSERT INTO crafts (position, id, name, image, description, supplies)
		VALUES (?, ?, ?, ?, ?, ?)`)

	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM crafts`); err != nil {
			return fmt.Errorf("clear crafts: %w", err)
		}

		for i, craft := range crafts {
			supplies := craft.Supplies
			if supplies == nil {
				supplies = []string{}
			}
			encoded, err := json.Marshal(supplies)
			if err != nil {
				return fmt.Errorf("encode supplies: %w", err)
			}

			var id sql.NullInt64
			if craft.ID != nil {
				id = sql.NullInt64{Int64: *craft.ID, Valid: true}
			}

			if _, err := tx.ExecContext(ctx, insert,
				i, id, craft.Name, craft.Image, craft.Description, string(encoded),
			); err != nil {
				return fmt.Errorf("insert craft at position %d: %w", i, err)
			}
		}

		return nil
	})
}
