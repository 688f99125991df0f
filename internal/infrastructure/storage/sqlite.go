package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/recipelens/backend/internal/domain"
)

// SQLiteStore keeps each recipe as a JSON document row, ordered by position
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; the driver serializes anyway
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS recipes (
        id TEXT PRIMARY KEY,
        position INTEGER NOT NULL,
        title TEXT NOT NULL,
        document TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_recipes_position ON recipes(position);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// LoadRecipes returns the collection in saved order
func (s *SQLiteStore) LoadRecipes(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM recipes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		var r domain.Recipe
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("failed to decode recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	return recipes, nil
}

// SaveRecipes replaces the stored collection. Recipes without an id are
// assigned one, and the ids are written back into the slice once the save commits.
func (s *SQLiteStore) SaveRecipes(ctx context.Context, recipes []domain.Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipes`); err != nil {
		return fmt.Errorf("failed to clear recipes: %w", err)
	}

	insert := `
        INSERT INTO recipes (id, position, title, document)
        VALUES (?, ?, ?, ?)
    `
	ids := make([]string, len(recipes))
	seen := make(map[string]bool, len(recipes))
	for i, recipe := range recipes {
		if recipe.ID == "" || seen[recipe.ID] {
			recipe.ID = uuid.NewString()
		}
		seen[recipe.ID] = true
		ids[i] = recipe.ID

		doc, err := json.Marshal(recipe)
		if err != nil {
			return fmt.Errorf("failed to encode recipe %q: %w", recipe.Title, err)
		}
		if _, err := tx.ExecContext(ctx, insert, recipe.ID, i, recipe.Title, string(doc)); err != nil {
			return fmt.Errorf("failed to insert recipe: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipes: %w", err)
	}
	for i := range recipes {
		recipes[i].ID = ids[i]
	}
	return nil
}

// GetRecipe returns one recipe by id
func (s *SQLiteStore) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM recipes WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, domain.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}

	var r domain.Recipe
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("failed to decode recipe: %w", err)
	}
	return &r, nil
}
