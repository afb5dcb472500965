package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"kalaghar.in/lokakala/internal/language"
)

// ArtworkStore persists artwork records and their per-language translations.
type ArtworkStore struct {
	pool *Pool
}

func NewArtworkStore(pool *Pool) *ArtworkStore {
	return &ArtworkStore{pool: pool}
}

// FindByEnglish looks up the record cached for an exact English text.
// Returns (nil, nil) when no record exists.
func (s *ArtworkStore) FindByEnglish(ctx context.Context, english string) (*Artwork, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("artwork store is not initialized")
	}

	const q = `
SELECT
	a.id,
	a.english,
	a.art_name,
	a.art_style,
	a.region,
	a.question,
	a.hindi,
	a.marathi,
	a.bengali,
	a.tamil,
	a.telugu,
	a.created_at
FROM artworks a
WHERE a.english = $1
LIMIT 1
`

	var row Artwork
	err := s.pool.QueryRow(ctx, q, english).Scan(
		&row.ID,
		&row.English,
		&row.ArtName,
		&row.ArtStyle,
		&row.Region,
		&row.Question,
		&row.Hindi,
		&row.Marathi,
		&row.Bengali,
		&row.Tamil,
		&row.Telugu,
		&row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query artwork by english text: %w", err)
	}
	return &row, nil
}

// Insert creates a new artwork record. Fails with ErrDuplicateKey when a
// record for the same English text already exists.
func (s *ArtworkStore) Insert(ctx context.Context, artwork *Artwork) error {
	if s == nil || s.pool == nil || s.pool.gdb == nil {
		return fmt.Errorf("artwork store is not initialized")
	}
	if artwork == nil {
		return fmt.Errorf("artwork is nil")
	}
	if strings.TrimSpace(artwork.English) == "" {
		return fmt.Errorf("artwork english text is required")
	}

	if err := s.pool.gdb.WithContext(ctx).Create(artwork).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("insert artwork: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("insert artwork: %w", err)
	}
	return nil
}

// UpdateTranslations merges the given language entries into one record.
// Each column is written as COALESCE(column, new_value) in a single UPDATE,
// so populated entries are never overwritten and columns outside the map are
// never touched. Concurrent merges against the same row therefore union
// rather than clobber. Fails with ErrNotFound when the id no longer exists.
func (s *ArtworkStore) UpdateTranslations(ctx context.Context, id int64, partial map[language.Code]string) error {
	if s == nil || s.pool == nil || s.pool.gdb == nil {
		return fmt.Errorf("artwork store is not initialized")
	}

	updates := make(map[string]any, len(partial))
	for code, text := range partial {
		column := TranslationColumn(code)
		if column == "" || strings.TrimSpace(text) == "" {
			continue
		}
		updates[column] = gorm.Expr("COALESCE("+column+", ?)", text)
	}
	if len(updates) == 0 {
		return nil
	}

	res := s.pool.gdb.WithContext(ctx).
		Model(&Artwork{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update artwork translations: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update artwork translations id=%d: %w", id, ErrNotFound)
	}
	return nil
}

// List returns records newest-first. The caller is responsible for keeping
// limit within [1,100]; offset must be >= 0.
func (s *ArtworkStore) List(ctx context.Context, offset, limit int) ([]Artwork, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("artwork store is not initialized")
	}

	const q = `
SELECT
	a.id,
	a.english,
	a.art_name,
	a.art_style,
	a.region,
	a.question,
	a.hindi,
	a.marathi,
	a.bengali,
	a.tamil,
	a.telugu,
	a.created_at
FROM artworks a
ORDER BY a.id DESC
LIMIT $1
OFFSET $2
`

	rows, err := s.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query artworks: %w", err)
	}
	defer rows.Close()

	items := make([]Artwork, 0, limit)
	for rows.Next() {
		var row Artwork
		if err := rows.Scan(
			&row.ID,
			&row.English,
			&row.ArtName,
			&row.ArtStyle,
			&row.Region,
			&row.Question,
			&row.Hindi,
			&row.Marathi,
			&row.Bengali,
			&row.Tamil,
			&row.Telugu,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan artwork row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artworks: %w", err)
	}

	return items, nil
}
