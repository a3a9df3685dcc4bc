package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type taxSettingsRepository struct {
	db *database.DB
}

func NewTaxSettingsRepository(db *database.DB) tax.SettingsRepository {
	return &taxSettingsRepository{db: db}
}

// GetSettings reads the active settings document, stored as JSONB.
func (r *taxSettingsRepository) GetSettings(ctx context.Context) (tax.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT document, updated_at
		FROM tax_settings
		WHERE is_active = TRUE
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var raw []byte
	var s tax.Settings
	err := q.QueryRow(ctx, query).Scan(&raw, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tax.Settings{}, tax.ErrSettingsNotFound
		}
		return tax.Settings{}, fmt.Errorf("failed to get tax settings: %w", err)
	}

	updatedAt := s.UpdatedAt
	if err := json.Unmarshal(raw, &s); err != nil {
		return tax.Settings{}, fmt.Errorf("%w: decode document: %v", tax.ErrInvalidSettings, err)
	}
	s.UpdatedAt = updatedAt

	if err := s.Validate(); err != nil {
		slog.Warn("Stored tax settings failed validation", "error", err)
	}

	return s, nil
}
