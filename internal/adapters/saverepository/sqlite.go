package saverepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/reporting"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SQLite stores saves in a local file for development
type SQLite struct {
	db      *sqlx.DB
	rules   domain.Rules
	tracer  trace.Tracer
	nowFunc func() time.Time
}

func NewSQLite(db *sqlx.DB, rules domain.Rules, nowFunc func() time.Time) *SQLite {
	return &SQLite{
		db:      db,
		rules:   rules,
		tracer:  otel.Tracer("timba/saverepository/sqlite"),
		nowFunc: nowFunc,
	}
}

type sqliteSave struct {
	PlayerID          string `db:"player_id"`
	Data              string `db:"data"`
	DataFormatVersion int    `db:"data_format_version"`
	UpdatedAt         string `db:"updated_at"`
}

func (s *SQLite) GetSave(ctx context.Context, playerID string) (domain.Save, error) {
	ctx, span := s.tracer.Start(ctx, "SQLite.GetSave", trace.WithAttributes(attribute.String("playerID", playerID)))
	defer span.End()

	var stored sqliteSave
	err := s.db.GetContext(
		ctx,
		&stored,
		`SELECT player_id, data, data_format_version, updated_at FROM saves WHERE player_id = ?`,
		playerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Save{}, domain.ErrSaveNotFound
	}
	if err != nil {
		err := fmt.Errorf("failed to query save: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"playerID": playerID,
		})
		return domain.Save{}, err
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, stored.UpdatedAt)
	if err != nil {
		updatedAt = s.nowFunc()
	}

	save, err := decodeSave(stored.PlayerID, stored.DataFormatVersion, []byte(stored.Data), s.rules, updatedAt)
	if err != nil {
		err := fmt.Errorf("failed to decode stored save: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"playerID": playerID,
		})
		return domain.Save{}, err
	}

	return save, nil
}

func (s *SQLite) StoreSave(ctx context.Context, save domain.Save) error {
	ctx, span := s.tracer.Start(ctx, "SQLite.StoreSave", trace.WithAttributes(attribute.String("playerID", save.PlayerID)))
	defer span.End()

	if save.PlayerID == "" {
		err := fmt.Errorf("playerID is empty")
		reporting.Report(ctx, err)
		return err
	}

	data, err := encodeSave(save)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"playerID": save.PlayerID,
		})
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO saves (player_id, data, data_format_version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (player_id)
		DO UPDATE SET
			data = excluded.data,
			data_format_version = excluded.data_format_version,
			updated_at = excluded.updated_at`,
		save.PlayerID,
		string(data),
		DATA_FORMAT_VERSION,
		s.nowFunc().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		err := fmt.Errorf("failed to upsert save: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"playerID": save.PlayerID,
		})
		return err
	}

	return nil
}
