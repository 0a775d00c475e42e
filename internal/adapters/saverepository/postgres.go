package saverepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
	"github.com/Amund211/timba/internal/reporting"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Postgres struct {
	db      *sqlx.DB
	schema  string
	rules   domain.Rules
	tracer  trace.Tracer
	nowFunc func() time.Time
}

func NewPostgres(db *sqlx.DB, schema string, rules domain.Rules, nowFunc func() time.Time) *Postgres {
	tracer := otel.Tracer("timba/saverepository/postgres")
	return &Postgres{
		db:      db,
		schema:  schema,
		rules:   rules,
		tracer:  tracer,
		nowFunc: nowFunc,
	}
}

type dbSave struct {
	PlayerID          string    `db:"player_id"`
	Data              []byte    `db:"data"`
	DataFormatVersion int       `db:"data_format_version"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (p *Postgres) GetSave(ctx context.Context, playerID string) (domain.Save, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetSave", trace.WithAttributes(attribute.String("playerID", playerID)))
	defer span.End()

	var stored dbSave
	err := p.db.QueryRowxContext(
		ctx,
		fmt.Sprintf(
			`SELECT player_id, data, data_format_version, updated_at FROM %s.saves WHERE player_id = $1`,
			pq.QuoteIdentifier(p.schema),
		),
		playerID,
	).StructScan(&stored)
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

	save, err := decodeSave(stored.PlayerID, stored.DataFormatVersion, stored.Data, p.rules, stored.UpdatedAt)
	if err != nil {
		err := fmt.Errorf("failed to decode stored save: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"playerID":          playerID,
			"dataFormatVersion": fmt.Sprint(stored.DataFormatVersion),
		})
		return domain.Save{}, err
	}

	return save, nil
}

func (p *Postgres) StoreSave(ctx context.Context, save domain.Save) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.StoreSave", trace.WithAttributes(attribute.String("playerID", save.PlayerID)))
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

	_, err = p.db.ExecContext(
		ctx,
		fmt.Sprintf(`INSERT INTO %s.saves
		(player_id, data, data_format_version, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_id)
		DO UPDATE SET
			data = EXCLUDED.data,
			data_format_version = EXCLUDED.data_format_version,
			updated_at = EXCLUDED.updated_at`,
			pq.QuoteIdentifier(p.schema)),
		save.PlayerID,
		string(data),
		DATA_FORMAT_VERSION,
		p.nowFunc(),
	)
	if err != nil {
		err := fmt.Errorf("failed to upsert save: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"playerID": save.PlayerID,
		})
		return err
	}

	logging.FromContext(ctx).InfoContext(ctx, "Stored save", "dataFormatVersion", DATA_FORMAT_VERSION)

	return nil
}
