package media

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-saver/internal/domain"
	"github.com/orgball2608/insta-saver/internal/repositories"
	"github.com/orgball2608/insta-saver/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("MediaRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) GetByMediaID(ctx context.Context, mediaID string) (*domain.MediaRecord, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "post_id", "media_id", "idx", "path", "fingerprint", "byte_size").
		From("media_items").
		Where(sq.Eq{"media_id": mediaID}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var rec domain.MediaRecord
	err = p.pg.QueryRow(ctx, query, args...).
		Scan(&rec.ID, &rec.PostID, &rec.MediaID, &rec.Index, &rec.Path, &rec.Fingerprint, &rec.ByteSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (p *Pgx) Upsert(ctx context.Context, rec domain.MediaRecord) error {
	query, args, err := repositories.SqBuilder.
		Insert("media_items").
		Columns("post_id", "media_id", "idx", "path", "fingerprint", "byte_size").
		Values(rec.PostID, rec.MediaID, rec.Index, rec.Path, rec.Fingerprint, rec.ByteSize).
		Suffix(`ON CONFLICT (media_id) DO UPDATE SET
			post_id = EXCLUDED.post_id,
			idx = EXCLUDED.idx,
			path = EXCLUDED.path,
			fingerprint = EXCLUDED.fingerprint,
			byte_size = EXCLUDED.byte_size`).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}
