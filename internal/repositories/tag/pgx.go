package tag

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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
		logger: logger.WithComponent("TagRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) GetOrCreate(ctx context.Context, name string) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Insert("tags").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var id int64
	err = p.pg.QueryRow(ctx, query, args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// the insert hit the unique constraint; another writer owns the row
	query, args, err = repositories.SqBuilder.
		Select("id").
		From("tags").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (p *Pgx) Link(ctx context.Context, postID, tagID int64) error {
	query, args, err := repositories.SqBuilder.
		Insert("post_tags").
		Columns("post_id", "tag_id").
		Values(postID, tagID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}
