package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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
		logger: logger.WithComponent("PostRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Upsert(ctx context.Context, post domain.SavedPost) (int64, error) {
	paths := post.MediaPaths
	if paths == nil {
		paths = []string{}
	}
	pathsJSON, err := json.Marshal(paths)
	if err != nil {
		return 0, fmt.Errorf("marshal media paths: %w", err)
	}

	query, args, err := repositories.SqBuilder.
		Insert("posts").
		Columns("url", "caption", "timestamp", "media_paths").
		Values(post.URL, post.Caption, post.Timestamp, pathsJSON).
		Suffix(`ON CONFLICT (url) DO UPDATE SET
			caption = EXCLUDED.caption,
			timestamp = EXCLUDED.timestamp,
			media_paths = EXCLUDED.media_paths`).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var id int64
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (p *Pgx) GetByURL(ctx context.Context, url string) (*domain.SavedPost, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "url", "caption", "timestamp", "media_paths", "created_at").
		From("posts").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var post domain.SavedPost
	var pathsJSON []byte
	err = p.pg.QueryRow(ctx, query, args...).
		Scan(&post.ID, &post.URL, &post.Caption, &post.Timestamp, &pathsJSON, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(pathsJSON, &post.MediaPaths); err != nil {
		return nil, fmt.Errorf("unmarshal media paths: %w", err)
	}
	return &post, nil
}
