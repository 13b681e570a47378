package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/jackc/pgx/v5"
)

var _ domain.Manifest = (*PGRepo)(nil)

var objectColumns = []string{"id", "size_bytes", "ext", "created_at"}

// Append дописывает опубликованный объект в журнал. Повторная запись того же id — ошибка.
func (r *PGRepo) Append(ctx context.Context, obj domain.StoredObject) error {
	sqlStr, args, err := r.insertObject(obj).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	r.logSQL("Append", sqlStr, args)

	start := time.Now()
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		r.logger.Errorw("Append exec failed", "id", obj.ID, "after", time.Since(start), "error", err)
		return fmt.Errorf("%w: manifest append: %v", domain.ErrStorageWrite, err)
	}
	r.logger.Debugw("Append ok", "id", obj.ID, "in", time.Since(start))
	return nil
}

// Latest — ORDER BY created_at DESC, id DESC LIMIT 1.
func (r *PGRepo) Latest(ctx context.Context) (domain.StoredObject, error) {
	sqlStr, args, err := r.selectObjects().Limit(1).ToSql()
	if err != nil {
		return domain.StoredObject{}, fmt.Errorf("build select: %w", err)
	}
	r.logSQL("Latest", sqlStr, args)

	var o domain.StoredObject
	err = r.pool.QueryRow(ctx, sqlStr, args...).Scan(&o.ID, &o.SizeBytes, &o.Ext, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoredObject{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.StoredObject{}, fmt.Errorf("%w: manifest latest: %v", domain.ErrStorageUnavailable, err)
	}
	return o, nil
}

func (r *PGRepo) List(ctx context.Context) ([]domain.StoredObject, error) {
	sqlStr, args, err := r.selectObjects().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	r.logSQL("List", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest list: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []domain.StoredObject
	for rows.Next() {
		var o domain.StoredObject
		if err := rows.Scan(&o.ID, &o.SizeBytes, &o.Ext, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: manifest scan: %v", domain.ErrStorageUnavailable, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: manifest rows: %v", domain.ErrStorageUnavailable, err)
	}
	return out, nil
}

func (r *PGRepo) insertObject(obj domain.StoredObject) sq.InsertBuilder {
	return r.qb().Insert(r.table("media_objects")).
		Columns(objectColumns...).
		Values(obj.ID, obj.SizeBytes, obj.Ext, obj.CreatedAt.UTC())
}

// Новые сверху; при равном created_at больший id
func (r *PGRepo) selectObjects() sq.SelectBuilder {
	return r.qb().Select(objectColumns...).
		From(r.table("media_objects")).
		OrderBy("created_at DESC", "id DESC")
}
