package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/ids"
	"github.com/DoukyDPA/mission-ia/internal/store"
)

type structureStore struct{ s *Store }

func (st structureStore) Create(ctx context.Context, v *content.Structure) error {
	if v.ID == "" {
		v.ID = ids.New()
	}
	row := st.s.db.QueryRowContext(ctx, `
		insert into structures (id, name, city, has_charter, charter_url)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, v.ID, v.Name, v.City, v.HasCharter, nullString(v.CharterURL))
	if err := row.Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return content.ErrConflict
		}
		return err
	}
	return nil
}

func (st structureStore) Find(ctx context.Context, id string) (*content.Structure, error) {
	var (
		v       content.Structure
		charter sql.NullString
	)
	err := st.s.db.QueryRowContext(ctx, `
		select id, name, city, has_charter, charter_url, created_at, updated_at
		from structures
		where id = $1
	`, id).Scan(&v.ID, &v.Name, &v.City, &v.HasCharter, &charter, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.CharterURL = fromNull(charter)
	return &v, nil
}

func (st structureStore) List(ctx context.Context) ([]content.Structure, error) {
	rows, err := st.s.db.QueryContext(ctx, `
		select id, name, city, has_charter, charter_url, created_at, updated_at
		from structures
		order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.Structure
	for rows.Next() {
		var (
			v       content.Structure
			charter sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Name, &v.City, &v.HasCharter, &charter, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		v.CharterURL = fromNull(charter)
		result = append(result, v)
	}
	return result, rows.Err()
}

func (st structureStore) Update(ctx context.Context, id string, upd store.StructureUpdate) (*content.Structure, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(expr string, value any) {
		args = append(args, value)
		sets = append(sets, expr+" = $"+itoa(len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.City != nil {
		add("city", *upd.City)
	}
	if upd.HasCharter != nil {
		add("has_charter", *upd.HasCharter)
	}
	if upd.CharterURL != nil {
		add("charter_url", nullString(*upd.CharterURL))
	}
	if len(sets) == 0 {
		return st.Find(ctx, id)
	}
	args = append(args, id)

	var (
		v       content.Structure
		charter sql.NullString
	)
	err := st.s.db.QueryRowContext(ctx, `
		update structures set `+strings.Join(sets, ", ")+`, updated_at = now()
		where id = $`+itoa(len(args))+`
		returning id, name, city, has_charter, charter_url, created_at, updated_at
	`, args...).Scan(&v.ID, &v.Name, &v.City, &v.HasCharter, &charter, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.CharterURL = fromNull(charter)
	return &v, nil
}

func (st structureStore) Delete(ctx context.Context, id string) error {
	res, err := st.s.db.ExecContext(ctx, `delete from structures where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return content.ErrNotFound
	}
	return nil
}
