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

type resourceStore struct{ s *Store }

const resourceColumns = `id, title, category, file_type, file_url, description, access_scope, target_structure_id, uploaded_by, created_at, updated_at`

func scanResource(scan func(dest ...any) error) (*content.Resource, error) {
	var (
		v          content.Resource
		fileURL    sql.NullString
		desc       sql.NullString
		target     sql.NullString
		uploadedBy sql.NullString
	)
	if err := scan(&v.ID, &v.Title, &v.Category, &v.FileType, &fileURL, &desc,
		&v.AccessScope, &target, &uploadedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.FileURL = fromNull(fileURL)
	v.Description = fromNull(desc)
	v.TargetStructureID = fromNull(target)
	v.UploadedBy = fromNull(uploadedBy)
	return &v, nil
}

func (st resourceStore) Create(ctx context.Context, v *content.Resource) error {
	if v.ID == "" {
		v.ID = ids.New()
	}
	if v.AccessScope == "" {
		v.AccessScope = content.AccessGlobal
	}
	row := st.s.db.QueryRowContext(ctx, `
		insert into resources (id, title, category, file_type, file_url, description, access_scope, target_structure_id, uploaded_by)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning created_at, updated_at
	`, v.ID, v.Title, v.Category, v.FileType, nullString(v.FileURL), nullString(v.Description),
		v.AccessScope, nullString(v.TargetStructureID), nullString(v.UploadedBy))
	if err := row.Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return content.ErrConflict
		}
		return err
	}
	return nil
}

func (st resourceStore) Find(ctx context.Context, id string) (*content.Resource, error) {
	row := st.s.db.QueryRowContext(ctx, `
		select `+resourceColumns+` from resources where id = $1
	`, id)
	v, err := scanResource(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	return v, err
}

func (st resourceStore) List(ctx context.Context) ([]content.Resource, error) {
	rows, err := st.s.db.QueryContext(ctx, `
		select `+resourceColumns+` from resources order by created_at desc, id desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.Resource
	for rows.Next() {
		v, err := scanResource(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func (st resourceStore) Update(ctx context.Context, id string, upd store.ResourceUpdate) (*content.Resource, error) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(expr string, value any) {
		args = append(args, value)
		sets = append(sets, expr+" = $"+itoa(len(args)))
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.FileType != nil {
		add("file_type", *upd.FileType)
	}
	if upd.FileURL != nil {
		add("file_url", nullString(*upd.FileURL))
	}
	if upd.Description != nil {
		add("description", nullString(*upd.Description))
	}
	if upd.AccessScope != nil {
		add("access_scope", *upd.AccessScope)
	}
	if upd.TargetStructureID != nil {
		add("target_structure_id", nullString(*upd.TargetStructureID))
	}
	if len(sets) == 0 {
		return st.Find(ctx, id)
	}
	args = append(args, id)

	row := st.s.db.QueryRowContext(ctx, `
		update resources set `+strings.Join(sets, ", ")+`, updated_at = now()
		where id = $`+itoa(len(args))+`
		returning `+resourceColumns+`
	`, args...)
	v, err := scanResource(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	return v, err
}

func (st resourceStore) Delete(ctx context.Context, id string) error {
	res, err := st.s.db.ExecContext(ctx, `delete from resources where id = $1`, id)
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
