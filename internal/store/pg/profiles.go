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

type profileStore struct{ s *Store }

const profileColumns = `id, email, full_name, role, structure_id, password_hash, created_at, updated_at`

func scanProfile(scan func(dest ...any) error) (*content.Profile, error) {
	var (
		v           content.Profile
		structureID sql.NullString
		hash        sql.NullString
	)
	if err := scan(&v.ID, &v.Email, &v.FullName, &v.Role, &structureID, &hash, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.StructureID = fromNull(structureID)
	v.PasswordHash = fromNull(hash)
	return &v, nil
}

func (st profileStore) Create(ctx context.Context, v *content.Profile) error {
	if v.ID == "" {
		v.ID = ids.New()
	}
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	row := st.s.db.QueryRowContext(ctx, `
		insert into profiles (id, email, full_name, role, structure_id, password_hash)
		values ($1, $2, $3, $4, $5, $6)
		returning created_at, updated_at
	`, v.ID, v.Email, v.FullName, v.Role, nullString(v.StructureID), nullString(v.PasswordHash))
	if err := row.Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return content.ErrConflict
		}
		return err
	}
	return nil
}

func (st profileStore) Find(ctx context.Context, id string) (*content.Profile, error) {
	row := st.s.db.QueryRowContext(ctx, `
		select `+profileColumns+` from profiles where id = $1
	`, id)
	v, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	return v, err
}

func (st profileStore) FindByEmail(ctx context.Context, email string) (*content.Profile, error) {
	row := st.s.db.QueryRowContext(ctx, `
		select `+profileColumns+` from profiles where email = lower($1)
	`, strings.TrimSpace(email))
	v, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	return v, err
}

func (st profileStore) List(ctx context.Context) ([]content.Profile, error) {
	rows, err := st.s.db.QueryContext(ctx, `
		select `+profileColumns+` from profiles order by email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.Profile
	for rows.Next() {
		v, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func (st profileStore) Update(ctx context.Context, id string, upd store.ProfileUpdate) (*content.Profile, error) {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	add := func(expr string, value any) {
		args = append(args, value)
		sets = append(sets, expr+" = $"+itoa(len(args)))
	}
	if upd.FullName != nil {
		add("full_name", *upd.FullName)
	}
	if upd.Role != nil {
		add("role", *upd.Role)
	}
	if upd.StructureID != nil {
		add("structure_id", nullString(*upd.StructureID))
	}
	if len(sets) == 0 {
		return st.Find(ctx, id)
	}
	args = append(args, id)

	row := st.s.db.QueryRowContext(ctx, `
		update profiles set `+strings.Join(sets, ", ")+`, updated_at = now()
		where id = $`+itoa(len(args))+`
		returning `+profileColumns+`
	`, args...)
	v, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	return v, err
}

// Delete removes the account. Authored prompts keep their author_id and
// render with an empty author name afterwards.
func (st profileStore) Delete(ctx context.Context, id string) error {
	res, err := st.s.db.ExecContext(ctx, `delete from profiles where id = $1`, id)
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
