package pg

import (
	"context"
	"database/sql"

	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/ids"
)

type domainStore struct{ s *Store }

func (st domainStore) Create(ctx context.Context, v *content.AllowedDomain) error {
	if v.ID == "" {
		v.ID = ids.New()
	}
	row := st.s.db.QueryRowContext(ctx, `
		insert into allowed_domains (id, domain, structure_id)
		values ($1, $2, $3)
		returning created_at
	`, v.ID, v.Domain, nullString(v.StructureID))
	if err := row.Scan(&v.CreatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return content.ErrConflict
		}
		return err
	}
	return nil
}

func (st domainStore) List(ctx context.Context) ([]content.AllowedDomain, error) {
	rows, err := st.s.db.QueryContext(ctx, `
		select id, domain, structure_id, created_at
		from allowed_domains
		order by domain
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.AllowedDomain
	for rows.Next() {
		var (
			v           content.AllowedDomain
			structureID sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Domain, &structureID, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.StructureID = fromNull(structureID)
		result = append(result, v)
	}
	return result, rows.Err()
}

func (st domainStore) Delete(ctx context.Context, id string) error {
	res, err := st.s.db.ExecContext(ctx, `delete from allowed_domains where id = $1`, id)
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
