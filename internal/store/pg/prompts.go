package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/ids"
	"github.com/DoukyDPA/mission-ia/internal/store"
)

type promptStore struct{ s *Store }

// List joins the denormalized author columns so the view-model needs no
// second round-trip per row.
const promptSelect = `
	select p.id, p.title, p.content, p.category, p.tags, p.scope,
	       p.structure_id, p.author_id,
	       coalesce(pr.full_name, ''), coalesce(pr.role, ''),
	       p.likes_count, p.is_fork, p.parent_id, p.parent_author,
	       p.created_at, p.updated_at
	from prompts p
	left join profiles pr on pr.id = p.author_id
`

func scanPrompt(scan func(dest ...any) error) (*content.Prompt, error) {
	var (
		v           content.Prompt
		rawTags     []byte
		structureID sql.NullString
		parentID    sql.NullString
	)
	if err := scan(&v.ID, &v.Title, &v.Content, &v.Category, &rawTags, &v.Scope,
		&structureID, &v.AuthorID, &v.AuthorName, &v.AuthorRole,
		&v.LikesCount, &v.IsFork, &parentID, &v.ParentAuthor,
		&v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if len(rawTags) > 0 {
		if err := json.Unmarshal(rawTags, &v.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	v.StructureID = fromNull(structureID)
	v.ParentID = fromNull(parentID)
	v.Avatar = content.Initials(v.AuthorName)
	return &v, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if len(tags) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(tags)
}

func (st promptStore) Create(ctx context.Context, v *content.Prompt) error {
	if v.ID == "" {
		v.ID = ids.New()
	}
	if v.Scope == "" {
		v.Scope = content.ScopeLocal
	}
	rawTags, err := marshalTags(v.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	row := st.s.db.QueryRowContext(ctx, `
		insert into prompts (id, title, content, category, tags, scope, structure_id, author_id, likes_count, is_fork, parent_id, parent_author)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		returning created_at, updated_at
	`, v.ID, v.Title, v.Content, v.Category, rawTags, v.Scope,
		nullString(v.StructureID), v.AuthorID, v.LikesCount, v.IsFork,
		nullString(v.ParentID), v.ParentAuthor)
	if err := row.Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return content.ErrConflict
		}
		return err
	}
	return nil
}

func (st promptStore) Find(ctx context.Context, id string) (*content.Prompt, error) {
	row := st.s.db.QueryRowContext(ctx, promptSelect+` where p.id = $1`, id)
	v, err := scanPrompt(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	return v, err
}

func (st promptStore) List(ctx context.Context) ([]content.Prompt, error) {
	rows, err := st.s.db.QueryContext(ctx, promptSelect+` order by p.created_at desc, p.id desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.Prompt
	for rows.Next() {
		v, err := scanPrompt(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func (st promptStore) Update(ctx context.Context, id string, upd store.PromptUpdate) (*content.Prompt, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(expr string, value any) {
		args = append(args, value)
		sets = append(sets, expr+" = $"+itoa(len(args)))
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Content != nil {
		add("content", *upd.Content)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Tags != nil {
		rawTags, err := marshalTags(upd.Tags)
		if err != nil {
			return nil, fmt.Errorf("marshal tags: %w", err)
		}
		add("tags", rawTags)
	}
	if upd.Scope != nil {
		add("scope", *upd.Scope)
	}
	if len(sets) == 0 {
		return st.Find(ctx, id)
	}
	args = append(args, id)

	res, err := st.s.db.ExecContext(ctx, `
		update prompts set `+strings.Join(sets, ", ")+`, updated_at = now()
		where id = $`+itoa(len(args)),
		args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, content.ErrNotFound
	}
	return st.Find(ctx, id)
}

func (st promptStore) Delete(ctx context.Context, id string) error {
	// No cascade: forks keep their parent_id pointing at the deleted row.
	res, err := st.s.db.ExecContext(ctx, `delete from prompts where id = $1`, id)
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
