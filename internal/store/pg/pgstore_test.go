package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DoukyDPA/mission-ia/internal/content"
	"github.com/DoukyDPA/mission-ia/internal/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestCreateStructure(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	mock.ExpectQuery("insert into structures").
		WithArgs(sqlmock.AnyArg(), "Mission Locale de Bordeaux", "Bordeaux", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	v := content.Structure{Name: "Mission Locale de Bordeaux", City: "Bordeaux"}
	if err := s.Structures(ctx).Create(ctx, &v); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.ID == "" {
		t.Fatal("expected generated id")
	}
	if !v.CreatedAt.Equal(now) {
		t.Fatalf("created_at not populated: %v", v.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindProfileByEmailNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery("select (.+) from profiles where email").
		WithArgs("nobody@ml-lyon.fr").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Profiles(ctx).FindByEmail(ctx, "nobody@ml-lyon.fr")
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateProfileConflict(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery("insert into profiles").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	v := content.Profile{Email: "jean@ml-lyon.fr", FullName: "Jean", Role: "Conseiller"}
	if err := s.Profiles(ctx).Create(ctx, &v); !errors.Is(err, content.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreatePromptDefaultsScope(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	mock.ExpectQuery("insert into prompts").
		WithArgs(sqlmock.AnyArg(), "Titre", "Contenu", "Administratif", []byte(`["Administratif"]`),
			content.ScopeLocal, sqlmock.AnyArg(), "author-1", 0, false, sqlmock.AnyArg(), "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	v := content.Prompt{Title: "Titre", Content: "Contenu", Category: "Administratif", Tags: []string{"Administratif"}, AuthorID: "author-1"}
	if err := s.Prompts(ctx).Create(ctx, &v); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.Scope != content.ScopeLocal {
		t.Fatalf("scope not defaulted: %v", v.Scope)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateResourcePreservesUnsetFields(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	title := "Nouveau titre"
	rows := sqlmock.NewRows([]string{
		"id", "title", "category", "file_type", "file_url", "description",
		"access_scope", "target_structure_id", "uploaded_by", "created_at", "updated_at",
	}).AddRow("res-1", title, "Formation", "file", "/files/documents/u1/1.pdf", nil,
		"global", nil, "profile-admin", now, now)

	mock.ExpectQuery("update resources set title").
		WithArgs(title, "res-1").
		WillReturnRows(rows)

	got, err := s.Resources(ctx).Update(ctx, "res-1", store.ResourceUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != title {
		t.Fatalf("title not updated: %+v", got)
	}
	if got.FileURL != "/files/documents/u1/1.pdf" {
		t.Fatalf("file_url must survive a title-only update: %+v", got)
	}
}

func TestDeletePromptNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("delete from prompts").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Prompts(ctx).Delete(ctx, "missing"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
