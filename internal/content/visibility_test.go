package content

import (
	"testing"

	"github.com/DoukyDPA/mission-ia/internal/auth"
)

var (
	lyonViewer  = Viewer{ProfileID: "p-lyon", Role: auth.RoleMember, StructureID: "struct-lyon"}
	parisViewer = Viewer{ProfileID: "p-paris", Role: auth.RoleMember, StructureID: "struct-paris"}
	adminViewer = Viewer{ProfileID: "p-admin", Role: auth.RoleAdmin}
)

func TestPromptVisible(t *testing.T) {
	local := Prompt{ID: "1", Scope: ScopeLocal, StructureID: "struct-lyon"}
	network := Prompt{ID: "2", Scope: ScopeNetwork, StructureID: "struct-paris"}
	orphan := Prompt{ID: "3", Scope: ScopeLocal}

	cases := []struct {
		name   string
		prompt Prompt
		viewer Viewer
		want   bool
	}{
		{"own structure", local, lyonViewer, true},
		{"other structure", local, parisViewer, false},
		{"network scope crosses structures", network, lyonViewer, true},
		{"admin sees local of any structure", local, adminViewer, true},
		{"orphan local prompt hidden from members", orphan, lyonViewer, false},
		{"admin sees orphan", orphan, adminViewer, true},
	}
	for _, tc := range cases {
		if got := PromptVisible(tc.prompt, tc.viewer); got != tc.want {
			t.Fatalf("%s: PromptVisible=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResourceVisible(t *testing.T) {
	global := Resource{ID: "1", AccessScope: AccessGlobal}
	lyonOnly := Resource{ID: "2", AccessScope: AccessLocal, TargetStructureID: "struct-lyon"}
	parisOnly := Resource{ID: "3", AccessScope: AccessLocal, TargetStructureID: "struct-paris"}

	if !ResourceVisible(global, lyonViewer) {
		t.Fatal("global resource must be visible to every member")
	}
	if !ResourceVisible(lyonOnly, lyonViewer) {
		t.Fatal("targeted resource must be visible to its structure")
	}
	// Conseiller in Lyon must not see a resource targeted at Paris.
	if ResourceVisible(parisOnly, lyonViewer) {
		t.Fatal("targeted resource leaked across structures")
	}
	if !ResourceVisible(parisOnly, adminViewer) {
		t.Fatal("admin must bypass targeting")
	}
}

func TestMatchesQuery(t *testing.T) {
	p := Prompt{
		Title:   "Synthèse d'entretien jeune",
		Content: "Rédige une synthèse formelle pour le dossier.",
		Tags:    []string{"Administratif", "Suivi dossier"},
	}
	if !MatchesQuery(p, "") {
		t.Fatal("empty query must match")
	}
	if !MatchesQuery(p, "SYNTHÈSE") {
		t.Fatal("title match should be case-insensitive")
	}
	if !MatchesQuery(p, "dossier.") {
		t.Fatal("content substring should match")
	}
	if !MatchesQuery(p, "suivi") {
		t.Fatal("tag substring should match")
	}
	if MatchesQuery(p, "recrutement") {
		t.Fatal("unrelated query must not match")
	}
}

func TestMatchesCategory(t *testing.T) {
	p := Prompt{Category: "Administratif", Tags: []string{"Méthode"}}
	if !MatchesCategory(p, CategoryAll) || !MatchesCategory(p, "") {
		t.Fatal("Tous and empty must match everything")
	}
	if !MatchesCategory(p, "Administratif") {
		t.Fatal("category field should match")
	}
	if !MatchesCategory(p, "Méthode") {
		t.Fatal("tag should satisfy category narrowing")
	}
	if MatchesCategory(p, "Direction") {
		t.Fatal("unrelated category must not match")
	}
}

func TestFilterPromptsPreservesOrder(t *testing.T) {
	prompts := []Prompt{
		{ID: "a", Scope: ScopeNetwork, Title: "CV express"},
		{ID: "b", Scope: ScopeLocal, StructureID: "struct-paris", Title: "CV local Paris"},
		{ID: "c", Scope: ScopeLocal, StructureID: "struct-lyon", Title: "CV local Lyon"},
	}
	got := FilterPrompts(prompts, lyonViewer, "cv", "")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected filtered set: %+v", got)
	}
}

func TestDisplayGroup(t *testing.T) {
	cases := map[FileType]string{
		FileTypeText:  "articles",
		FileTypeVideo: "videos",
		FileTypeLink:  "tools",
		FileTypeFile:  "files",
		FileTypePDF:   "files",
	}
	for ft, want := range cases {
		if got := DisplayGroup(ft); got != want {
			t.Fatalf("DisplayGroup(%s)=%s, want %s", ft, got, want)
		}
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Jean Dupont": "JE",
		"sarah":       "SA",
		"é":           "É",
		"":            "U",
	}
	for name, want := range cases {
		if got := Initials(name); got != want {
			t.Fatalf("Initials(%q)=%q, want %q", name, got, want)
		}
	}
}

func TestDisplayNameFallsBackToLocalPart(t *testing.T) {
	p := Profile{Email: "jean.dupont@ml-lyon.fr"}
	if got := p.DisplayName(); got != "jean.dupont" {
		t.Fatalf("unexpected display name: %q", got)
	}
	p.FullName = "Jean Dupont"
	if got := p.DisplayName(); got != "Jean Dupont" {
		t.Fatalf("unexpected display name: %q", got)
	}
}
