package memory

import (
	"context"

	"github.com/DoukyDPA/mission-ia/internal/content"
)

// Demo identifiers are stable so the preview mode behaves the same on
// every start.
const (
	StructureLyonID      = "struct-lyon"
	StructureParisID     = "struct-paris"
	StructureMarseilleID = "struct-marseille"

	ProfileJeanID  = "profile-jean"
	ProfileSarahID = "profile-sarah"
	ProfileAdminID = "profile-admin"

	PromptSyntheseID    = "prompt-synthese"
	PromptAppelProjetID = "prompt-appel-projet"
	PromptSimulationID  = "prompt-simulation"

	ResourceProcedureLyonID = "resource-procedure-lyon"
)

// Seeded returns a store populated with the demo dataset used when no
// database is configured.
func Seeded() *Store {
	s := New()
	ctx := context.Background()

	structures := []content.Structure{
		{ID: StructureLyonID, Name: "Mission Locale de Lyon", City: "Lyon"},
		{ID: StructureParisID, Name: "Mission Locale de Paris", City: "Paris"},
		{ID: StructureMarseilleID, Name: "Mission Locale de Marseille", City: "Marseille"},
	}
	for i := range structures {
		_ = s.Structures(ctx).Create(ctx, &structures[i])
	}

	profiles := []content.Profile{
		{ID: ProfileJeanID, Email: "jean.dupont@ml-lyon.fr", FullName: "Jean Dupont", Role: "Conseiller", StructureID: StructureLyonID},
		{ID: ProfileSarahID, Email: "sarah.martin@ml-paris.fr", FullName: "Sarah Martin", Role: "Directrice", StructureID: StructureParisID},
		{ID: ProfileAdminID, Email: "formateur@ia.fr", FullName: "Formateur National", Role: "Admin"},
	}
	for i := range profiles {
		_ = s.Profiles(ctx).Create(ctx, &profiles[i])
	}

	domains := []content.AllowedDomain{
		{ID: "domain-lyon", Domain: "ml-lyon.fr", StructureID: StructureLyonID},
		{ID: "domain-paris", Domain: "ml-paris.fr", StructureID: StructureParisID},
	}
	for i := range domains {
		_ = s.Domains(ctx).Create(ctx, &domains[i])
	}

	prompts := []content.Prompt{
		{
			ID:          PromptSyntheseID,
			Title:       "Synthèse d'entretien jeune",
			Content:     "Agis comme un conseiller en insertion professionnelle. Voici les notes brutes prises lors de mon entretien : [Insérer notes]. Rédige une synthèse formelle de 10 lignes pour le dossier administratif.",
			Category:    "Administratif",
			Tags:        []string{"Administratif", "Suivi dossier"},
			Scope:       content.ScopeLocal,
			StructureID: StructureLyonID,
			AuthorID:    ProfileJeanID,
			AuthorName:  "Jean Dupont",
			AuthorRole:  "Conseiller",
			Avatar:      "JE",
			LikesCount:  12,
		},
		{
			ID:          PromptAppelProjetID,
			Title:       "Générateur d'arguments pour Appel à Projet",
			Content:     "Tu es expert en financement public. Aide-moi à rédiger la partie 'Impact attendu' pour un appel à projet sur l'inclusion numérique : [Insérer chiffres].",
			Category:    "Financement",
			Tags:        []string{"Direction", "Financement"},
			Scope:       content.ScopeNetwork,
			StructureID: StructureParisID,
			AuthorID:    ProfileSarahID,
			AuthorName:  "Sarah Martin",
			AuthorRole:  "Directrice",
			Avatar:      "SA",
			LikesCount:  24,
		},
		{
			ID:          PromptSimulationID,
			Title:       "Simulateur d'entretien d'embauche",
			Content:     "Tu es un recruteur exigeant pour un poste de vendeur. Pose-moi une question à la fois, attends ma réponse, puis commente avant de passer à la suivante.",
			Category:    "Simulation",
			Tags:        []string{"Relation Jeunes", "Simulation"},
			Scope:       content.ScopeNetwork,
			StructureID: StructureMarseilleID,
			AuthorID:    ProfileJeanID,
			AuthorName:  "Karim Benali",
			AuthorRole:  "Conseiller",
			Avatar:      "KA",
			LikesCount:  15,
		},
	}
	for i := range prompts {
		_ = s.Prompts(ctx).Create(ctx, &prompts[i])
	}

	resources := []content.Resource{
		{
			ID:          "resource-bases",
			Title:       "Module 1 : Les bases du Prompt Engineering",
			Category:    "Formation",
			FileType:    content.FileTypePDF,
			FileURL:     "/files/documents/demo/module-1.pdf",
			AccessScope: content.AccessGlobal,
			UploadedBy:  ProfileAdminID,
		},
		{
			ID:          "resource-atelier-cv",
			Title:       "Atelier : Utiliser l'IA pour les CVs",
			Category:    "Formation",
			FileType:    content.FileTypeVideo,
			FileURL:     "https://example.org/ateliers/cv-ia",
			AccessScope: content.AccessGlobal,
			UploadedBy:  ProfileAdminID,
		},
		{
			ID:                ResourceProcedureLyonID,
			Title:             "Procédure interne : Inscription Parcours",
			Category:          "Interne",
			FileType:          content.FileTypeText,
			Description:       "Procédure pas à pas pour l'inscription d'un jeune au dispositif Parcours.",
			AccessScope:       content.AccessLocal,
			TargetStructureID: StructureLyonID,
			UploadedBy:        ProfileAdminID,
		},
	}
	for i := range resources {
		_ = s.Resources(ctx).Create(ctx, &resources[i])
	}

	return s
}
