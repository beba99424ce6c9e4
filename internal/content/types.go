package content

import (
	"strings"
	"time"

	"github.com/DoukyDPA/mission-ia/internal/auth"
)

// Scope controls who can see a prompt.
type Scope string

const (
	// ScopeLocal keeps the prompt inside its authoring structure.
	ScopeLocal Scope = "local"
	// ScopeNetwork publishes the prompt to every structure in the network.
	ScopeNetwork Scope = "network"
)

// AccessScope controls who can see a resource.
type AccessScope string

const (
	AccessGlobal AccessScope = "global"
	AccessLocal  AccessScope = "local"
)

// FileType tells which payload column carries a resource's content.
type FileType string

const (
	FileTypeFile  FileType = "file"
	FileTypeText  FileType = "text"
	FileTypeLink  FileType = "link"
	FileTypeVideo FileType = "video"
	// FileTypePDF is a legacy value kept for rows imported from the
	// first iteration of the platform. Treated like FileTypeFile.
	FileTypePDF FileType = "pdf"
)

// Structure is a tenant unit: a local office that scopes users and content.
type Structure struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	HasCharter bool      `json:"has_charter"`
	CharterURL string    `json:"charter_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Profile is a registered account bound to a structure.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	StructureID  string    `json:"structure_id,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AllowedDomain is an email-domain allow-list entry enabling self-service
// registration and auto-assignment to a structure.
type AllowedDomain struct {
	ID          string    `json:"id"`
	Domain      string    `json:"domain"`
	StructureID string    `json:"structure_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Prompt is a shared AI prompt. Author fields are denormalized for list
// rendering; tags are presentational and never carry access semantics.
type Prompt struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	Scope       Scope     `json:"scope"`
	StructureID string    `json:"structure_id,omitempty"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name,omitempty"`
	AuthorRole  string    `json:"author_role,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	LikesCount  int       `json:"likes_count"`
	IsFork      bool      `json:"is_fork"`
	ParentID    string    `json:"parent_id,omitempty"`
	// ParentAuthor is stamped at fork time so attribution survives the
	// parent's deletion.
	ParentAuthor string    `json:"parent_author,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Resource is a training document, article, link or video. Exactly one of
// FileURL/Description carries the payload, chosen by FileType.
type Resource struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Category          string      `json:"category"`
	FileType          FileType    `json:"file_type"`
	FileURL           string      `json:"file_url,omitempty"`
	Description       string      `json:"description,omitempty"`
	AccessScope       AccessScope `json:"access_scope"`
	TargetStructureID string      `json:"target_structure_id,omitempty"`
	UploadedBy        string      `json:"uploaded_by,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Viewer is the resolved identity visibility decisions are made against.
type Viewer struct {
	ProfileID   string
	Role        auth.Role
	StructureID string
}

// Initials derives the two-letter avatar shown next to authored content.
func Initials(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "U"
	}
	runes := []rune(name)
	if len(runes) == 1 {
		return strings.ToUpper(string(runes))
	}
	return strings.ToUpper(string(runes[:2]))
}

// DisplayName returns the profile's full name, falling back to the local
// part of the email when the name was never filled in.
func (p Profile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	if at := strings.IndexByte(p.Email, '@'); at > 0 {
		return p.Email[:at]
	}
	return p.Email
}

// Payload returns the content carried by the resource according to its
// file type.
func (r Resource) Payload() string {
	if r.FileType == FileTypeText {
		return r.Description
	}
	return r.FileURL
}
