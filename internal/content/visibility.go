package content

import "strings"

// CategoryAll is the sentinel category that disables category narrowing.
const CategoryAll = "Tous"

// PromptVisible decides whether a prompt is shown to the viewer. Admins
// see everything; everyone else sees network-wide prompts plus the ones
// authored inside their own structure.
func PromptVisible(p Prompt, viewer Viewer) bool {
	if viewer.Role.IsAdmin() {
		return true
	}
	if p.Scope == ScopeNetwork {
		return true
	}
	return p.StructureID != "" && p.StructureID == viewer.StructureID
}

// ResourceVisible decides whether a resource is shown to the viewer.
func ResourceVisible(r Resource, viewer Viewer) bool {
	if viewer.Role.IsAdmin() {
		return true
	}
	if r.AccessScope == AccessGlobal {
		return true
	}
	return r.TargetStructureID != "" && r.TargetStructureID == viewer.StructureID
}

// MatchesQuery reports whether the prompt matches a free-text search over
// title, content and tags. Case-insensitive substring; an empty query
// matches everything.
func MatchesQuery(p Prompt, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Content), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// MatchesCategory reports whether the prompt carries the selected
// category. CategoryAll and the empty string match everything.
func MatchesCategory(p Prompt, category string) bool {
	category = strings.TrimSpace(category)
	if category == "" || category == CategoryAll {
		return true
	}
	if p.Category == category {
		return true
	}
	for _, tag := range p.Tags {
		if tag == category {
			return true
		}
	}
	return false
}

// FilterPrompts projects the fetched set down to what the viewer may see,
// further narrowed by search query and category. Pure; input order is
// preserved.
func FilterPrompts(prompts []Prompt, viewer Viewer, query, category string) []Prompt {
	out := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		if !PromptVisible(p, viewer) {
			continue
		}
		if !MatchesQuery(p, query) {
			continue
		}
		if !MatchesCategory(p, category) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterResources projects the fetched set down to what the viewer may see.
func FilterResources(resources []Resource, viewer Viewer) []Resource {
	out := make([]Resource, 0, len(resources))
	for _, r := range resources {
		if ResourceVisible(r, viewer) {
			out = append(out, r)
		}
	}
	return out
}

// DisplayGroup buckets a resource into one of four layout groups. Purely
// presentational; storage makes no distinction.
func DisplayGroup(t FileType) string {
	switch t {
	case FileTypeText:
		return "articles"
	case FileTypeVideo:
		return "videos"
	case FileTypeLink:
		return "tools"
	default:
		return "files"
	}
}
