package models

import (
	"strings"
)

// Language tags the source a card came from.
type Language string

const (
	LanguageEnglish  Language = "EN"
	LanguageJapanese Language = "JPN"
)

// AllLanguages returns every language a card can be tagged with.
func AllLanguages() []Language {
	return []Language{LanguageEnglish, LanguageJapanese}
}

// DisplayName is the human readable name used in exports and the UI.
func (l Language) DisplayName() string {
	if l == LanguageJapanese {
		return "Japanese"
	}
	return "English"
}

// NormalizeLanguage maps ISO codes, display names and source tags to a
// Language. Unknown and empty values default to English, matching cards
// that arrive from the primary source without a tag.
func NormalizeLanguage(lang string) Language {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "japanese", "jp", "ja", "jpn":
		return LanguageJapanese
	default:
		return LanguageEnglish
	}
}

// Scope selects which sources a search consults.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeEnglish  Scope = "en"
	ScopeJapanese Scope = "jpn"
)

// ParseScope parses the language query parameter. Empty means ScopeAll.
func ParseScope(s string) (Scope, bool) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, true
	case ScopeEnglish:
		return ScopeEnglish, true
	case ScopeJapanese:
		return ScopeJapanese, true
	}
	return "", false
}

// Next cycles all -> en -> jpn -> all.
func (s Scope) Next() Scope {
	switch s {
	case ScopeAll:
		return ScopeEnglish
	case ScopeEnglish:
		return ScopeJapanese
	default:
		return ScopeAll
	}
}

// SearchField is the card attribute a free-text search matches against.
type SearchField string

const (
	FieldName   SearchField = "name"
	FieldSet    SearchField = "set"
	FieldArtist SearchField = "artist"
)

// ParseSearchField parses the type query parameter. Empty means FieldName.
func ParseSearchField(s string) (SearchField, bool) {
	switch SearchField(strings.ToLower(strings.TrimSpace(s))) {
	case "", FieldName:
		return FieldName, true
	case FieldSet:
		return FieldSet, true
	case FieldArtist:
		return FieldArtist, true
	}
	return "", false
}

// Next cycles name -> set -> artist -> name.
func (f SearchField) Next() SearchField {
	switch f {
	case FieldName:
		return FieldSet
	case FieldSet:
		return FieldArtist
	default:
		return FieldName
	}
}
