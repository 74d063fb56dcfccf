package fdapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrMissingField    = errors.New("missing required field")
	ErrUnknownLanguage = errors.New("unknown language")
)

// Language is a content language code accepted by the remote service.
type Language string

// Supported languages.
const (
	LanguageEnGB Language = "en-gb"
	LanguageFrFR Language = "fr-fr"
	LanguageEsES Language = "es-es"
	LanguageArSA Language = "ar-sa"
	LanguageDeDE Language = "de-de"
	LanguageNdND Language = "nd-nd"
)

// DefaultLanguage is used when neither the caller nor the settings pick one.
const DefaultLanguage = LanguageEnGB

var languages = []Language{
	LanguageEnGB,
	LanguageFrFR,
	LanguageEsES,
	LanguageArSA,
	LanguageDeDE,
	LanguageNdND,
}

// Languages returns the closed set of supported languages.
func Languages() []Language {
	return slices.Clone(languages)
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return slices.Contains(languages, l)
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}

// ParseLanguage converts s into a Language. Matching is exact.
func ParseLanguage(s string) (Language, error) {
	lang := Language(s)
	if !lang.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}

	return lang, nil
}

// ContentType names a category of content sharing the same URL shape.
type ContentType string

var contentTypePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Valid reports whether c can be placed into a content path. Unregistered
// names are accepted as long as they are well formed.
func (c ContentType) Valid() bool {
	return contentTypePattern.MatchString(string(c))
}

// String implements fmt.Stringer.
func (c ContentType) String() string {
	return string(c)
}

// ContentTypeInfo describes a registered content type.
type ContentTypeInfo struct {
	Name        ContentType `json:"name"        yaml:"name"`
	Singular    string      `json:"singular"    yaml:"singular"`
	Plural      string      `json:"plural"      yaml:"plural"`
	Description string      `json:"description" yaml:"description"`
}

var contentTypes = []ContentTypeInfo{
	{Name: "albums", Singular: "album", Plural: "albums", Description: "Photo albums"},
	{Name: "documents", Singular: "document", Plural: "documents", Description: "Downloadable documents"},
	{Name: "photos", Singular: "photo", Plural: "photos", Description: "Individual photos"},
	{Name: "stories", Singular: "story", Plural: "stories", Description: "Editorial stories and articles"},
	{Name: "tags", Singular: "tag", Plural: "tags", Description: "Taxonomy tags"},
	{Name: "events", Singular: "event", Plural: "events", Description: "Scheduled events"},
	{Name: "brightcove-video", Singular: "brightcove_video", Plural: "brightcove_videos", Description: "Brightcove hosted videos"},
	{Name: "diva-video", Singular: "diva_video", Plural: "diva_videos", Description: "DIVA player videos"},
	{Name: "hero-video", Singular: "hero_video", Plural: "hero_videos", Description: "Hero banner videos"},
	{Name: "jwplayer-video", Singular: "jwplayer_video", Plural: "jwplayer_videos", Description: "JW Player videos"},
	{Name: "forms", Singular: "form", Plural: "forms", Description: "Forms"},
	{Name: "teams", Singular: "team", Plural: "teams", Description: "Teams"},
}

// ContentTypes returns the registered content types in registration order.
func ContentTypes() []ContentTypeInfo {
	return slices.Clone(contentTypes)
}

// LookupContentType returns the registry entry for name.
func LookupContentType(name ContentType) (ContentTypeInfo, bool) {
	for _, info := range contentTypes {
		if info.Name == name {
			return info, true
		}
	}

	return ContentTypeInfo{}, false
}

// ContentRequest addresses one item (Slug) or one page (Page, Limit) of a
// content type. An empty Language means the configured default.
type ContentRequest struct {
	ContentType ContentType
	Language    Language
	Slug        string
	Page        int
	Limit       int
}

// NewItemRequest builds a request for a single item.
func NewItemRequest(contentType ContentType, language Language, slug string) ContentRequest {
	return ContentRequest{
		ContentType: contentType,
		Language:    language,
		Slug:        slug,
	}
}

// NewListRequest builds a list request for the given page and limit.
func NewListRequest(contentType ContentType, language Language, page, limit int) ContentRequest {
	return ContentRequest{
		ContentType: contentType,
		Language:    language,
		Page:        page,
		Limit:       limit,
	}
}

// ContentItem is one content entity. Type-specific data is left in Fields
// and any unrecognised top-level keys are kept in Extra.
type ContentItem struct {
	Title         string                 `json:"title"            yaml:"title"`
	Slug          string                 `json:"slug"             yaml:"slug"`
	SelfURL       string                 `json:"selfUrl"          yaml:"self_url"`
	TranslationID string                 `json:"_translationId"   yaml:"translation_id"`
	EntityID      string                 `json:"_entityId"        yaml:"entity_id"`
	Type          string                 `json:"type"             yaml:"type"`
	Fields        map[string]interface{} `json:"fields,omitempty" yaml:"fields,omitempty"`
	Extra         map[string]interface{} `json:"-"                yaml:"extra,omitempty"`
}

// requiredItemFields must be present in every item body.
var requiredItemFields = []string{"slug", "type"}

var knownItemFields = []string{"title", "slug", "selfUrl", "_translationId", "_entityId", "type", "fields"}

// UnmarshalJSON decodes an item, enforcing the required fields and
// collecting unknown keys into Extra.
func (i *ContentItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("decoding content item: %w", err)
	}

	if raw == nil {
		return fmt.Errorf("decoding content item: %w", ErrMissingField)
	}

	for _, name := range requiredItemFields {
		value, ok := raw[name]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	type plain ContentItem

	var item plain

	err = json.Unmarshal(data, &item)
	if err != nil {
		return fmt.Errorf("decoding content item: %w", err)
	}

	for _, name := range knownItemFields {
		delete(raw, name)
	}

	if len(raw) > 0 {
		item.Extra = make(map[string]interface{}, len(raw))

		for key, value := range raw {
			var decoded interface{}

			err = json.Unmarshal(value, &decoded)
			if err != nil {
				return fmt.Errorf("decoding content item field %q: %w", key, err)
			}

			item.Extra[key] = decoded
		}
	}

	*i = ContentItem(item)

	return nil
}

// MarshalJSON encodes the item with Extra flattened back into the top level.
func (i ContentItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(i.Extra)+len(knownItemFields))

	for key, value := range i.Extra {
		out[key] = value
	}

	out["title"] = i.Title
	out["slug"] = i.Slug
	out["selfUrl"] = i.SelfURL
	out["_translationId"] = i.TranslationID
	out["_entityId"] = i.EntityID
	out["type"] = i.Type

	if i.Fields != nil {
		out["fields"] = i.Fields
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding content item: %w", err)
	}

	return data, nil
}

// ListResult is one page of items.
type ListResult struct {
	ContentType ContentType   `json:"content_type"       yaml:"content_type"`
	Language    Language      `json:"language"           yaml:"language"`
	Items       []ContentItem `json:"items"              yaml:"items"`
	Page        int           `json:"page"               yaml:"page"`
	Limit       int           `json:"limit"              yaml:"limit"`
	Total       *int          `json:"total,omitempty"    yaml:"total,omitempty"`
	HasNext     *bool         `json:"has_next,omitempty" yaml:"has_next,omitempty"`
	HasPrev     *bool         `json:"has_prev,omitempty" yaml:"has_prev,omitempty"`
}

// Health states reported by HealthStatus.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// HealthStatus is the result of probing the remote service.
type HealthStatus struct {
	Status     string        `json:"status"            yaml:"status"`
	BaseURL    string        `json:"base_url"          yaml:"base_url"`
	HasAPIKey  bool          `json:"has_api_key"       yaml:"has_api_key"`
	Timeout    time.Duration `json:"timeout"           yaml:"timeout"`
	MaxRetries int           `json:"max_retries"       yaml:"max_retries"`
	Latency    time.Duration `json:"latency"           yaml:"latency"`
	Message    string        `json:"message,omitempty" yaml:"message,omitempty"`
	CheckedAt  time.Time     `json:"checked_at"        yaml:"checked_at"`
}

// Healthy reports whether the probe succeeded.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == HealthStatusHealthy
}
