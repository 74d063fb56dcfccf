package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/fdapi-mcp/internal/constants"
	"github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
)

const (
	itemRoute = constants.ContentPathPrefix + "/{language}/{content_type}/{slug}"
	listRoute = constants.ContentPathPrefix + "/{language}/{content_type}"
)

// FetchItem implements fdapi.ContentClient.FetchItem.
func (c *Client) FetchItem(ctx context.Context, request fdapi.ContentRequest) (*fdapi.ContentItem, error) {
	language, details, err := c.validateCommon(request)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(request.Slug)
	details[fdapi.MetadataSlug] = request.Slug

	if slug == "" {
		return nil, fdapi.NewValidationError(fdapi.CodeInvalidSlug, "slug must not be empty", details)
	}

	rt, err := c.acquire(ctx)
	if err != nil {
		return nil, withDetails(err, details)
	}

	var item fdapi.ContentItem

	metadata := fdapi.CloneMetadata(details)
	metadata[fdapi.MetadataOperation] = fdapi.OperationFetch

	_, err = c.execute(ctx, rt, contentCall{
		path:     contentPath(language, request.ContentType) + "/" + url.PathEscape(slug),
		route:    itemRoute,
		metadata: metadata,
		decode: func(body []byte) error {
			return json.Unmarshal(body, &item)
		},
	})
	if err != nil {
		return nil, withDetails(err, details)
	}

	return &item, nil
}

// ListItems implements fdapi.ContentClient.ListItems.
func (c *Client) ListItems(ctx context.Context, request fdapi.ContentRequest) (*fdapi.ListResult, error) {
	language, details, err := c.validateCommon(request)
	if err != nil {
		return nil, err
	}

	details[fdapi.MetadataPage] = request.Page
	details[fdapi.MetadataLimit] = request.Limit

	if request.Page < 1 {
		return nil, fdapi.NewValidationError(fdapi.CodeInvalidPage,
			fmt.Sprintf("page must be at least 1, got %d", request.Page), details)
	}

	if request.Limit < 1 || request.Limit > constants.MaxLimit {
		return nil, fdapi.NewValidationError(fdapi.CodeInvalidLimit,
			fmt.Sprintf("limit must be between 1 and %d, got %d", constants.MaxLimit, request.Limit), details)
	}

	rt, err := c.acquire(ctx)
	if err != nil {
		return nil, withDetails(err, details)
	}

	result := &fdapi.ListResult{
		ContentType: request.ContentType,
		Language:    language,
	}

	metadata := fdapi.CloneMetadata(details)
	metadata[fdapi.MetadataOperation] = fdapi.OperationList

	_, err = c.execute(ctx, rt, contentCall{
		path:  contentPath(language, request.ContentType),
		route: listRoute,
		query: url.Values{
			"page":  []string{strconv.Itoa(request.Page)},
			"limit": []string{strconv.Itoa(request.Limit)},
		},
		metadata: metadata,
		decode: func(body []byte) error {
			return decodeList(body, request, result)
		},
	})
	if err != nil {
		return nil, withDetails(err, details)
	}

	return result, nil
}

// validateCommon checks the language and content type shared by both
// operations and returns the resolved language with the error details.
func (c *Client) validateCommon(request fdapi.ContentRequest) (fdapi.Language, map[string]interface{}, error) {
	language := request.Language
	if language == "" {
		language = c.settings.DefaultLanguage
	}

	details := map[string]interface{}{
		fdapi.MetadataContentType: string(request.ContentType),
		fdapi.MetadataLanguage:    string(language),
	}

	if !language.Valid() {
		details["supported_languages"] = fdapi.Languages()

		return "", details, fdapi.NewValidationError(fdapi.CodeInvalidLanguage,
			fmt.Sprintf("unsupported language %q", language), details)
	}

	if !request.ContentType.Valid() {
		return "", details, fdapi.NewValidationError(fdapi.CodeInvalidContentType,
			fmt.Sprintf("invalid content type %q", request.ContentType), details)
	}

	return language, details, nil
}

func contentPath(language fdapi.Language, contentType fdapi.ContentType) string {
	return constants.ContentPathPrefix + "/" + string(language) + "/" + string(contentType)
}

func withDetails(err error, details map[string]interface{}) error {
	fdErr, ok := fdapi.AsError(err)
	if !ok {
		return err
	}

	return fdErr.WithDetails(details)
}

// listPaging holds pagination fields, found either at the top level of a
// list body or nested under "pagination" or "paging".
type listPaging struct {
	Page    *int  `json:"page"`
	Limit   *int  `json:"limit"`
	PerPage *int  `json:"per_page"`
	Total   *int  `json:"total"`
	HasNext *bool `json:"has_next"`
	HasPrev *bool `json:"has_prev"`
}

type listBody struct {
	listPaging

	Items      *[]fdapi.ContentItem `json:"items"`
	Pagination *listPaging          `json:"pagination"`
	Paging     *listPaging          `json:"paging"`
}

func decodeList(body []byte, request fdapi.ContentRequest, result *fdapi.ListResult) error {
	var decoded listBody

	err := json.Unmarshal(body, &decoded)
	if err != nil {
		return fmt.Errorf("decoding list: %w", err)
	}

	if decoded.Items == nil {
		return fmt.Errorf("%w: items", fdapi.ErrMissingField)
	}

	paging := decoded.listPaging
	for _, nested := range []*listPaging{decoded.Pagination, decoded.Paging} {
		if nested != nil {
			paging = paging.merge(*nested)
		}
	}

	result.Items = *decoded.Items
	result.Page = firstInt(request.Page, paging.Page)
	result.Limit = firstInt(request.Limit, paging.Limit, paging.PerPage)
	result.Total = paging.Total
	result.HasNext = paging.HasNext
	result.HasPrev = paging.HasPrev

	return nil
}

// merge fills unset fields of p from other.
func (p listPaging) merge(other listPaging) listPaging {
	if p.Page == nil {
		p.Page = other.Page
	}

	if p.Limit == nil {
		p.Limit = other.Limit
	}

	if p.PerPage == nil {
		p.PerPage = other.PerPage
	}

	if p.Total == nil {
		p.Total = other.Total
	}

	if p.HasNext == nil {
		p.HasNext = other.HasNext
	}

	if p.HasPrev == nil {
		p.HasPrev = other.HasPrev
	}

	return p
}

// firstInt returns the first non-nil value, or fallback.
func firstInt(fallback int, values ...*int) int {
	for _, value := range values {
		if value != nil {
			return *value
		}
	}

	return fallback
}
