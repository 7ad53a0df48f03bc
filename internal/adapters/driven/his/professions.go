package his

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
)

// Ensure Client implements the category ports.
var (
	_ driven.SuggestionSource = (*Client)(nil)
	_ driven.DropdownSource   = (*Client)(nil)
)

const professionsPath = "/professions"

// Suggest queries the category-scoped search endpoint.
func (c *Client) Suggest(ctx context.Context, category, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = domain.DefaultSuggestionLimit
	}
	params := url.Values{}
	params.Set("category", category)
	params.Set("search", strings.TrimSpace(query))
	params.Set("limit", strconv.Itoa(limit))

	names, err := c.professions(ctx, "suggest "+category, params)
	if err != nil {
		return nil, err
	}
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Options returns every entry of a category, for dropdowns.
func (c *Client) Options(ctx context.Context, category string) ([]string, error) {
	params := url.Values{}
	params.Set("category", category)
	return c.professions(ctx, "options "+category, params)
}

func (c *Client) professions(ctx context.Context, op string, params url.Values) ([]string, error) {
	var items itemList
	if err := c.do(ctx, op, http.MethodGet, professionsPath, params, nil, &items); err != nil {
		return nil, err
	}
	return domain.SuggestionEnvelope{Data: items}.Names(), nil
}

// itemList accepts a bare item array or an envelope that do left wrapped.
type itemList []domain.SuggestionItem

func (l *itemList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env domain.SuggestionEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return err
		}
		*l = env.Data
		return nil
	}

	var items []domain.SuggestionItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	*l = items
	return nil
}
