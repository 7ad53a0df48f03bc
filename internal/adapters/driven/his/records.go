package his

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
)

// Ensure Records implements the record port.
var _ driven.RecordStore = (*Records)(nil)

// Records is the form record endpoint of a Client.
type Records struct {
	c *Client
}

// Records returns the record store backed by this client.
func (c *Client) Records() *Records {
	return &Records{c: c}
}

// Create posts a new record to the collection.
func (r *Records) Create(ctx context.Context, resource string, payload domain.Payload) (*domain.Record, error) {
	var data map[string]any
	if err := r.c.do(ctx, "create "+resource, http.MethodPost, resourcePath(resource), nil, payload, &data); err != nil {
		return nil, err
	}
	return recordFromMap(data), nil
}

// Update replaces a record.
func (r *Records) Update(ctx context.Context, resource, id string, payload domain.Payload) (*domain.Record, error) {
	var data map[string]any
	if err := r.c.do(ctx, "update "+resource+" "+id, http.MethodPut, resourcePath(resource, id), nil, payload, &data); err != nil {
		return nil, err
	}
	record := recordFromMap(data)
	if record.ID == "" {
		record.ID = id
	}
	return record, nil
}

// Get fetches a single record.
func (r *Records) Get(ctx context.Context, resource, id string) (*domain.Record, error) {
	var data map[string]any
	if err := r.c.do(ctx, "get "+resource+" "+id, http.MethodGet, resourcePath(resource, id), nil, nil, &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("get %s %s: %w", resource, id, domain.ErrNotFound)
	}
	return recordFromMap(data), nil
}

// List fetches records of a collection.
func (r *Records) List(ctx context.Context, resource string, opts domain.ListOptions) ([]domain.Record, error) {
	params := url.Values{}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Search != "" {
		params.Set("search", opts.Search)
	}

	var rows recordList
	if err := r.c.do(ctx, "list "+resource, http.MethodGet, resourcePath(resource), params, nil, &rows); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, *recordFromMap(row))
	}
	return records, nil
}

// Delete removes a record.
func (r *Records) Delete(ctx context.Context, resource, id string) error {
	return r.c.do(ctx, "delete "+resource+" "+id, http.MethodDelete, resourcePath(resource, id), nil, nil, nil)
}

// recordList accepts a bare array or any object carrying the rows under "data".
type recordList []map[string]any

func (l *recordList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Data []map[string]any `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return err
		}
		*l = wrapped.Data
		return nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return err
	}
	*l = rows
	return nil
}

func recordFromMap(data map[string]any) *domain.Record {
	record := &domain.Record{Data: data}
	if data == nil {
		record.Data = map[string]any{}
		return record
	}
	for _, key := range []string{"_id", "id"} {
		if id, ok := data[key].(string); ok && id != "" {
			record.ID = id
			break
		}
	}
	record.CreatedAt = timestamp(data["createdAt"])
	record.UpdatedAt = timestamp(data["updatedAt"])
	return record
}

func timestamp(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
