package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/config"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

// errorBodyLimit caps how much of a failed response ends up in the error.
const errorBodyLimit = 512

type SupabaseOptions struct {
	BaseURL  string
	APIKey   string
	Table    string
	PageSize int
}

// SupabaseFactory talks to the PostgREST endpoint of a Supabase project. The
// HTTP client is shared; a session only carries request state.
type SupabaseFactory struct {
	client *http.Client
	opts   SupabaseOptions
}

type supabaseRepository struct {
	factory *SupabaseFactory
}

// supabaseRow is one ph_logs row as PostgREST returns it.
type supabaseRow struct {
	EventTime json.Number `json:"event_time"`
	PH        *float64    `json:"ph"`
}

// StatusError is a non-2xx PostgREST response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("supabase: unexpected status %s", e.Status)
	}
	return fmt.Sprintf("supabase: unexpected status %s: %s", e.Status, e.Body)
}

var _ Factory = (*SupabaseFactory)(nil)

func NewSupabaseFactory(client *http.Client, opts SupabaseOptions) *SupabaseFactory {
	if client == nil {
		client = http.DefaultClient
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Table == "" {
		opts.Table = "ph_logs"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	return &SupabaseFactory{client: client, opts: opts}
}

func (f *SupabaseFactory) Backend() string { return config.BackendSupabase }

func (f *SupabaseFactory) Open(context.Context) (ObservationRepository, error) {
	return &supabaseRepository{factory: f}, nil
}

// Ping reads at most one row, which checks reachability, the key and the table.
func (f *SupabaseFactory) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "event_time")
	q.Set("limit", "1")
	if _, err := f.get(ctx, q); err != nil {
		return fmt.Errorf("supabase ping: %w", err)
	}
	return nil
}

func (f *SupabaseFactory) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func (r *supabaseRepository) GetObservations(ctx context.Context, from, to time.Time) ([]types.Observation, error) {
	fromMs := strconv.FormatInt(ToEpochMillis(from), 10)
	toMs := strconv.FormatInt(ToEpochMillis(to), 10)

	return FetchAllPages(ctx, config.BackendSupabase, r.factory.opts.PageSize,
		func(ctx context.Context, offset, limit int) ([]types.Observation, int, error) {
			q := url.Values{}
			q.Set("select", "event_time,ph")
			q.Add("event_time", "gte."+fromMs)
			q.Add("event_time", "lte."+toMs)
			q.Set("order", "event_time.asc,id.asc")
			q.Set("offset", strconv.Itoa(offset))
			q.Set("limit", strconv.Itoa(limit))

			rows, err := r.factory.get(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			obs, err := decodeRows(rows)
			if err != nil {
				return nil, 0, err
			}
			return obs, len(rows), nil
		})
}

func (r *supabaseRepository) Close() error { return nil }

func (f *SupabaseFactory) get(ctx context.Context, q url.Values) ([]supabaseRow, error) {
	endpoint := f.opts.BaseURL + "/rest/v1/" + url.PathEscape(f.opts.Table) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", f.opts.APIKey)
	req.Header.Set("Authorization", "Bearer "+f.opts.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var rows []supabaseRow
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode supabase response: %w", err)
	}
	return rows, nil
}

// decodeRows normalizes event_time and drops rows without a pH value.
func decodeRows(rows []supabaseRow) ([]types.Observation, error) {
	out := make([]types.Observation, 0, len(rows))
	for _, row := range rows {
		if row.PH == nil {
			continue
		}
		ms, err := parseEventTime(row.EventTime)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Observation{Timestamp: FromEpochMillis(ms), PH: *row.PH})
	}
	return out, nil
}

func parseEventTime(n json.Number) (int64, error) {
	if ms, err := n.Int64(); err == nil {
		return ms, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid event_time %q: %w", n.String(), err)
	}
	return int64(f), nil
}
