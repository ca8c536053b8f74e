// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/reservesd/reservesd/internal/log"
	"github.com/reservesd/reservesd/internal/reservation"
)

// HTTPClient is a Client backed by an HTTP catalogue service. Its
// request rate is bounded so a bulk updateAll() fanning out across
// many enabled rules cannot overrun the upstream service (SPEC_FULL.md §4.F).
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
}

// NewHTTPClient builds an HTTPClient against baseURL, allowing up to
// requestsPerSecond outbound requests with a burst of the same size.
func NewHTTPClient(baseURL string, requestsPerSecond float64) *HTTPClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &HTTPClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)),
	}
}

func (c *HTTPClient) FindByID(ctx context.Context, id int64, withExtended bool) ([]reservation.Program, error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))
	if withExtended {
		q.Set("extended", "true")
	}
	var out []reservation.Program
	if err := c.get(ctx, "/programs", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) FindByRule(ctx context.Context, opt SearchOption) ([]reservation.Program, error) {
	q := encodeSearchOption(opt)
	var out []reservation.Program
	if err := c.get(ctx, "/programs/search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("catalogue rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build catalogue request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("catalogue request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithComponent("catalogue").Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("catalogue returned non-200 response")
		return fmt.Errorf("catalogue request %s: status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func encodeSearchOption(opt SearchOption) url.Values {
	q := url.Values{}
	q.Set("week", strconv.Itoa(opt.Week))
	setStr(q, "keyword", opt.Keyword)
	setStr(q, "ignoreKeyword", opt.IgnoreKeyword)
	setBool(q, "caseSensitive", opt.CaseSensitive)
	setBool(q, "regex", opt.Regex)
	setBool(q, "title", opt.Title)
	setBool(q, "description", opt.Description)
	setBool(q, "extended", opt.Extended)
	setBool(q, "gr", opt.GR)
	setBool(q, "bs", opt.BS)
	setBool(q, "cs", opt.CS)
	setBool(q, "sky", opt.Sky)
	setStr(q, "station", opt.Station)
	setStr(q, "genre1", opt.GenreLevel1)
	setStr(q, "genre2", opt.GenreLevel2)
	setStr(q, "startTime", opt.StartTime)
	setStr(q, "timeRange", opt.TimeRange)
	setBool(q, "isFree", opt.IsFree)
	setInt(q, "durationMin", opt.DurationMinMin)
	setInt(q, "durationMax", opt.DurationMinMax)
	return q
}

func setStr(q url.Values, key string, v *string) {
	if v != nil {
		q.Set(key, *v)
	}
}

func setBool(q url.Values, key string, v *bool) {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
}

func setInt(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}
