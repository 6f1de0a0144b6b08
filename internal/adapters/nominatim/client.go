// Package nominatim geocodes free-text addresses with OpenStreetMap Nominatim.
package nominatim

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"immodash/internal/adapters/observability"
	"immodash/internal/domain"
)

const (
	DefaultBase    = "https://nominatim.openstreetmap.org"
	defaultCountry = "ci"
	service        = "nominatim"
)

type Client struct {
	base    string
	hc      *http.Client
	email   string
	country string
	rl      *rate.Limiter
}

type Option func(*Client)

// WithCountry restricts results to an ISO 3166-1 alpha-2 code list ("ci" by default).
func WithCountry(codes string) Option { return func(c *Client) { c.country = codes } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// New builds a client. The public instance allows one request per second, which is the default.
func New(base, email string, rps float64, opts ...Option) *Client {
	if base == "" {
		base = DefaultBase
	}
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
		email:   email,
		country: defaultCountry,
		rl:      rate.NewLimiter(rate.Limit(rps), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup returns the best match for query. ok is false when Nominatim has none.
func (c *Client) Lookup(ctx context.Context, query string) (domain.Coordinates, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Coordinates{}, false, nil
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if c.country != "" {
		params.Set("countrycodes", c.country)
	}
	if c.email != "" {
		params.Set("email", c.email)
	}

	var out []place
	if err := c.get(ctx, c.base+"/search?"+params.Encode(), &out); err != nil {
		return domain.Coordinates{}, false, err
	}
	if len(out) == 0 {
		return domain.Coordinates{}, false, nil
	}
	lat, errLat := strconv.ParseFloat(out[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(out[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim: bad coordinates %q,%q", out[0].Lat, out[0].Lon)
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, true, nil
}

var (
	ErrForbidden = errors.New("nominatim: forbidden")
	ErrBadStatus = errors.New("nominatim: bad status")
)

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, u string, out any) error {
	var lastErr error
	for i := 0; i < 4; i++ {
		// every attempt counts against the provider's quota
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Language", "fr")
		req.Header.Set("User-Agent", "immodash/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, "search", 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, "search", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusForbidden:
			// usage policy block; retrying makes it worse
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("%w %d", ErrBadStatus, resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("%w %d: %s", ErrBadStatus, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 500ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 500 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
