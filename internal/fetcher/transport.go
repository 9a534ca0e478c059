package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrNoResult er sentinel-verdien for "ikke noe svar etter uttømt
// retry-budsjett". Kallere skal stoppe den aktuelle arbeidslinjen og gå
// videre med det de har, aldri krasje kjøringen.
var ErrNoResult = errors.New("ikke noe svar etter gjentatte forsøk")

const (
	maxAttempts       = 3
	serverRetryMax    = 5
	rateLimitLowWater = 10
	requestTimeout    = 30 * time.Second
)

// Sikkerhetsmargin etter annonsert reset-tidspunkt. Variabel for testbarhet.
var RateLimitMargin = 5 * time.Second

// Injecter en klient (for testbarhet)
var HttpClient = &http.Client{Timeout: requestTimeout}

// Request er ett fullt formet kall mot GitHub-APIet.
type Request struct {
	Method string
	URL    string
	Body   []byte

	// AllowNotFound gjør 404 til et gyldig svar i stedet for en feil,
	// for eksistens-prober. 404 retryes aldri.
	AllowNotFound bool
}

// Response er et vellykket (eller eksplisitt tillatt 404) svar.
type Response struct {
	StatusCode int
	Body       []byte

	remaining   int
	resetAt     time.Time
	hasRateInfo bool
}

// Client utfører autentiserte HTTP-kall med to lag retry: en indre adapter
// (eksponentiell backoff på 5xx og tilkoblingsfeil, 5 forsøk) og en ytre
// begrenset løkke (3 forsøk med fast pause). Etter uttømt budsjett
// returneres ErrNoResult.
type Client struct {
	Token string

	// WatchRateLimit slår på kvote-samarbeid: etter hvert vellykkede kall
	// leses X-RateLimit-Remaining/-Reset, og faller kvoten under 10 sover
	// vi til reset-tidspunktet pluss en liten margin. Blokkerende med
	// vilje, hele jobben er én tråd.
	WatchRateLimit bool

	// Pausene i den ytre løkka. Egne felt slik at tester kan krympe dem.
	TimeoutDelay time.Duration
	ConnectDelay time.Duration
	RequestDelay time.Duration

	// Retry er den indre adapteren. Eksponert slik at tester kan skru
	// ned backoff-ventetidene.
	Retry *retryablehttp.Client
}

func NewClient(token string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = serverRetryMax
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 30 * time.Second
	rc.HTTPClient = HttpClient
	rc.Logger = nil

	return &Client{
		Token:        token,
		TimeoutDelay: 5 * time.Second,
		ConnectDelay: 5 * time.Second,
		RequestDelay: 3 * time.Second,
		Retry:        rc,
	}
}

// Do utfører ett kall. Transiente feil er usynlige for kalleren ved
// suksess, og ender som ErrNoResult når budsjettet er brukt opp.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.once(ctx, r)
		if err == nil {
			c.cooperateOnRateLimit(resp)
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		delay := c.classifyDelay(err)
		slog.Warn("Kall feilet, prøver igjen",
			"url", r.URL, "forsøk", attempt, "av", maxAttempts, "pause", delay.String(), "error", err)
		if attempt < maxAttempts {
			time.Sleep(delay)
		}
	}

	slog.Error("Ga opp etter gjentatte forsøk", "url", r.URL)
	return nil, fmt.Errorf("%w: %s", ErrNoResult, r.URL)
}

func (c *Client) once(ctx context.Context, r Request) (*Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, r.Method, r.URL, r.Body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if r.Method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Retry.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("Klarte ikke å lukke body", "error", cerr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	out := &Response{StatusCode: resp.StatusCode, Body: body}
	out.readRateHeaders(resp.Header)

	if resp.StatusCode == http.StatusNotFound && r.AllowNotFound {
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GitHub API-feil: status %d – %s", resp.StatusCode, string(body))
	}
	return out, nil
}

// classifyDelay velger pause etter feiltype: timeout og tilkoblingsfeil
// har egne pauser, alt annet en kortere.
func (c *Client) classifyDelay(err error) time.Duration {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return c.TimeoutDelay
	}
	var operr *net.OpError
	if errors.As(err, &operr) {
		return c.ConnectDelay
	}
	return c.RequestDelay
}

func (r *Response) readRateHeaders(h http.Header) {
	rem := h.Get("X-RateLimit-Remaining")
	if rem == "" {
		return
	}
	n, err := strconv.Atoi(rem)
	if err != nil {
		return
	}
	r.remaining = n
	r.hasRateInfo = true
	r.resetAt = time.Now().Add(time.Minute)
	if ts, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		r.resetAt = time.Unix(ts, 0)
	}
}

func (c *Client) cooperateOnRateLimit(resp *Response) {
	if !c.WatchRateLimit || !resp.hasRateInfo || resp.remaining >= rateLimitLowWater {
		return
	}

	// Klokker kan være i utakt med reset-tidspunktet, så venting under
	// null klemmes til null.
	wait := time.Until(resp.resetAt) + RateLimitMargin
	if wait < 0 {
		wait = 0
	}
	slog.Warn("Nær rate limit, venter til kvoten nullstilles",
		"gjenstår", resp.remaining, "venter", wait.Truncate(time.Second).String())
	time.Sleep(wait)
}
