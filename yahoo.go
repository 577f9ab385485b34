package networth

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"networth/date"
)

// This file contains functions to access the Yahoo Finance chart API.

const yahooBaseURL = "https://query1.finance.yahoo.com"

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// diskcache implements a unique key per day, so the local tmp expires every day.
	key := fmt.Sprintf("%s %s %s", date.Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	file := filepath.Join(os.TempDir(), key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	f.Close()
	return err
}

// daily returns a client with a disk cache that expires every day.
func daily() *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{http.DefaultTransport}
	return client
}

// statusError is a non-200 HTTP response, kept typed so callers can map
// status codes to the error taxonomy.
type statusError struct {
	code int
	url  *url.URL
}

func (e *statusError) Error() string {
	return fmt.Sprintf("cannot http GET %v%v: status %d", e.url.Host, e.url.Path, e.code)
}

// jwget performs an HTTP GET request and unmarshals the JSON response
// into the provided data structure. Non-200 responses come back as a
// *statusError.
func jwget(client *http.Client, addr string, data any) error {
	req, err := http.NewRequest(http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	// Yahoo rejects the default Go user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; networth/1.0)")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, url: resp.Request.URL}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// YahooProvider fetches daily closes from the Yahoo Finance chart API.
// Responses are cached on disk with a daily expiry, so repeated
// rebuilds within a day do not hammer the endpoint.
type YahooProvider struct {
	client  *http.Client
	baseURL string
}

// NewYahooProvider creates a provider against the public Yahoo endpoint.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{client: daily(), baseURL: yahooBaseURL}
}

// DailyClose implements Provider.
func (p *YahooProvider) DailyClose(symbol string, day date.Date) (float64, error) {
	series, err := p.DailySeries(symbol, date.NewRange(day, day))
	if err != nil {
		return 0, err
	}
	close, ok := series.Get(day)
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", symbol, day, ErrPriceUnavailable)
	}
	return close, nil
}

// DailySeries implements Provider. The chart endpoint wants unix-second
// bounds; period2 is exclusive, so it points at the day after span.To.
func (p *YahooProvider) DailySeries(symbol string, span date.Range) (date.History[float64], error) {
	var series date.History[float64]

	addr := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		p.baseURL, url.PathEscape(symbol),
		span.From.Time().Unix(), span.To.Add(1).Time().Unix())

	var jobj any
	if err := jwget(p.client, addr, &jobj); err != nil {
		var se *statusError
		if errors.As(err, &se) {
			switch {
			case se.code == http.StatusNotFound:
				return series, fmt.Errorf("%s: %w", symbol, ErrSymbolUnknown)
			case se.code == http.StatusTooManyRequests || se.code >= 500:
				return series, fmt.Errorf("%s: %w: %v", symbol, ErrProviderTransient, err)
			}
		}
		return series, fmt.Errorf("fetching %s: %w", symbol, err)
	}

	// A well-formed error payload still comes back with status 200 on
	// some mirrors; check it before digging for quotes.
	if jerr, err := jsonpath.Get("$.chart.error.description", jobj); err == nil && jerr != nil {
		return series, fmt.Errorf("%s: %w: %v", symbol, ErrSymbolUnknown, jerr)
	}

	jts, err := jsonpath.Get("$.chart.result[0].timestamp", jobj)
	if err != nil {
		// No timestamps at all: a valid symbol with no bars in range.
		return series, nil
	}
	jcloses, err := jsonpath.Get("$.chart.result[0].indicators.quote[0].close", jobj)
	if err != nil {
		return series, fmt.Errorf("parsing closes for %s: %w", symbol, err)
	}
	timestamps, ok1 := jts.([]any)
	closes, ok2 := jcloses.([]any)
	if !ok1 || !ok2 || len(timestamps) != len(closes) {
		return series, fmt.Errorf("malformed chart payload for %s", symbol)
	}

	for i, jt := range timestamps {
		ts, ok := jt.(float64)
		if !ok {
			continue
		}
		// Halted days carry a null close.
		close, ok := closes[i].(float64)
		if !ok {
			continue
		}
		day := date.FromTime(time.Unix(int64(ts), 0).UTC())
		series.Append(day, close)
	}
	return series, nil
}
