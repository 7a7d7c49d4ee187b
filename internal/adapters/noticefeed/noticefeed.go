// Package noticefeed scrapes the dormitory office notice board.
package noticefeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/okian/dormscore/internal/domain/model"
)

const (
	// DefaultBoardURL is the official notice board.
	DefaultBoardURL = "https://dorm.ajou.ac.kr/dorm/community/notice.do"

	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "dormscore/1.0 (+notice crawler)"
)

// ErrUnexpectedStatus is returned when the board answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected notice board status")

var (
	datePattern = regexp.MustCompile(`(\d{4})[.\-/](\d{1,2})[.\-/](\d{1,2})`)
	spaces      = regexp.MustCompile(`\s+`)

	applicationWords = []string{"신청", "모집", "접수", "입사"}
	resultWords      = []string{"발표", "합격", "결과", "선발", "배정"}
)

// seoul is the board's timezone; dates carry no zone of their own.
var seoul = time.FixedZone("KST", 9*60*60)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client fetches and parses notice board pages.
type Client struct {
	hc        *http.Client
	userAgent string
}

// NewClient creates a Client with a bounded timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		hc:        &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads boardURL and parses its notice rows.
func (c *Client) Fetch(ctx context.Context, boardURL string) ([]model.Notice, error) {
	base, err := url.Parse(boardURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid board url %q", boardURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch notice board: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}
	return Parse(res.Body, base)
}

// Parse extracts notices from a board page. Relative links are resolved
// against base. Rows without a linked title are skipped.
func Parse(r io.Reader, base *url.URL) ([]model.Notice, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse notice board: %w", err)
	}

	out := []model.Notice{}
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a[href]").First()
		title := cleanText(link.Text())
		if title == "" {
			return
		}

		n := model.Notice{
			Title:    title,
			Category: Classify(title),
			Pinned:   isPinned(row),
		}

		if href, ok := link.Attr("href"); ok {
			n.SourceURL = resolve(base, href)
		}

		row.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
			if t, ok := parseDate(td.Text()); ok {
				n.PublishedAt = &t
				return false
			}
			return true
		})

		out = append(out, n)
	})
	return out, nil
}

// Classify guesses the notice category from its title.
func Classify(title string) model.NoticeCategory {
	for _, w := range resultWords {
		if strings.Contains(title, w) {
			return model.CategoryResult
		}
	}
	for _, w := range applicationWords {
		if strings.Contains(title, w) {
			return model.CategoryApplication
		}
	}
	return model.CategoryGeneral
}

func isPinned(row *goquery.Selection) bool {
	if row.HasClass("notice") || row.HasClass("pinned") {
		return true
	}
	first := cleanText(row.Find("td").First().Text())
	return first == "공지" || strings.EqualFold(first, "notice")
}

func parseDate(s string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-1-2", m[1]+"-"+m[2]+"-"+m[3], seoul)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func cleanText(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
