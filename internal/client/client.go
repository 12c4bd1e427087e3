// Package client is a typed consumer of the booking API. Calendar widgets
// and booking forms talk to the server through it instead of raw HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"zaimka/internal/halfday"
	"zaimka/internal/models"

	"github.com/redis/go-redis/v9"
)

// APIError carries the status code and message body of a failed call.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: http %d", e.StatusCode)
}

// Client calls the public booking endpoints of one server.
type Client struct {
	baseURL    string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UseRedisCache enables caching of cabin and legend lookups. Calendar data
// is never cached, it has to be fresh.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// GetCabin fetches an active cabin by slug.
func (c *Client) GetCabin(ctx context.Context, slug string) (*models.Cabin, error) {
	endpoint := fmt.Sprintf("%s/v1/cabins/%s", c.baseURL, url.PathEscape(slug))
	cacheKey := "cabin:" + slug

	var cabin models.Cabin
	if c.readCache(ctx, cacheKey, &cabin) {
		return &cabin, nil
	}
	if err := c.doGet(ctx, endpoint, &cabin); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, cabin)
	return &cabin, nil
}

// GetLegends fetches a company's block legend. When the server cannot
// deliver one, the built-in defaults keep the calendar renderable.
func (c *Client) GetLegends(ctx context.Context, companySlug string) (map[string]models.Legend, error) {
	endpoint := fmt.Sprintf("%s/v1/legends/company/%s?active=true", c.baseURL, url.PathEscape(companySlug))
	cacheKey := "legends:" + companySlug

	var wrap struct {
		Legends []models.Legend `json:"legends"`
	}
	if !c.readCache(ctx, cacheKey, &wrap) {
		if err := c.doGet(ctx, endpoint, &wrap); err != nil {
			return models.LegendIndex(models.DefaultLegends()), nil
		}
		c.writeCache(ctx, cacheKey, wrap)
	}

	merged := append(models.DefaultLegends(), wrap.Legends...)
	return models.LegendIndex(merged), nil
}

// GetCalendar fetches one month of availability.
func (c *Client) GetCalendar(ctx context.Context, slug string, year int, month time.Month) ([]models.CalendarDay, error) {
	endpoint := fmt.Sprintf("%s/v1/cabins/%s/calendar?year=%d&month=%d",
		c.baseURL, url.PathEscape(slug), year, int(month))

	var wrap struct {
		Calendar []models.CalendarDay `json:"calendar"`
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	return wrap.Calendar, nil
}

// Guest is the contact block of a booking submission.
type Guest struct {
	Name    string `json:"guestName"`
	Phone   string `json:"guestPhone"`
	Email   string `json:"guestEmail,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// SegmentOutcome is the per-segment result of a submission.
type SegmentOutcome struct {
	Segment   halfday.Segment
	Status    string
	BookingID int64
	Err       error
}

// SubmitReport aggregates a multi-segment submission. Accepted segments
// stand even when others were taken, the report tells the caller which.
type SubmitReport struct {
	Created  int
	Failed   int
	Outcomes []SegmentOutcome
}

func (r *SubmitReport) AllCreated() bool  { return r.Failed == 0 && r.Created > 0 }
func (r *SubmitReport) NoneCreated() bool { return r.Created == 0 }

// SubmitBooking sends each segment of the selection as its own booking
// request so one taken stretch does not sink the rest.
func (c *Client) SubmitBooking(ctx context.Context, slug string, req halfday.BookingRequest, guest Guest) (*SubmitReport, error) {
	segments, err := req.NormalizedSegments()
	if err != nil {
		return nil, err
	}

	report := &SubmitReport{}
	for _, seg := range segments {
		outcome := c.submitSegment(ctx, slug, seg, guest)
		if outcome.Status == segmentCreated {
			report.Created++
		} else {
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}

const (
	segmentCreated     = "created"
	segmentUnavailable = "unavailable"
	segmentError       = "error"
)

func (c *Client) submitSegment(ctx context.Context, slug string, seg halfday.Segment, guest Guest) SegmentOutcome {
	endpoint := fmt.Sprintf("%s/v1/cabins/%s/book", c.baseURL, url.PathEscape(slug))

	body := struct {
		Segments []halfday.Segment `json:"segments"`
		Guest
	}{Segments: []halfday.Segment{seg}, Guest: guest}

	var resp struct {
		Results []struct {
			Status    string `json:"status"`
			BookingID int64  `json:"booking_id"`
		} `json:"results"`
	}

	outcome := SegmentOutcome{Segment: seg}
	err := c.doPost(ctx, endpoint, body, &resp)
	if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusConflict {
		outcome.Status = segmentUnavailable
		return outcome
	}
	if err != nil {
		outcome.Status = segmentError
		outcome.Err = err
		return outcome
	}
	if len(resp.Results) == 0 {
		outcome.Status = segmentError
		outcome.Err = fmt.Errorf("empty booking response")
		return outcome
	}

	outcome.Status = resp.Results[0].Status
	outcome.BookingID = resp.Results[0].BookingID
	return outcome
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) doPost(ctx context.Context, endpoint string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Message = errBody.Message
			apiErr.Details = errBody.Details
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
