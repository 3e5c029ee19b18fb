package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const vkAPIBaseURL = "https://api.vk.com"

// VKSource searches public VK posts through newsfeed.search
type VKSource struct {
	client      *resty.Client
	accessToken string
	apiVersion  string
	location    *time.Location
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	now         func() time.Time
}

type vkResponse struct {
	Response *vkSearchResult `json:"response"`
	Error    *vkError        `json:"error"`
}

type vkError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

type vkSearchResult struct {
	Count    int         `json:"count"`
	Items    []vkPost    `json:"items"`
	Profiles []vkProfile `json:"profiles"`
	Groups   []vkGroup   `json:"groups"`
}

type vkPost struct {
	ID       int64     `json:"id"`
	OwnerID  int64     `json:"owner_id"`
	FromID   int64     `json:"from_id"`
	Date     int64     `json:"date"`
	Text     string    `json:"text"`
	Likes    vkCounter `json:"likes"`
	Reposts  vkCounter `json:"reposts"`
	Comments vkCounter `json:"comments"`
	Views    vkCounter `json:"views"`
}

type vkCounter struct {
	Count int `json:"count"`
}

type vkProfile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type vkGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewVKSource creates a VK source limited to rps requests per second
func NewVKSource(accessToken, apiVersion string, rps float64, location *time.Location) *VKSource {
	if location == nil {
		location = time.UTC
	}

	return &VKSource{
		client: resty.New().
			SetBaseURL(vkAPIBaseURL).
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "Mentions-Dashboard/1.0"),
		accessToken: accessToken,
		apiVersion:  apiVersion,
		location:    location,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "vk",
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logrus.Warnf("Circuit breaker %s changed from %s to %s", name, from, to)
			},
		}),
		now: time.Now,
	}
}

// SetBaseURL points the client at another API host
func (v *VKSource) SetBaseURL(url string) *VKSource {
	v.client.SetBaseURL(url)
	return v
}

func (v *VKSource) GetName() string {
	return "vk"
}

func (v *VKSource) IsEnabled() bool {
	return v.accessToken != ""
}

func (v *VKSource) FetchMentions(ctx context.Context, keywords []string, since time.Duration) ([]models.Mention, error) {
	startTime := v.now().Add(-since).Unix()
	seen := make(map[string]bool)
	var allMentions []models.Mention

	for _, keyword := range keywords {
		if err := v.limiter.Wait(ctx); err != nil {
			return allMentions, err
		}

		result, err := v.breaker.Execute(func() (interface{}, error) {
			return v.search(ctx, keyword, startTime)
		})
		if err != nil {
			return allMentions, fmt.Errorf("vk search for %q failed: %w", keyword, err)
		}

		mentions := v.toMentions(result.(*vkSearchResult))
		logrus.Debugf("VK search %q returned %d posts", keyword, len(mentions))

		for _, mention := range mentions {
			if seen[mention.ID] {
				continue
			}
			seen[mention.ID] = true
			allMentions = append(allMentions, mention)
		}
	}

	return allMentions, nil
}

func (v *VKSource) search(ctx context.Context, keyword string, startTime int64) (*vkSearchResult, error) {
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":            keyword,
			"extended":     "1",
			"count":        "200",
			"start_time":   strconv.FormatInt(startTime, 10),
			"access_token": v.accessToken,
			"v":            v.apiVersion,
		}).
		Get("/method/newsfeed.search")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("vk API returned status %d", resp.StatusCode())
	}

	var payload vkResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode vk response: %w", err)
	}

	if payload.Error != nil {
		return nil, fmt.Errorf("vk API error %d: %s", payload.Error.Code, payload.Error.Message)
	}

	if payload.Response == nil {
		return nil, fmt.Errorf("vk API returned an empty response")
	}

	return payload.Response, nil
}

func (v *VKSource) toMentions(result *vkSearchResult) []models.Mention {
	profiles := make(map[int64]string, len(result.Profiles))
	for _, p := range result.Profiles {
		profiles[p.ID] = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	groups := make(map[int64]string, len(result.Groups))
	for _, g := range result.Groups {
		groups[g.ID] = g.Name
	}

	mentions := make([]models.Mention, 0, len(result.Items))
	for _, post := range result.Items {
		text := strings.TrimSpace(post.Text)
		if text == "" {
			continue
		}

		published := time.Unix(post.Date, 0).In(v.location)
		mentions = append(mentions, models.Mention{
			ID:          fmt.Sprintf("vk_%d_%d", post.OwnerID, post.ID),
			Platform:    "VK",
			Author:      authorName(post.FromID, profiles, groups),
			Content:     text,
			Engagement:  post.Likes.Count + post.Reposts.Count + post.Comments.Count,
			Timestamp:   published.Format("2006-01-02 15:04"),
			Views:       post.Views.Count,
			URL:         fmt.Sprintf("https://vk.com/wall%d_%d", post.OwnerID, post.ID),
			PublishedAt: published,
		})
	}

	return mentions
}

// Negative ids belong to communities.
func authorName(fromID int64, profiles, groups map[int64]string) string {
	if fromID < 0 {
		if name, ok := groups[-fromID]; ok && name != "" {
			return name
		}
		return fmt.Sprintf("club%d", -fromID)
	}
	if name, ok := profiles[fromID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("id%d", fromID)
}
