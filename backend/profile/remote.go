package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RemoteStore reads and writes profiles through the external Profile API:
//
//	GET {base}/social/profile/{uid}
//	PUT {base}/social/profile
//
// The PUT endpoint acts on the owner of the forwarded bearer token, so writes
// for another user are only possible with that user's token in ctx.
// Every write replaces whole fields; there is no version check.
type RemoteStore struct {
	baseURL string
	timeout time.Duration
}

func NewRemoteStore(baseURL string, timeout time.Duration) *RemoteStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteStore{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// ErrUnavailable marks failures talking to the Profile API.
var ErrUnavailable = errors.New("profile api unavailable")

func upstreamError(op, uid string, err error) error {
	return fmt.Errorf("profile api: %s %s: %w: %w", op, uid, ErrUnavailable, err)
}

type remoteEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// remoteProfile accepts the field spellings the Profile API has used over time.
type remoteProfile struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Email                string          `json:"email"`
	Nickname             string          `json:"nickname"`
	Username             string          `json:"username"`
	DisplayName          string          `json:"displayName"`
	Role                 string          `json:"role"`
	Avatar               string          `json:"avatar"`
	AvatarURL            string          `json:"avatarUrl"`
	Bio                  string          `json:"bio"`
	Achievements         []string        `json:"achievements"`
	SelectedAchievements []string        `json:"selectedAchievements"`
	Stats                json.RawMessage `json:"stats"`
	FollowersCount       int             `json:"followersCount"`
	ProfilesLiked        int             `json:"profilesLiked"`
	CreatedAt            string          `json:"createdAt"`
	UpdatedAt            string          `json:"updatedAt"`
}

func (s *RemoteStore) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	agent := fiber.Get(s.baseURL + "/social/profile/" + url.PathEscape(uid))
	if err := s.prepare(ctx, agent); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, upstreamError("get", uid, err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, upstreamError("get", uid, errors.Join(errs...))
	}
	if status == fiber.StatusNotFound {
		return nil, ErrNotFound
	}
	if status >= 300 {
		return nil, upstreamError("get", uid, fmt.Errorf("unexpected status %d", status))
	}

	raw, err := unwrapEnvelope(body)
	if err != nil {
		return nil, upstreamError("get", uid, err)
	}
	if raw == nil {
		return nil, ErrNotFound
	}
	return decodeProfile(uid, raw), nil
}

func (s *RemoteStore) UpdateProfile(ctx context.Context, uid string, upd Update) error {
	agent := fiber.Put(s.baseURL + "/social/profile")
	if err := s.prepare(ctx, agent); err != nil {
		fiber.ReleaseAgent(agent)
		return upstreamError("update", uid, err)
	}
	agent.JSON(upd)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return upstreamError("update", uid, errors.Join(errs...))
	}
	if status == fiber.StatusNotFound {
		return ErrNotFound
	}
	if status >= 300 {
		return upstreamError("update", uid, fmt.Errorf("unexpected status %d", status))
	}
	if _, err := unwrapEnvelope(body); err != nil {
		return upstreamError("update", uid, err)
	}
	return nil
}

// CreateProfile relies on the Profile API creating the record on first write.
func (s *RemoteStore) CreateProfile(ctx context.Context, p *Profile) error {
	nickname, bio := p.Nickname, p.Bio
	return s.UpdateProfile(ctx, p.UID, Update{Nickname: &nickname, Bio: &bio})
}

func (s *RemoteStore) prepare(ctx context.Context, agent *fiber.Agent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}
	agent.Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token := BearerToken(ctx); token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return nil
}

// unwrapEnvelope returns the profile payload from either a {success, data}
// envelope or a bare profile object. A nil result means "no profile".
func unwrapEnvelope(body []byte) (json.RawMessage, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var env remoteEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Success != nil {
		if !*env.Success {
			if env.Error == "" {
				env.Error = "request rejected"
			}
			return nil, errors.New(env.Error)
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, nil
		}
		return env.Data, nil
	}
	return body, nil
}

// decodeProfile never fails: malformed or missing fields fall back to zero
// stats, an empty achievement set and the user role.
func decodeProfile(uid string, raw json.RawMessage) *Profile {
	var rp remoteProfile
	_ = json.Unmarshal(raw, &rp)

	p := &Profile{
		UID:           firstNonEmpty(rp.UID, rp.ID, uid),
		Email:         rp.Email,
		Nickname:      firstNonEmpty(rp.Nickname, rp.Username, DefaultNickname(rp.Email), "Пользователь"),
		Role:          ParseRole(rp.Role),
		Avatar:        firstNonEmpty(rp.Avatar, rp.AvatarURL),
		Bio:           rp.Bio,
		Followers:     rp.FollowersCount,
		ProfilesLiked: rp.ProfilesLiked,
	}
	p.DisplayName = firstNonEmpty(rp.DisplayName, rp.Nickname, rp.Username, "Пользователь")

	switch {
	case rp.Achievements != nil:
		p.Achievements = rp.Achievements
	case rp.SelectedAchievements != nil:
		p.Achievements = rp.SelectedAchievements
	default:
		p.Achievements = []string{}
	}

	if len(rp.Stats) > 0 {
		var stats Stats
		if err := json.Unmarshal(rp.Stats, &stats); err == nil {
			p.Stats = stats
		}
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, rp.CreatedAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, rp.UpdatedAt)
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
