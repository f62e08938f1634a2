package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync/atomic"

	"synthara-assistant-go/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const profileUnavailableText = "Unable to retrieve Niladri Das's info."

var (
	// ErrGitHubRateLimited is returned when GitHub answers 403
	ErrGitHubRateLimited = errors.New("GitHub API rate limit exceeded")
	// ErrGitHubStatus is returned for any other non-200 answer
	ErrGitHubStatus = errors.New("GitHub API error")
)

// GitHubUser is the subset of the user document that is displayed
type GitHubUser struct {
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	Followers   int     `json:"followers"`
	PublicRepos int     `json:"public_repos"`
}

// GitHubRepo is the subset of a repository document that is displayed
type GitHubRepo struct {
	Name            string `json:"name"`
	StargazersCount int    `json:"stargazers_count"`
	HTMLURL         string `json:"html_url"`
}

// GitHubService fetches and caches the creator's public profile. Each cache
// slot is filled at most once, on the first successful fetch, and is never
// refreshed for the life of the process.
type GitHubService struct {
	cfg    *config.Config
	client *http.Client
	log    *zap.Logger

	user  atomic.Pointer[GitHubUser]
	repos atomic.Pointer[[]GitHubRepo]
	group singleflight.Group
}

// NewGitHubService creates a new GitHub profile service
func NewGitHubService(cfg *config.Config, log *zap.Logger) *GitHubService {
	return &GitHubService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.GitHub.Timeout},
		log:    log,
	}
}

// ProfileSummary returns the formatted profile, or a fixed notice when the
// user document cannot be fetched.
func (s *GitHubService) ProfileSummary(ctx context.Context) string {
	var (
		user  *GitHubUser
		repos []GitHubRepo
	)

	// Failures are logged and leave the slot empty; they never cancel the other fetch
	var g errgroup.Group
	g.Go(func() error {
		u, err := s.User(ctx)
		if err != nil {
			s.log.Warn("Failed to fetch GitHub user", zap.Error(err))
			return nil
		}
		user = u
		return nil
	})
	g.Go(func() error {
		r, err := s.Repos(ctx)
		if err != nil {
			s.log.Warn("Failed to fetch GitHub repos", zap.Error(err))
			return nil
		}
		repos = r
		return nil
	})
	_ = g.Wait()

	if user == nil {
		return profileUnavailableText
	}
	return formatProfile(user, repos)
}

// User returns the cached user document, fetching it on first use
func (s *GitHubService) User(ctx context.Context) (*GitHubUser, error) {
	if u := s.user.Load(); u != nil {
		return u, nil
	}

	v, err, _ := s.group.Do("user", func() (interface{}, error) {
		if u := s.user.Load(); u != nil {
			return u, nil
		}
		var u GitHubUser
		if err := s.get(ctx, "/users/"+url.PathEscape(s.cfg.GitHub.Username), &u); err != nil {
			return nil, err
		}
		s.user.Store(&u)
		return &u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*GitHubUser), nil
}

// Repos returns the cached repository list, fetching it on first use.
// An empty list is returned but not cached.
func (s *GitHubService) Repos(ctx context.Context) ([]GitHubRepo, error) {
	if r := s.repos.Load(); r != nil {
		return *r, nil
	}

	v, err, _ := s.group.Do("repos", func() (interface{}, error) {
		if r := s.repos.Load(); r != nil {
			return *r, nil
		}
		var r []GitHubRepo
		if err := s.get(ctx, "/users/"+url.PathEscape(s.cfg.GitHub.Username)+"/repos", &r); err != nil {
			return nil, err
		}
		if len(r) > 0 {
			s.repos.Store(&r)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]GitHubRepo), nil
}

func (s *GitHubService) get(ctx context.Context, path string, out interface{}) error {
	endpoint := strings.TrimSuffix(s.cfg.GitHub.APIURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("GitHub request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return ErrGitHubRateLimited
	default:
		return fmt.Errorf("%w: status %d", ErrGitHubStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode GitHub response: %w", err)
	}
	return nil
}

func formatProfile(user *GitHubUser, repos []GitHubRepo) string {
	name := "Niladri Das"
	if user.Name != nil && *user.Name != "" {
		name = *user.Name
	}
	bio := "No bio available"
	if user.Bio != nil && *user.Bio != "" {
		bio = *user.Bio
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: Developer of mental health tech solutions.\nBio: %s\nFollowers: %d | Repos: %d",
		name, bio, user.Followers, user.PublicRepos)

	if len(repos) > 0 {
		sorted := make([]GitHubRepo, len(repos))
		copy(sorted, repos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].StargazersCount > sorted[j].StargazersCount
		})
		if len(sorted) > 3 {
			sorted = sorted[:3]
		}

		b.WriteString("\n\nKey Projects:\n")
		for _, repo := range sorted {
			name := repo.Name
			if name == "" {
				name = "Unknown"
			}
			fmt.Fprintf(&b, "- %s (%d stars): %s\n", name, repo.StargazersCount, repo.HTMLURL)
		}
	}
	return b.String()
}
