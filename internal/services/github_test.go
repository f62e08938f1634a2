package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"synthara-assistant-go/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeGitHub struct {
	userHits  atomic.Int32
	repoHits  atomic.Int32
	userBody  string
	repoBody  string
	userFails int32 // number of initial user requests answered with 403
	repoCode  int
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/users/bniladridas":
		if f.userHits.Add(1) <= f.userFails {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(f.userBody))
	case "/users/bniladridas/repos":
		f.repoHits.Add(1)
		if f.repoCode != 0 {
			w.WriteHeader(f.repoCode)
			return
		}
		_, _ = w.Write([]byte(f.repoBody))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

const (
	testUserBody = `{"login":"bniladridas","name":"Niladri Das","bio":"Builder","followers":10,"public_repos":4}`
	testRepoBody = `[
		{"name":"a","stargazers_count":1,"html_url":"u/a"},
		{"name":"b","stargazers_count":5,"html_url":"u/b"},
		{"name":"c","stargazers_count":3,"html_url":"u/c"},
		{"name":"d","stargazers_count":0,"html_url":"u/d"}
	]`
)

func newTestGitHubService(t *testing.T, f *fakeGitHub) *GitHubService {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		GitHub: config.GitHubConfig{
			Username: "bniladridas",
			APIURL:   server.URL + "/",
			Timeout:  2 * time.Second,
		},
	}
	return NewGitHubService(cfg, zap.NewNop())
}

func TestProfileSummary(t *testing.T) {
	f := &fakeGitHub{userBody: testUserBody, repoBody: testRepoBody}
	s := newTestGitHubService(t, f)

	want := "Niladri Das: Developer of mental health tech solutions.\n" +
		"Bio: Builder\n" +
		"Followers: 10 | Repos: 4\n\n" +
		"Key Projects:\n" +
		"- b (5 stars): u/b\n" +
		"- c (3 stars): u/c\n" +
		"- a (1 stars): u/a\n"

	assert.Equal(t, want, s.ProfileSummary(context.Background()))

	// Both documents are cached after the first success
	assert.Equal(t, want, s.ProfileSummary(context.Background()))
	assert.Equal(t, int32(1), f.userHits.Load())
	assert.Equal(t, int32(1), f.repoHits.Load())
}

func TestProfileSummaryRateLimitedThenRecovers(t *testing.T) {
	f := &fakeGitHub{userBody: testUserBody, repoBody: testRepoBody, userFails: 1}
	s := newTestGitHubService(t, f)

	assert.Equal(t, "Unable to retrieve Niladri Das's info.", s.ProfileSummary(context.Background()))

	summary := s.ProfileSummary(context.Background())
	assert.Contains(t, summary, "Bio: Builder")
	assert.Equal(t, int32(2), f.userHits.Load())
	// Repos were cached by the first call even though the user fetch failed
	assert.Equal(t, int32(1), f.repoHits.Load())
}

func TestProfileSummaryWithoutRepos(t *testing.T) {
	f := &fakeGitHub{userBody: testUserBody, repoCode: http.StatusInternalServerError}
	s := newTestGitHubService(t, f)

	assert.Equal(t, "Niladri Das: Developer of mental health tech solutions.\nBio: Builder\nFollowers: 10 | Repos: 4",
		s.ProfileSummary(context.Background()))
}

func TestProfileSummaryNullFields(t *testing.T) {
	f := &fakeGitHub{userBody: `{"name":null,"bio":null,"followers":0,"public_repos":0}`, repoBody: `[]`}
	s := newTestGitHubService(t, f)

	assert.Equal(t, "Niladri Das: Developer of mental health tech solutions.\nBio: No bio available\nFollowers: 0 | Repos: 0",
		s.ProfileSummary(context.Background()))

	// An empty repository list is fetched again next time
	s.ProfileSummary(context.Background())
	assert.Equal(t, int32(2), f.repoHits.Load())
	assert.Equal(t, int32(1), f.userHits.Load())
}

func TestGitHubStatusErrors(t *testing.T) {
	f := &fakeGitHub{userFails: 10, repoCode: http.StatusBadGateway}
	s := newTestGitHubService(t, f)

	_, err := s.User(context.Background())
	assert.ErrorIs(t, err, ErrGitHubRateLimited)

	_, err = s.Repos(context.Background())
	assert.ErrorIs(t, err, ErrGitHubStatus)
}

func TestFormatProfileRepoWithoutName(t *testing.T) {
	name := "Someone"
	out := formatProfile(&GitHubUser{Name: &name}, []GitHubRepo{{StargazersCount: 2, HTMLURL: "u/x"}})
	assert.Contains(t, out, "Someone: Developer")
	assert.Contains(t, out, "- Unknown (2 stars): u/x\n")
}
