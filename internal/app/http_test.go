package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"matinee/api/internal/club"
	"matinee/api/internal/metrics"
	"matinee/api/internal/store"
)

type fakeClubs struct {
	createFn  func(context.Context, string, int, string, string) (store.Club, string, error)
	joinFn    func(context.Context, string, string, string, string) error
	leaveFn   func(context.Context, string, string) error
	membersFn func(context.Context, string) ([]store.ClubMember, error)
	promoteFn func(context.Context, string, string, string) error
}

func (f *fakeClubs) Create(ctx context.Context, name string, suggestionCount int, creatorID, creatorName string) (store.Club, string, error) {
	if f.createFn != nil {
		return f.createFn(ctx, name, suggestionCount, creatorID, creatorName)
	}
	return store.Club{ID: "club-1", Name: name, SuggestionCount: suggestionCount}, "CODE1234", nil
}
func (f *fakeClubs) Join(ctx context.Context, clubID, memberID, displayName, inviteCode string) error {
	if f.joinFn != nil {
		return f.joinFn(ctx, clubID, memberID, displayName, inviteCode)
	}
	return nil
}
func (f *fakeClubs) Leave(ctx context.Context, clubID, memberID string) error {
	if f.leaveFn != nil {
		return f.leaveFn(ctx, clubID, memberID)
	}
	return nil
}
func (f *fakeClubs) Members(ctx context.Context, clubID string) ([]store.ClubMember, error) {
	if f.membersFn != nil {
		return f.membersFn(ctx, clubID)
	}
	return nil, nil
}
func (f *fakeClubs) Promote(ctx context.Context, clubID, actorID, memberID string) error {
	if f.promoteFn != nil {
		return f.promoteFn(ctx, clubID, actorID, memberID)
	}
	return nil
}

func newTestServer(st *fakeStore, members *fakeMembers, clubs *fakeClubs) *HTTPServer {
	if clubs == nil {
		clubs = &fakeClubs{}
	}
	return NewHTTPServer(newTestService(st, members), clubs, "*")
}

func doRequest(t *testing.T, server *HTTPServer, method, path, memberID, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if memberID != "" {
		req.Header.Set("X-Member-ID", memberID)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)

	decoded := map[string]any{}
	if recorder.Body.Len() > 0 {
		if err := json.Unmarshal(recorder.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, recorder.Body.String())
		}
	}
	return recorder, decoded
}

func TestHealthEndpointNeedsNoIdentity(t *testing.T) {
	server := newTestServer(nil, nil, nil)
	recorder, body := doRequest(t, server, http.MethodGet, "/api/health", "", "")
	if recorder.Code != http.StatusOK || body["ok"] != true {
		t.Fatalf("unexpected health response: %d %v", recorder.Code, body)
	}
}

func TestReadyEndpointReportsChecks(t *testing.T) {
	server := newTestServer(nil, nil, nil)
	recorder, body := doRequest(t, server, http.MethodGet, "/api/ready", "", "")
	if recorder.Code != http.StatusOK || body["status"] != "ready" {
		t.Fatalf("unexpected ready response: %d %v", recorder.Code, body)
	}
}

func TestMissingIdentityHeader(t *testing.T) {
	server := newTestServer(nil, nil, nil)
	recorder, body := doRequest(t, server, http.MethodGet, "/api/clubs/club-1/turn", "", "")
	if recorder.Code != http.StatusUnauthorized || body["code"] != "UNAUTHORIZED" {
		t.Fatalf("expected 401 UNAUTHORIZED, got %d %v", recorder.Code, body)
	}
}

func TestUnknownRoute(t *testing.T) {
	server := newTestServer(nil, nil, nil)
	recorder, body := doRequest(t, server, http.MethodGet, "/api/nope", "alice", "")
	if recorder.Code != http.StatusNotFound || body["code"] != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %v", recorder.Code, body)
	}
}

func TestCreateClub(t *testing.T) {
	server := newTestServer(nil, nil, nil)
	recorder, body := doRequest(t, server, http.MethodPost, "/api/clubs", "alice",
		`{"name":"Friday Films","suggestionCount":3,"displayName":"Alice"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("create club: %d %v", recorder.Code, body)
	}
	if body["clubId"] != "club-1" || body["inviteCode"] != "CODE1234" {
		t.Fatalf("unexpected create payload: %v", body)
	}
}

func TestCreateClubRequiresName(t *testing.T) {
	server := newTestServer(nil, nil, nil)
	recorder, body := doRequest(t, server, http.MethodPost, "/api/clubs", "alice",
		`{"name":"  ","suggestionCount":3}`)
	if recorder.Code != http.StatusUnprocessableEntity || body["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected 422 VALIDATION_ERROR, got %d %v", recorder.Code, body)
	}
}

func TestJoinClubErrorEnvelope(t *testing.T) {
	clubs := &fakeClubs{
		joinFn: func(context.Context, string, string, string, string) error {
			return club.ErrBadInviteCode
		},
	}
	server := newTestServer(nil, nil, clubs)
	recorder, body := doRequest(t, server, http.MethodPost, "/api/clubs/club-1/join", "bob",
		`{"displayName":"Bob","inviteCode":"wrong"}`)
	if recorder.Code != http.StatusForbidden || body["code"] != "INVALID_INVITE_CODE" {
		t.Fatalf("expected 403 INVALID_INVITE_CODE, got %d %v", recorder.Code, body)
	}
}

func TestStartRoundErrorEnvelope(t *testing.T) {
	st := &fakeStore{
		listRotationFn: func(context.Context, string) ([]store.RotationEntry, error) {
			return rotationOf("alice", "bob"), nil
		},
	}
	members := &fakeMembers{currentMembersFn: membersOf("alice", "bob")}
	server := newTestServer(st, members, nil)

	recorder, body := doRequest(t, server, http.MethodPost, "/api/clubs/club-1/rounds", "bob", "")
	if recorder.Code != http.StatusForbidden || body["code"] != "TURN_VIOLATION" {
		t.Fatalf("expected 403 TURN_VIOLATION, got %d %v", recorder.Code, body)
	}
	details, ok := body["details"].(map[string]any)
	if !ok || details["memberId"] != "alice" {
		t.Fatalf("expected whose-turn hint in details, got %v", body["details"])
	}
}

func TestStartRoundHappyPath(t *testing.T) {
	st := &fakeStore{
		listRotationFn: func(context.Context, string) ([]store.RotationEntry, error) {
			return rotationOf("alice", "bob"), nil
		},
	}
	members := &fakeMembers{currentMembersFn: membersOf("alice", "bob")}
	server := newTestServer(st, members, nil)

	recorder, body := doRequest(t, server, http.MethodPost, "/api/clubs/club-1/rounds", "alice", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("start round: %d %v", recorder.Code, body)
	}
	if body["status"] != store.RoundSuggesting || body["suggesterId"] != "alice" {
		t.Fatalf("unexpected round payload: %v", body)
	}
	if roundID, _ := body["roundId"].(string); roundID == "" {
		t.Fatalf("round id missing: %v", body)
	}
}

func TestSubmitVoteOverHTTP(t *testing.T) {
	var stored map[string]int
	st := &fakeStore{
		getRoundFn:        votingRound(),
		listSuggestionsFn: threeSuggestions(),
		upsertVoteFn: func(_ context.Context, _ string, _ string, rankings map[string]int) error {
			stored = rankings
			return nil
		},
	}
	server := newTestServer(st, nil, nil)

	recorder, body := doRequest(t, server, http.MethodPost, "/api/rounds/rnd-1/votes", "v1",
		`{"rankings":{"a":2,"b":1,"c":3}}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("submit vote: %d %v", recorder.Code, body)
	}
	if stored["b"] != 1 {
		t.Fatalf("rankings not stored: %v", stored)
	}
}

func TestSelectMovieRejectsBadTimestamp(t *testing.T) {
	server := newTestServer(&fakeStore{getRoundFn: revealedRound("a")}, adminMembers(), nil)

	recorder, body := doRequest(t, server, http.MethodPost, "/api/rounds/rnd-1/select", "admin",
		`{"watchBy":"next tuesday"}`)
	if recorder.Code != http.StatusUnprocessableEntity || body["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected 422 VALIDATION_ERROR, got %d %v", recorder.Code, body)
	}
}

func TestSelectMovieOverHTTP(t *testing.T) {
	st := &fakeStore{getRoundFn: revealedRound("a")}
	server := newTestServer(st, adminMembers(), nil)

	recorder, body := doRequest(t, server, http.MethodPost, "/api/rounds/rnd-1/select", "admin",
		`{"watchBy":"2025-06-15T00:00:00Z"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("select movie: %d %v", recorder.Code, body)
	}
	if body["status"] != store.RoundCompleted || body["suggestionId"] != "a" {
		t.Fatalf("unexpected payload: %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(nil, nil, nil).WithMetrics(metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("metrics scrape: %d", recorder.Code)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	server := newTestServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	if got := recorder.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Fatalf("request id not echoed: %q", got)
	}
}
