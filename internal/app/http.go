package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"matinee/api/internal/club"
	"matinee/api/internal/export"
	"matinee/api/internal/metrics"
	"matinee/api/internal/notify"
	"matinee/api/internal/posters"
	"matinee/api/internal/search"
	"matinee/api/internal/store"
)

// clubDirectory is the membership plumbing surface the HTTP layer needs.
type clubDirectory interface {
	Create(ctx context.Context, name string, suggestionCount int, creatorID, creatorName string) (store.Club, string, error)
	Join(ctx context.Context, clubID, memberID, displayName, inviteCode string) error
	Leave(ctx context.Context, clubID, memberID string) error
	Members(ctx context.Context, clubID string) ([]store.ClubMember, error)
	Promote(ctx context.Context, clubID, actorID, memberID string) error
}

type HTTPServer struct {
	service    *Service
	clubs      clubDirectory
	corsOrigin string

	notifier *notify.Publisher
	search   *search.Service
	exporter *export.Service
	posters  *posters.Store
	metrics  *metrics.Metrics
}

func NewHTTPServer(service *Service, clubs clubDirectory, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, clubs: clubs, corsOrigin: corsOrigin}
}

func (s *HTTPServer) WithNotifier(publisher *notify.Publisher) *HTTPServer {
	s.notifier = publisher
	return s
}

func (s *HTTPServer) WithSearch(service *search.Service) *HTTPServer {
	s.search = service
	return s
}

func (s *HTTPServer) WithExporter(exporter *export.Service) *HTTPServer {
	s.exporter = exporter
	return s
}

func (s *HTTPServer) WithPosters(store *posters.Store) *HTTPServer {
	s.posters = store
	return s
}

func (s *HTTPServer) WithMetrics(m *metrics.Metrics) *HTTPServer {
	s.metrics = m
	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}
		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}
		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/metrics" && s.metrics != nil {
		s.metrics.Handler().ServeHTTP(w, r)
		return
	}

	// Identity is resolved upstream; handlers trust the forwarded member id.
	memberID := strings.TrimSpace(r.Header.Get("X-Member-ID"))
	if memberID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-Member-ID header required", nil)
		return
	}

	segments := splitPath(r.URL.Path)
	if len(segments) < 2 || segments[0] != "api" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch segments[1] {
	case "clubs":
		s.handleClubs(w, r, memberID, segments)
		return
	case "rounds":
		s.handleRounds(w, r, memberID, segments)
		return
	case "selections":
		s.handleSelections(w, r, memberID, segments)
		return
	case "suggestions":
		s.handleSuggestions(w, r, memberID, segments)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleClubs(w http.ResponseWriter, r *http.Request, memberID string, segments []string) {
	if r.Method == http.MethodPost && len(segments) == 2 {
		var body struct {
			Name            string `json:"name"`
			SuggestionCount int    `json:"suggestionCount"`
			DisplayName     string `json:"displayName"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.Name) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
			return
		}
		created, inviteCode, err := s.clubs.Create(r.Context(), body.Name, body.SuggestionCount, memberID, body.DisplayName)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"clubId":          created.ID,
			"name":            created.Name,
			"suggestionCount": created.SuggestionCount,
			"inviteCode":      inviteCode,
		})
		return
	}

	if len(segments) < 3 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	clubID := segments[2]

	if r.Method == http.MethodPost && len(segments) == 4 && segments[3] == "join" {
		var body struct {
			DisplayName string `json:"displayName"`
			InviteCode  string `json:"inviteCode"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := s.clubs.Join(r.Context(), clubID, memberID, body.DisplayName, body.InviteCode); err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"clubId": clubID, "memberId": memberID})
		return
	}

	if r.Method == http.MethodPost && len(segments) == 4 && segments[3] == "leave" {
		if err := s.clubs.Leave(r.Context(), clubID, memberID); err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && len(segments) == 4 && segments[3] == "members" {
		members, err := s.clubs.Members(r.Context(), clubID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		items := make([]map[string]any, 0, len(members))
		for _, member := range members {
			items = append(items, map[string]any{
				"memberId":    member.MemberID,
				"displayName": member.DisplayName,
				"role":        member.Role,
				"joinedAt":    member.JoinedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": items})
		return
	}

	if r.Method == http.MethodPost && len(segments) == 6 && segments[3] == "members" && segments[5] == "promote" {
		if err := s.clubs.Promote(r.Context(), clubID, memberID, segments[4]); err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if len(segments) == 4 && segments[3] == "rotation" {
		switch r.Method {
		case http.MethodGet:
			payload, err := s.service.Rotation(r.Context(), clubID, memberID)
			if err != nil {
				s.respondError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case http.MethodPut:
			var body struct {
				Order []string `json:"order"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.UpdateRotation(r.Context(), clubID, memberID, body.Order)
			if err != nil {
				s.respondError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}
	}

	if r.Method == http.MethodPost && len(segments) == 5 && segments[3] == "rotation" && segments[4] == "randomize" {
		payload, err := s.service.RandomizeRotation(r.Context(), clubID, memberID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && len(segments) == 4 && segments[3] == "turn" {
		payload, err := s.service.CurrentTurn(r.Context(), clubID, memberID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodPost && len(segments) == 4 && segments[3] == "rounds" {
		payload, err := s.service.StartRound(r.Context(), clubID, memberID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.publish(r.Context(), notify.EventRoundStarted, payload, memberID)
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && len(segments) == 4 && segments[3] == "history" {
		payload, err := s.service.History(r.Context(), clubID, memberID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && len(segments) == 5 && segments[3] == "history" && segments[4] == "export" {
		s.handleHistoryExport(w, r, clubID, memberID)
		return
	}

	if r.Method == http.MethodGet && len(segments) == 4 && segments[3] == "search" {
		s.handleSearch(w, r, clubID, memberID)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleRounds(w http.ResponseWriter, r *http.Request, memberID string, segments []string) {
	if len(segments) < 3 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	roundID := segments[2]

	if r.Method == http.MethodGet && len(segments) == 3 {
		payload, err := s.service.RoundDetail(r.Context(), roundID, memberID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method != http.MethodPost || len(segments) != 4 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch segments[3] {
	case "suggestions":
		var body struct {
			Suggestions []SuggestionInput `json:"suggestions"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.AddSuggestions(r.Context(), roundID, memberID, body.Suggestions)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.publish(r.Context(), notify.EventVotingOpened, payload, memberID)
		writeJSON(w, http.StatusOK, payload)
		return

	case "votes":
		var body struct {
			Rankings map[string]int `json:"rankings"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.SubmitVote(r.Context(), roundID, memberID, body.Rankings)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return

	case "reveal":
		payload, err := s.service.Reveal(r.Context(), roundID, memberID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		eventType := notify.EventRoundRevealed
		if payload["status"] == store.RoundTieBreaking {
			eventType = notify.EventTieBreakRequired
		}
		s.publish(r.Context(), eventType, payload, memberID)
		writeJSON(w, http.StatusOK, payload)
		return

	case "tie-break":
		var body struct {
			SuggestionID string `json:"suggestionId"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.BreakTie(r.Context(), roundID, memberID, body.SuggestionID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.publish(r.Context(), notify.EventRoundRevealed, payload, memberID)
		writeJSON(w, http.StatusOK, payload)
		return

	case "select":
		var body struct {
			WatchBy string `json:"watchBy"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		watchBy, err := time.Parse(time.RFC3339, body.WatchBy)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "watchBy must be RFC 3339", nil)
			return
		}
		payload, err := s.service.SelectMovie(r.Context(), roundID, memberID, watchBy)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.publish(r.Context(), notify.EventMovieSelected, payload, memberID)
		s.indexSelection(payload)
		writeJSON(w, http.StatusOK, payload)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleSelections(w http.ResponseWriter, r *http.Request, memberID string, segments []string) {
	if r.Method != http.MethodPost || len(segments) != 4 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	selectionID := segments[2]

	switch segments[3] {
	case "watched":
		payload, err := s.service.MarkWatched(r.Context(), selectionID, memberID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.publish(r.Context(), notify.EventMovieWatched, payload, memberID)
		writeJSON(w, http.StatusOK, payload)
		return

	case "ratings":
		var body struct {
			Value float64 `json:"value"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.SubmitRating(r.Context(), selectionID, memberID, body.Value)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleSuggestions(w http.ResponseWriter, r *http.Request, memberID string, segments []string) {
	if len(segments) != 4 || segments[3] != "poster" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	suggestionID := segments[2]

	if s.posters == nil {
		writeError(w, http.StatusServiceUnavailable, "POSTERS_UNAVAILABLE", "Poster storage not configured", nil)
		return
	}

	switch r.Method {
	case http.MethodPost:
		if _, err := s.service.PosterUploadTarget(r.Context(), suggestionID, memberID); err != nil {
			s.respondError(w, err)
			return
		}
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		key, err := s.posters.Put(r.Context(), suggestionID, contentType, r.Body, r.ContentLength)
		if err != nil {
			log.Printf("posters: upload %s: %v", suggestionID, err)
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Poster upload failed", nil)
			return
		}
		if err := s.service.SetPosterKey(r.Context(), suggestionID, key); err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"suggestionId": suggestionID, "posterKey": key})
		return

	case http.MethodGet:
		suggestion, err := s.service.PosterViewTarget(r.Context(), suggestionID, memberID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		url, err := s.posters.PresignedGet(r.Context(), suggestion.PosterKey)
		if err != nil {
			log.Printf("posters: presign %s: %v", suggestion.PosterKey, err)
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Poster URL failed", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"suggestionId": suggestionID, "url": url})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request, clubID, memberID string) {
	if s.search == nil {
		writeError(w, http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "Search not configured", nil)
		return
	}
	if err := s.service.requireMember(r.Context(), clubID, memberID); err != nil {
		s.respondError(w, err)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "limit must be an integer", nil)
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "offset must be an integer", nil)
			return
		}
		offset = parsed
	}

	response := s.search.Search(search.Query{Text: q, ClubID: clubID, Limit: limit, Offset: offset})
	writeJSON(w, http.StatusOK, response)
}

func (s *HTTPServer) handleHistoryExport(w http.ResponseWriter, r *http.Request, clubID, memberID string) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export not configured", nil)
		return
	}

	format := export.FormatPDF
	if raw := strings.TrimSpace(r.URL.Query().Get("format")); raw != "" {
		format = export.Format(raw)
		if format != export.FormatPDF && format != export.FormatDOCX {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format must be pdf or docx", nil)
			return
		}
	}

	clubRecord, err := s.service.ClubInfo(r.Context(), clubID, memberID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	entries, err := s.service.HistoryEntries(r.Context(), clubID, memberID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	data := export.Data{
		ClubName:    clubRecord.Name,
		GeneratedAt: time.Now().UTC(),
	}
	for _, entry := range entries {
		year := 0
		if entry.ReleaseYear != nil {
			year = *entry.ReleaseYear
		}
		data.Entries = append(data.Entries, export.Entry{
			Title:         entry.Title,
			ReleaseYear:   year,
			WatchBy:       entry.WatchBy,
			Watched:       entry.Watched,
			WatchedAt:     entry.WatchedAt,
			AverageRating: entry.AverageRating,
			RatingCount:   entry.RatingCount,
		})
	}

	result, err := s.exporter.Export(data, format)
	if err != nil {
		if errors.Is(err, export.ErrPDFDependencyMissing) || errors.Is(err, export.ErrDOCXDependencyMissing) {
			writeError(w, http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export dependency missing", nil)
			return
		}
		log.Printf("export: history %s: %v", clubID, err)
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Export failed", nil)
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// publish emits a lifecycle event after a successful transition. The engine
// itself never talks to the notifier.
func (s *HTTPServer) publish(ctx context.Context, eventType string, payload map[string]any, actorID string) {
	if s.notifier == nil {
		return
	}
	clubID, _ := payload["clubId"].(string)
	if clubID == "" {
		return
	}
	roundID, _ := payload["roundId"].(string)
	s.notifier.Publish(ctx, notify.Event{
		Type:    eventType,
		ClubID:  clubID,
		RoundID: roundID,
		ActorID: actorID,
	})
}

// indexSelection pushes a completed selection into the search index,
// fire-and-forget.
func (s *HTTPServer) indexSelection(payload map[string]any) {
	if s.search == nil {
		return
	}
	record := search.SelectionRecord{}
	record.ID, _ = payload["selectionId"].(string)
	record.ClubID, _ = payload["clubId"].(string)
	record.Title, _ = payload["title"].(string)
	record.Summary, _ = payload["summary"].(string)
	if year, ok := payload["releaseYear"].(*int); ok && year != nil {
		record.ReleaseYear = *year
	}
	if record.ID == "" {
		return
	}
	s.search.IndexSelection(record)
}

func (s *HTTPServer) respondError(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		elapsed := time.Since(started)
		s.metrics.ObserveRequest(r.Method, routeGroup(r.URL.Path), writer.status, elapsed)
		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			elapsed.Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// routeGroup collapses a request path to its first two segments so metric
// label cardinality stays bounded.
func routeGroup(path string) string {
	segments := splitPath(path)
	if len(segments) == 0 {
		return "/"
	}
	if len(segments) == 1 {
		return "/" + segments[0]
	}
	return "/" + segments[0] + "/" + segments[1]
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Member-ID, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, club.ErrBadInviteCode) {
		return http.StatusForbidden, "INVALID_INVITE_CODE", "Invite code is not valid", nil
	}
	if errors.Is(err, club.ErrAlreadyMember) {
		return http.StatusConflict, "CONFLICT", "Already a member of this club", nil
	}
	if errors.Is(err, club.ErrNotMember) {
		return http.StatusNotFound, "NOT_FOUND", "No such member", nil
	}
	if errors.Is(err, club.ErrForbidden) {
		return http.StatusForbidden, "FORBIDDEN", "Forbidden", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
