// Package admin serves a read-only JSON view of the session for debugging
// and UI development.
package admin

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/sirdesai22/crosswire-replica/internal/challenges"
	"github.com/sirdesai22/crosswire-replica/internal/elastic"
	"github.com/sirdesai22/crosswire-replica/internal/ingest"
	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/session"
)

// Searcher looks up message ids in the search mirror.
type Searcher func(ctx context.Context, query string, limit, offset int) (elastic.SearchResult, error)

type Server struct {
	S      *session.Session
	Dead   *ingest.DeadLetters
	Search Searcher // nil when the mirror is disabled
}

func (s *Server) Handler(origins []string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/session", s.session)
	mux.HandleFunc("GET /api/channels", s.channels)
	mux.HandleFunc("GET /api/channels/{id}/messages", s.messages)
	mux.HandleFunc("GET /api/channels/{id}/pinned", s.pinned)
	mux.HandleFunc("GET /api/challenges", s.challenges)
	mux.HandleFunc("GET /api/challenges/stats", s.stats)
	mux.HandleFunc("GET /api/leaderboard", s.leaderboard)
	mux.HandleFunc("GET /api/members", s.members)
	mux.HandleFunc("GET /api/files", s.files)
	mux.HandleFunc("GET /api/dead-letters", s.deadLetters)
	mux.HandleFunc("GET /api/search", s.search)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return corsMiddleware.Handler(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("admin: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"code": code, "message": msg}})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	var out struct {
		Channel  models.ChannelInfo `json:"channel"`
		Selected string             `json:"selected_channel"`
		Unread   int                `json:"total_unread"`
		Online   int                `json:"online_members"`
		Members  int                `json:"members"`
		Editing  *models.Message    `json:"editing,omitempty"`
	}
	s.S.Read(func(st *session.State) {
		out.Channel = st.Channels.CurrentChannel()
		out.Selected = st.Channels.SelectedID()
		out.Unread = st.Channels.TotalUnread()
		out.Online = st.Members.OnlineCount()
		out.Members = st.Members.Count()
		if m, ok := st.Messages.Editing(); ok {
			out.Editing = &m
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) channels(w http.ResponseWriter, r *http.Request) {
	var out []models.Channel
	s.S.Read(func(st *session.State) { out = st.Channels.Channels() })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) messages(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := page(w, r)
	if !ok {
		return
	}
	var out []models.Message
	s.S.Read(func(st *session.State) { out = st.Messages.Messages(r.PathValue("id")) })
	writeJSON(w, http.StatusOK, window(out, limit, offset))
}

func (s *Server) pinned(w http.ResponseWriter, r *http.Request) {
	var out []models.PinnedRef
	s.S.Read(func(st *session.State) { out = st.Messages.Pinned(r.PathValue("id")) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) challenges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var out []models.Challenge
	s.S.Read(func(st *session.State) {
		switch {
		case q.Get("category") != "":
			out = st.Challenges.ByCategory(q.Get("category"))
		case q.Get("status") != "":
			out = st.Challenges.ByStatus(models.ChallengeStatus(q.Get("status")))
		case q.Get("assignee") != "":
			out = st.Challenges.AssignedTo(q.Get("assignee"))
		default:
			out = st.Challenges.All()
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	var out challenges.Stats
	s.S.Read(func(st *session.State) { out = st.Challenges.Stats() })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	var out []challenges.LeaderboardEntry
	s.S.Read(func(st *session.State) { out = st.Challenges.Leaderboard(st.Members) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) members(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var out []models.Member
	s.S.Read(func(st *session.State) {
		switch {
		case q.Get("skill") != "":
			out = st.Members.BySkill(q.Get("skill"))
		case q.Get("online") == "true":
			out = st.Members.Online()
		case q.Get("online") == "false":
			out = st.Members.Offline()
		default:
			out = st.Members.All()
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) files(w http.ResponseWriter, r *http.Request) {
	var out struct {
		Files     []models.File     `json:"files"`
		Transfers []models.Transfer `json:"transfers"`
		TotalSize int64             `json:"total_size"`
	}
	s.S.Read(func(st *session.State) {
		out.Files = st.Files.Files()
		out.Transfers = st.Files.Transfers()
		out.TotalSize = st.Files.TotalFileSize()
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deadLetters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Dead.List())
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	if s.Search == nil {
		writeError(w, http.StatusServiceUnavailable, "search_disabled", "search mirror is not configured")
		return
	}
	limit, offset, ok := page(w, r)
	if !ok {
		return
	}
	res, err := s.Search(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		writeError(w, http.StatusBadGateway, "search_failed", err.Error())
		return
	}
	out := struct {
		Messages []models.Message `json:"messages"`
		Total    int              `json:"total"`
	}{Messages: []models.Message{}, Total: res.Total}
	s.S.Read(func(st *session.State) {
		for _, id := range res.IDs {
			if m, ok := st.Messages.Message(id); ok {
				out.Messages = append(out.Messages, m)
			}
		}
	})
	writeJSON(w, http.StatusOK, out)
}

// page reads limit/offset; zero limit means everything.
func page(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	q := r.URL.Query()
	for key, dst := range map[string]*int{"limit": &limit, "offset": &offset} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", key+" must be a non-negative integer")
			return 0, 0, false
		}
		*dst = n
	}
	return limit, offset, true
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
