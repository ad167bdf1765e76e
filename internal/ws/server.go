package ws

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/achievement"
	"github.com/evolua/backend/internal/mission"
	"github.com/evolua/backend/internal/notify"
	"github.com/evolua/backend/internal/session"
	"github.com/evolua/backend/internal/shop"
	"github.com/evolua/backend/internal/user"
)

// Server exposes the REST API and the websocket endpoint, and wires the
// domain event callbacks into the broadcaster.
type Server struct {
	users       *user.Store
	sessions    *session.Controller
	store       *shop.Service
	events      *notify.Log
	broadcaster *Broadcaster
	log         zerolog.Logger
	authToken   string
	now         func() time.Time
}

// NewServer builds the API server and registers the broadcast hooks on
// its collaborators. Call it once per process.
func NewServer(users *user.Store, sessions *session.Controller, store *shop.Service, events *notify.Log, b *Broadcaster, logger zerolog.Logger, authToken string) *Server {
	s := &Server{
		users:       users,
		sessions:    sessions,
		store:       store,
		events:      events,
		broadcaster: b,
		log:         logger,
		authToken:   authToken,
		now:         time.Now,
	}

	users.OnLevelUp(func(up LevelUpPayload) {
		b.Broadcast(MsgLevelUp, up)
	})
	users.OnStreakBroken(func(br StreakBrokenPayload) {
		b.Broadcast(MsgStreakBroken, br)
	})
	users.OnStreakMilestone(func(m StreakMilestonePayload) {
		b.Broadcast(MsgStreakMilestone, m)
	})
	sessions.OnTick(func(st session.State) {
		b.Broadcast(MsgTick, TickPayload{Session: st})
	})
	sessions.OnComplete(func(out session.Completion) {
		b.Broadcast(MsgMissionCompleted, out)
		for _, a := range out.NewAchievements {
			b.Broadcast(MsgAchievementUnlocked, AchievementUnlockedPayload{Achievement: a})
		}
	})
	events.OnAdd(func(n notify.Notification) {
		b.Broadcast(MsgNotification, NotificationPayload{Notification: n})
	})

	return s
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/user", s.handleUser)
	mux.HandleFunc("/api/user/export", s.handleExport)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/missions", s.handleMissions)
	mux.HandleFunc("/api/missions/daily", s.handleDailyMissions)
	mux.HandleFunc("/api/greeting", s.handleGreeting)
	mux.HandleFunc("/api/achievements", s.handleAchievements)
	mux.HandleFunc("/api/achievements/progress", s.handleAchievementProgress)
	mux.HandleFunc("/api/notifications", s.handleNotifications)
	mux.HandleFunc("/api/notifications/", s.handleNotificationRoutes)
	mux.HandleFunc("/api/store", s.handleStore)
	mux.HandleFunc("/api/store/recommended", s.handleRecommended)
	mux.HandleFunc("/api/store/purchase", s.handlePurchase)
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/session/select", s.handleSelect)
	mux.HandleFunc("/api/session/start", s.handleStart)
	mux.HandleFunc("/api/session/pause", s.handlePause)
	mux.HandleFunc("/api/session/abandon", s.handleAbandon)
	mux.HandleFunc("/api/session/complete", s.handleComplete)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("ws upgrade error")
		return
	}

	snapshot := SnapshotPayload{
		Session: s.sessions.Snapshot(),
		Unread:  s.events.Unread(),
	}
	if u, ok := s.users.Load(); ok {
		snapshot.User = &u
	}

	c := s.broadcaster.AddClient(conn, snapshot)
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, ok := s.users.Load()
		if !ok {
			http.Error(w, "no user yet", http.StatusNotFound)
			return
		}
		s.writeJSON(w, u)
	case http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		if _, exists := s.users.Load(); exists {
			http.Error(w, "user already exists", http.StatusConflict)
			return
		}
		u := s.users.Create(strings.TrimSpace(body.Name))
		w.WriteHeader(http.StatusCreated)
		s.writeJSON(w, u)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	data, err := s.users.Export()
	if err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="evolua-export.json"`)
	w.Write(data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = n
	}
	s.writeJSON(w, map[string]any{
		"days":     days,
		"missions": s.users.History(days),
	})
}

func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, ok := s.users.Load()
	if !ok {
		http.Error(w, "no user yet", http.StatusNotFound)
		return
	}

	if c := r.URL.Query().Get("category"); c != "" {
		s.writeJSON(w, mission.ByCategory(mission.Category(c)))
		return
	}
	s.writeJSON(w, map[string]any{
		"available":  mission.Available(u.Level),
		"locked":     mission.LockedAt(u.Level),
		"premium":    mission.Premium(),
		"categories": mission.Categories,
	})
}

func (s *Server) handleDailyMissions(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, ok := s.users.Load()
	if !ok {
		http.Error(w, "no user yet", http.StatusNotFound)
		return
	}
	s.writeJSON(w, mission.Daily(s.dailyRand(), u.Level))
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, ok := s.users.Load()
	if !ok {
		http.Error(w, "no user yet", http.StatusNotFound)
		return
	}
	now := s.now()
	s.writeJSON(w, map[string]any{
		"greeting":  user.Greeting(u.Name, now, s.dailyRand()),
		"timeOfDay": user.TimeOfDayAt(now),
	})
}

// dailyRand seeds selection from the calendar date so the daily set is
// stable within a day and changes at midnight.
func (s *Server) dailyRand() *rand.Rand {
	y, m, d := s.now().UTC().Date()
	seed := int64(y)*10000 + int64(m)*100 + int64(d)
	return rand.New(rand.NewSource(seed))
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, ok := s.users.Load()
	if !ok {
		http.Error(w, "no user yet", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]any{
		"unlocked": u.Achievements,
		"stats":    achievement.Summarize(u.Achievements),
		"catalog":  achievement.Catalog(),
	})
}

func (s *Server) handleAchievementProgress(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, ok := s.users.Load()
	if !ok {
		http.Error(w, "no user yet", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]achievement.Progress{
		"missions": achievement.ProgressTowardNext(achievement.CategoryMissions, u.CompletedMissions),
		"xp":       achievement.ProgressTowardNext(achievement.CategoryXP, u.XP),
		"streak":   achievement.ProgressTowardNext(achievement.CategoryStreak, u.Streak),
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	s.writeJSON(w, map[string]any{
		"notifications": s.events.Notifications(),
		"unread":        s.events.Unread(),
	})
}

func (s *Server) handleNotificationRoutes(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	// Parse: /api/notifications/{id}/read
	path := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[1] != "read" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := url.PathUnescape(parts[0])
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}
	s.events.MarkRead(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	s.writeJSON(w, map[string]any{
		"items":       shop.Catalog(),
		"popular":     shop.Popular(),
		"limitedTime": shop.LimitedTime(s.now()),
	})
}

func (s *Server) handleRecommended(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, ok := s.users.Load()
	if !ok {
		http.Error(w, "no user yet", http.StatusNotFound)
		return
	}
	s.writeJSON(w, shop.Recommended(u.Level, u.CompletedMissions))
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		ItemID string `json:"itemId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ItemID == "" {
		http.Error(w, "itemId required", http.StatusBadRequest)
		return
	}
	res, err := s.store.Buy(r.Context(), body.ItemID)
	if err != nil {
		http.Error(w, res.Error, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, res)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	s.writeJSON(w, s.sessions.Snapshot())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		MissionID string `json:"missionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MissionID == "" {
		http.Error(w, "missionId required", http.StatusBadRequest)
		return
	}
	m, ok := mission.ByID(body.MissionID)
	if !ok {
		http.Error(w, "mission not found", http.StatusNotFound)
		return
	}
	st, err := s.sessions.Select(r.Context(), m)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.writeJSON(w, st)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.sessionTransition(w, r, s.sessions.Start)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.sessionTransition(w, r, s.sessions.Pause)
}

func (s *Server) sessionTransition(w http.ResponseWriter, r *http.Request, fn func() (session.State, error)) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st, err := fn()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.writeJSON(w, st)
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.sessions.Abandon())
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}
	out, err := s.sessions.Complete(body.Rating, body.Feedback)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.writeJSON(w, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("response encode error")
	}
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	if r.URL.Query().Get("token") == s.authToken {
		return true
	}
	if r.Header.Get("X-Evolua-Token") == s.authToken {
		return true
	}
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := parsed.Host
	if host == r.Host {
		return true
	}
	if strings.HasPrefix(host, "localhost:") || host == "localhost" {
		return true
	}
	if strings.HasPrefix(host, "127.0.0.1:") || host == "127.0.0.1" {
		return true
	}
	if strings.HasPrefix(host, "[::1]:") || host == "::1" {
		return true
	}
	return false
}
