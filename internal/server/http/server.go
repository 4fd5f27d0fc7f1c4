package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quotidianapp/quotidian/internal/dayutil"
	"github.com/quotidianapp/quotidian/internal/model"
	"github.com/quotidianapp/quotidian/internal/service"
)

// Server wires services into JSON handlers.
type Server struct {
	auth    service.AuthService
	journal service.JournalService
	jokers  service.JokerService
	missed  service.MissedDayFlow
	streaks service.StreakService
	calview service.CalendarViewService
	recap   service.RecapService
	now     func() time.Time
}

// New constructs a Server with injected services.
func New(
	auth service.AuthService,
	journal service.JournalService,
	jokers service.JokerService,
	missed service.MissedDayFlow,
	streaks service.StreakService,
	calview service.CalendarViewService,
	recap service.RecapService,
) *Server {
	return &Server{
		auth:    auth,
		journal: journal,
		jokers:  jokers,
		missed:  missed,
		streaks: streaks,
		calview: calview,
		recap:   recap,
		now:     time.Now,
	}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(log), Logging(log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	authed := api.Group("", AuthRequired(s.auth))
	authed.GET("/profile", s.handleProfile)
	authed.GET("/questions/today", s.handleTodayQuestion)
	authed.POST("/answers/today", s.handleSubmitToday)
	authed.GET("/answers/missed/:day", s.handleOpenMissed)
	authed.POST("/answers/missed", s.handleSubmitMissed)
	authed.GET("/calendar/:month", s.handleCalendarMonth)
	authed.GET("/streaks", s.handleStreaks)
	authed.GET("/recap", s.handleRecap)
	authed.GET("/jokers", s.handleJokerBalance)
	return r
}

func lang(ctx *gin.Context) string {
	if l := ctx.Query("lang"); l != "" {
		return l
	}
	return "en"
}

// --- Auth ---

type credentialsReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(ctx *gin.Context) {
	var req credentialsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondErr(ctx, http.StatusBadRequest, 40001, "username and password required")
		return
	}
	id, err := s.auth.Register(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"user_id": id})
}

func (s *Server) handleLogin(ctx *gin.Context) {
	var req credentialsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondErr(ctx, http.StatusBadRequest, 40001, "username and password required")
		return
	}
	tokens, _, err := s.auth.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"token": tokens.AccessToken, "expires_at": tokens.ExpiresAt})
}

// --- Profile ---

// handleProfile applies the monthly grant (safe on every load) and
// returns balance plus streaks in one round trip.
func (s *Server) handleProfile(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		respondErr(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	now := s.now()
	if err := s.jokers.GrantMonthly(ctx.Request.Context(), uid, now); err != nil {
		respondMapped(ctx, err)
		return
	}
	balance, err := s.jokers.Balance(ctx.Request.Context(), uid)
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	st, err := s.streaks.Current(ctx.Request.Context(), uid, now)
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	resp := gin.H{
		"balance":       balance,
		"visual_streak": st.Visual,
		"real_streak":   st.Real,
	}
	if st.Milestone > 0 {
		resp["milestone"] = st.Milestone
	}
	respondOK(ctx, resp)
}

// --- Today ---

func (s *Server) handleTodayQuestion(ctx *gin.Context) {
	q, err := s.journal.TodayQuestion(ctx.Request.Context(), lang(ctx), s.now())
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"day": q.Day, "text": q.Text})
}

type submitTodayReq struct {
	Text string `json:"text"`
}

func (s *Server) handleSubmitToday(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		respondErr(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	var req submitTodayReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondErr(ctx, http.StatusBadRequest, 40002, "text required")
		return
	}
	if err := s.journal.SubmitToday(ctx.Request.Context(), uid, lang(ctx), req.Text, s.now()); err != nil {
		respondMapped(ctx, err)
		return
	}
	respondOK(ctx, nil)
}

// --- Missed days ---

func (s *Server) handleOpenMissed(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		respondErr(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	day, err := dayutil.Parse(ctx.Param("day"))
	if err != nil {
		respondErr(ctx, http.StatusBadRequest, 40003, "invalid day")
		return
	}
	p, err := s.missed.Open(ctx.Request.Context(), uid, day, lang(ctx), s.now())
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	resp := gin.H{"state": p.State, "balance": p.Balance}
	if p.Question != nil {
		resp["question"] = p.Question.Text
	}
	respondOK(ctx, resp)
}

type submitMissedReq struct {
	Day  string `json:"day" binding:"required"`
	Text string `json:"text"`
}

func (s *Server) handleSubmitMissed(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		respondErr(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	var req submitMissedReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondErr(ctx, http.StatusBadRequest, 40002, "day and text required")
		return
	}
	day, err := dayutil.Parse(req.Day)
	if err != nil {
		respondErr(ctx, http.StatusBadRequest, 40003, "invalid day")
		return
	}
	if err := s.missed.Submit(ctx.Request.Context(), uid, day, lang(ctx), req.Text, s.now()); err != nil {
		respondMapped(ctx, err)
		return
	}
	respondOK(ctx, nil)
}

// --- Calendar ---

type dayCellResp struct {
	Day      dayutil.DayKey  `json:"day"`
	State    model.CellState `json:"state"`
	Question string          `json:"question,omitempty"`
	Answer   string          `json:"answer,omitempty"`
	IsJoker  bool            `json:"is_joker,omitempty"`
}

func (s *Server) handleCalendarMonth(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		respondErr(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	month, err := dayutil.ParseMonth(ctx.Param("month"))
	if err != nil {
		respondErr(ctx, http.StatusBadRequest, 40004, "invalid month")
		return
	}
	refresh := ctx.Query("refresh") == "1"
	cells, err := s.calview.Month(ctx.Request.Context(), uid, month, lang(ctx), refresh, s.now())
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	out := make([]dayCellResp, 0, len(cells))
	for _, c := range cells {
		rc := dayCellResp{Day: c.Day, State: c.State}
		if c.Entry != nil {
			rc.Question = c.Entry.QuestionText
			rc.Answer = c.Entry.AnswerText
			rc.IsJoker = c.Entry.IsJoker
		}
		out = append(out, rc)
	}
	respondOK(ctx, gin.H{"month": month, "days": out})
}

// --- Streaks, recap, jokers ---

func (s *Server) handleStreaks(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		respondErr(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	st, err := s.streaks.Current(ctx.Request.Context(), uid, s.now())
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	resp := gin.H{"visual_streak": st.Visual, "real_streak": st.Real}
	if st.Milestone > 0 {
		resp["milestone"] = st.Milestone
	}
	respondOK(ctx, resp)
}

func (s *Server) handleRecap(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		respondErr(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	r, err := s.recap.Weekly(ctx.Request.Context(), uid, s.now())
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	if r == nil {
		respondOK(ctx, nil)
		return
	}
	respondOK(ctx, gin.H{
		"start":    r.Start,
		"end":      r.End,
		"answered": r.Answered,
		"total":    r.Total,
	})
}

func (s *Server) handleJokerBalance(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		respondErr(ctx, http.StatusUnauthorized, 40100, "unauthorized")
		return
	}
	balance, err := s.jokers.Balance(ctx.Request.Context(), uid)
	if err != nil {
		respondMapped(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"balance": balance})
}
