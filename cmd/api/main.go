package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"classattend/internal/attendance"
	"classattend/internal/auth"
	"classattend/internal/config"
	"classattend/internal/course"
	"classattend/internal/eligibility"
	"classattend/internal/enrollment"
	"classattend/internal/errs"
	"classattend/internal/face"
	"classattend/internal/httpmiddleware"
	"classattend/internal/identity"
	"classattend/internal/locnet"
	"classattend/internal/logging"
	"classattend/internal/queue"
	"classattend/internal/store"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.Env)
	defer log.Sync()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, log *zap.Logger) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := store.Migrate(context.Background(), db.Client); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "classattend:marked")
	}

	users := identity.NewRepository(db.Client)
	courses := course.NewRepository(db.Client)
	enrollments := enrollment.NewRepository(db.Client)
	records := attendance.NewRepository(db.Client)

	sessions := course.NewService(courses, log)
	joins := enrollment.NewService(enrollments, courses, log)
	resolver := eligibility.NewResolver(enrollments)
	recorder := attendance.NewRecorder(records, courses, face.NewEuclidean(), resolver, locnet.AllowAll{}, log)

	// currentIdentity resolves the bearer token's subject to the stored user.
	// The token's role claim is never trusted on its own.
	currentIdentity := func(c *gin.Context) (identity.Identity, bool) {
		claims, ok := auth.FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return identity.Identity{}, false
		}
		ident, err := users.Get(c.Request.Context(), claims.Subject)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity lookup failed"})
			return identity.Identity{}, false
		}
		if ident == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return identity.Identity{}, false
		}
		return *ident, true
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	// Token minting for an already-provisioned user. Credential verification
	// happens upstream; this mirrors how devices were bootstrapped before.
	r.POST("/v1/auth/token", func(c *gin.Context) {
		var req struct {
			UserID string `json:"user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ident, err := users.Get(c.Request.Context(), req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
			return
		}
		if ident == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown user"})
			return
		}
		tokens, err := auth.Issue(ident.ID, string(ident.Role), cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		_ = users.SaveRefreshToken(c.Request.Context(), ident.ID, tokens.RefreshToken, tokens.RefreshExp)
		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	authGroup := r.Group("/v1", auth.RequireAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authGroup.POST("/courses/:id/activate", func(c *gin.Context) {
		ident, ok := currentIdentity(c)
		if !ok {
			return
		}
		updated, err := sessions.Activate(c.Request.Context(), ident, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"course": updated})
	})

	authGroup.POST("/courses/:id/deactivate", func(c *gin.Context) {
		ident, ok := currentIdentity(c)
		if !ok {
			return
		}
		updated, err := sessions.Deactivate(c.Request.Context(), ident, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"course": updated})
	})

	authGroup.GET("/courses/eligible", func(c *gin.Context) {
		ident, ok := currentIdentity(c)
		if !ok {
			return
		}
		if ident.Role != identity.RoleStudent {
			writeError(c, errs.ErrForbidden)
			return
		}
		active, err := sessions.ListActive(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		eligible, err := resolver.FilterEligible(c.Request.Context(), ident, active)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"courses": eligible})
	})

	authGroup.POST("/courses/:id/join", func(c *gin.Context) {
		ident, ok := currentIdentity(c)
		if !ok {
			return
		}
		if err := joins.Join(c.Request.Context(), ident, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"joined": true})
	})

	authGroup.POST("/faces/enroll", func(c *gin.Context) {
		ident, ok := currentIdentity(c)
		if !ok {
			return
		}
		if ident.Role != identity.RoleStudent {
			writeError(c, errs.ErrForbidden)
			return
		}
		var req struct {
			Descriptor []float64 `json:"descriptor" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d, err := face.Parse(req.Descriptor)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := users.SetDescriptor(c.Request.Context(), ident.ID, d); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enrollment failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"enrolled": true})
	})

	authGroup.POST("/attendance", func(c *gin.Context) {
		ident, ok := currentIdentity(c)
		if !ok {
			return
		}
		var req struct {
			CourseID   string    `json:"course_id" binding:"required"`
			Descriptor []float64 `json:"descriptor" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		live, err := face.Parse(req.Descriptor)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rec, err := recorder.Mark(c.Request.Context(), ident, req.CourseID, live, c.ClientIP())
		if err != nil {
			writeError(c, err)
			return
		}
		body, _ := json.Marshal(markedEvent{
			RecordID:  rec.ID,
			StudentID: rec.StudentID,
			CourseID:  rec.CourseID,
			Day:       attendance.DayKey(rec.MarkedAt),
		})
		if err := q.Publish(c.Request.Context(), queue.Message{Type: "attendance.marked", Body: body}); err != nil {
			log.Warn("queue publish failed", zap.Error(err))
		}
		c.JSON(http.StatusCreated, gin.H{"record": rec})
	})

	authGroup.GET("/courses/:id/attendance", func(c *gin.Context) {
		ident, ok := currentIdentity(c)
		if !ok {
			return
		}
		limit, offset := 50, 0
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}
		if v := c.Query("offset"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				offset = parsed
			}
		}
		recs, err := recorder.ListForCourse(c.Request.Context(), ident, c.Param("id"), c.Query("day"), limit, offset)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": recs})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
	return nil
}

// markedEvent is the queue payload published after a successful mark.
type markedEvent struct {
	RecordID  string `json:"record_id"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Day       string `json:"day"`
}

// writeError maps core failure kinds to HTTP statuses. The kind label rides
// along so clients can branch without parsing messages.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrForbidden), errors.Is(err, errs.ErrNotEligible):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrFaceVerificationRequired):
		status = http.StatusPreconditionFailed
	case errors.Is(err, errs.ErrVerificationFailed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrSessionNotActive), errors.Is(err, errs.ErrAlreadyMarked):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": errs.Kind(err)})
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
