package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	api "github.com/galien-mouassim/galien/internal/api/http"
	"github.com/galien-mouassim/galien/internal/audit"
	auth "github.com/galien-mouassim/galien/internal/auth/middleware"
	"github.com/galien-mouassim/galien/internal/config"
	"github.com/galien-mouassim/galien/internal/db"
	"github.com/galien-mouassim/galien/internal/feedback"
	"github.com/galien-mouassim/galien/internal/question"
	"github.com/galien-mouassim/galien/internal/rbac"
	"github.com/galien-mouassim/galien/internal/session"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	questions := question.NewStore(dbh)
	results := session.NewStore(dbh)
	reactions := feedback.NewStore(dbh)
	events := audit.NewLog(dbh)

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL)
	loginLimiter := auth.NewRateLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/api/auth/login", auth.LoginHandler(authSvc, dbh, loginLimiter))

	// Public taxonomy reads (the login page filters before auth).
	r.Get("/api/modules", api.ListModulesHandler(questions))
	r.Get("/api/courses", api.ListCoursesHandler(questions))
	r.Get("/api/sources", api.ListSourcesHandler(questions))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc, dbh))

		pr.With(rbac.Require("question:list")).
			Get("/api/questions", api.ListQuestionsHandler(questions))
		pr.With(rbac.Require("question:list")).
			Get("/api/questions/count", api.CountQuestionsHandler(questions))
		pr.With(rbac.Require("question:submit")).
			Post("/api/questions/submit", api.SubmitAnswersHandler(questions))
		pr.With(rbac.Require("question:create")).
			Post("/api/questions", api.CreateQuestionHandler(questions))
		pr.With(rbac.Require("question:update")).
			Put("/api/questions/{id}", api.UpdateQuestionHandler(questions))
		pr.With(rbac.Require("question:delete")).
			Delete("/api/questions/{id}", api.DeleteQuestionHandler(questions))
		pr.With(rbac.Require("question:check-duplicate")).
			Post("/api/questions/check-duplicate", api.CheckDuplicateHandler(questions))

		// Bulk import / export (admin)
		pr.With(rbac.Require("question:import")).
			Post("/api/questions/import/scan", api.ImportScanHandler(questions, cfg.ImportAutoExclude))
		pr.With(rbac.Require("question:import")).
			Post("/api/questions/import", api.ImportCommitHandler(questions, events))
		pr.With(rbac.Require("question:export")).
			Get("/api/admin/questions/export-csv", api.ExportCSVHandler(questions))

		// Taxonomy writes (admin)
		pr.With(rbac.Require("taxonomy:write")).
			Post("/api/modules", api.CreateModuleHandler(questions))
		pr.With(rbac.Require("taxonomy:write")).
			Delete("/api/modules/{id}", api.DeleteModuleHandler(questions))
		pr.With(rbac.Require("taxonomy:write")).
			Post("/api/courses", api.CreateCourseHandler(questions))
		pr.With(rbac.Require("taxonomy:write")).
			Delete("/api/courses/{id}", api.DeleteCourseHandler(questions))
		pr.With(rbac.Require("taxonomy:write")).
			Post("/api/sources", api.CreateSourceHandler(questions))
		pr.With(rbac.Require("taxonomy:write")).
			Delete("/api/sources/{id}", api.DeleteSourceHandler(questions))

		// Results
		pr.With(rbac.Require("question:flag")).
			Post("/api/questions/{id}/flag", api.FlagQuestionHandler(reactions, questions))
		pr.With(rbac.Require("question:comment")).
			Get("/api/questions/{id}/comments", api.ListCommentsHandler(reactions))
		pr.With(rbac.Require("question:comment")).
			Post("/api/questions/{id}/comments", api.CreateCommentHandler(reactions, questions))
		pr.With(rbac.Require("question:comment")).
			Delete("/api/comments/{id}", api.DeleteCommentHandler(reactions))

		pr.With(rbac.Require("result:create")).
			Post("/api/results", api.CreateResultHandler(results))
		pr.With(rbac.Require("result:view-own")).
			Get("/api/users/results", api.ListResultsHandler(results))
		pr.With(rbac.Require("result:update-own")).
			Patch("/api/results/{id}/meta", api.PatchResultMetaHandler(results))
		pr.With(rbac.Require("result:view-own")).
			Get("/api/results/{id}/questions", api.ResultQuestionsHandler(results))
		pr.With(rbac.Require("result:view-own")).
			Get("/api/questions/{id}/attempt-history", api.AttemptHistoryHandler(results))
		pr.With(rbac.Require("result:view-own")).
			Get("/api/users/stats", api.UserStatsHandler(results))

		// Moderation queue (admin)
		pr.With(rbac.Require("moderation:review")).
			Get("/api/admin/pending-questions", api.ListPendingHandler(questions))
		pr.With(rbac.Require("moderation:review")).
			Post("/api/admin/pending-questions/{id}/approve", api.ApproveQuestionHandler(questions, events))
		pr.With(rbac.Require("moderation:review")).
			Post("/api/admin/pending-questions/{id}/reject", api.RejectQuestionHandler(questions, events))
		pr.With(rbac.Require("moderation:review")).
			Get("/api/admin/events", api.AuditLogHandler(events))
		pr.With(rbac.Require("moderation:review")).
			Get("/api/admin/flags", api.ListFlagsHandler(reactions))
		pr.With(rbac.Require("moderation:review")).
			Post("/api/admin/flags/{id}/resolve", api.ResolveFlagHandler(reactions, events))

		// Accounts
		pr.Get("/api/users/me", api.MeHandler(dbh))
		pr.Get("/api/users/preferences", api.GetPreferencesHandler(dbh))
		pr.Put("/api/users/preferences", api.UpdatePreferencesHandler(dbh))
		pr.Post("/api/users/change-password", api.ChangePasswordHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Post("/api/admin/users", api.CreateUserHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Get("/api/admin/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Delete("/api/admin/users/{id}", api.DeleteUserHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedAdmin creates the initial admin account if no admin exists yet.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	var n int
	if err := dbh.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role='admin'`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = dbh.ExecContext(ctx, `INSERT INTO users (email, password, name, role, created_at)
		VALUES ($1,$2,$3,'admin',$4)`,
		cfg.AdminEmail, string(hash), cfg.AdminName, time.Now().Unix())
	if err == nil {
		log.Printf("seeded admin account %s", cfg.AdminEmail)
	}
	return err
}
