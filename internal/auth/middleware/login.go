package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// POST /api/auth/login  { "email": "...", "password": "..." }
func LoginHandler(a *AuthService, db *sql.DB, limiter *RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil && !limiter.Allow(clientIP(r)) {
			http.Error(w, "too many login attempts, retry later", http.StatusTooManyRequests)
			return
		}
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		var (
			id   int64
			hash string
			role string
			name string
		)
		err := db.QueryRowContext(r.Context(),
			`SELECT id, password, role, name FROM users WHERE email=$1`,
			strings.ToLower(strings.TrimSpace(req.Email))).Scan(&id, &hash, &role, &name)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		// One active session per user: a fresh login invalidates earlier tokens.
		sid := uuid.NewString()
		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET session_id=$1 WHERE id=$2`, sid, id); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		tok, err := a.IssueJWT(id, role, sid)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		if limiter != nil {
			limiter.Reset(clientIP(r))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": tok,
			"role":         role,
			"name":         name,
		})
	}
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware rewrites RemoteAddr from X-Forwarded-For.
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
