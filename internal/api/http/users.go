package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/galien-mouassim/galien/internal/auth/middleware"
)

type userRow struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
}

func validRole(r string) bool {
	return r == "admin" || r == "worker" || r == "student"
}

// CreateUserHandler lets admins provision accounts with a role.
func CreateUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || len(req.Password) < 4 {
			http.Error(w, "email and password required", 400)
			return
		}
		if req.Role == "" {
			req.Role = "student"
		}
		if !validRole(req.Role) {
			http.Error(w, "unknown role", 400)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "hash failed", 500)
			return
		}
		var id int64
		err = db.QueryRowContext(r.Context(), `INSERT INTO users (email, password, name, role, created_at)
			VALUES ($1,$2,$3,$4,$5) RETURNING id`,
			req.Email, string(hash), req.Name, req.Role, time.Now().Unix()).Scan(&id)
		if err != nil {
			http.Error(w, "email already used", 409)
			return
		}
		writeJSON(w, 201, userRow{ID: id, Email: req.Email, Name: req.Name, Role: req.Role})
	}
}

func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT id, email, name, role, created_at FROM users`
		var args []any
		if role := r.URL.Query().Get("role"); role != "" {
			query += ` WHERE role=$1`
			args = append(args, role)
		}
		query += ` ORDER BY id`
		rows, err := db.QueryContext(r.Context(), query, args...)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		defer rows.Close()
		out := []userRow{}
		for rows.Next() {
			var u userRow
			if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
				http.Error(w, "db error", 500)
				return
			}
			out = append(out, u)
		}
		writeJSON(w, 200, out)
	}
}

func DeleteUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "bad id", 400)
			return
		}
		if uid, _ := auth.UserID(r); uid == id {
			http.Error(w, "cannot delete yourself", 400)
			return
		}
		if _, err := db.ExecContext(r.Context(), `DELETE FROM users WHERE id=$1`, id); err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id})
	}
}

// MeHandler returns the caller's profile.
func MeHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		var u userRow
		err := db.QueryRowContext(r.Context(),
			`SELECT id, email, name, role, created_at FROM users WHERE id=$1`, uid).
			Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
		if err != nil {
			http.Error(w, "unknown user", 404)
			return
		}
		writeJSON(w, 200, u)
	}
}

// GetPreferencesHandler returns the caller's stored UI preferences.
func GetPreferencesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		var theme string
		if err := db.QueryRowContext(r.Context(),
			`SELECT theme_preference FROM users WHERE id=$1`, uid).Scan(&theme); err != nil {
			http.Error(w, "unknown user", 404)
			return
		}
		writeJSON(w, 200, map[string]any{"theme": theme})
	}
}

func UpdatePreferencesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		var req struct {
			Theme string `json:"theme"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Theme != "light" && req.Theme != "dark" {
			http.Error(w, "unknown theme", 400)
			return
		}
		res, err := db.ExecContext(r.Context(),
			`UPDATE users SET theme_preference=$1 WHERE id=$2`, req.Theme, uid)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "unknown user", 404)
			return
		}
		writeJSON(w, 200, map[string]any{"theme": req.Theme})
	}
}

// ChangePasswordHandler verifies the current password before rehashing.
func ChangePasswordHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		var req struct {
			Current string `json:"current_password"`
			New     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.New) < 4 {
			http.Error(w, "bad request", 400)
			return
		}
		var hash string
		if err := db.QueryRowContext(r.Context(),
			`SELECT password FROM users WHERE id=$1`, uid).Scan(&hash); err != nil {
			http.Error(w, "unknown user", 404)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Current)) != nil {
			http.Error(w, "invalid credentials", 401)
			return
		}
		newHash, err := bcrypt.GenerateFromPassword([]byte(req.New), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "hash failed", 500)
			return
		}
		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET password=$1 WHERE id=$2`, string(newHash), uid); err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"updated": uid})
	}
}
