package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/galien-mouassim/galien/internal/question"
)

func ListModulesHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListModules(r.Context())
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}

func CreateModuleHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		m, err := store.CreateModule(r.Context(), req.Name)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, 201, m)
	}
}

func DeleteModuleHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "bad id", 400)
			return
		}
		if err := store.DeleteModule(r.Context(), id); err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id})
	}
}

func ListCoursesHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var moduleID *int64
		if id, ok := idParam(r.URL.Query().Get("module_id")); ok {
			moduleID = &id
		}
		out, err := store.ListCourses(r.Context(), moduleID)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}

func CreateCourseHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			ModuleID *int64 `json:"module_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		c, err := store.CreateCourse(r.Context(), req.Name, req.ModuleID)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, 201, c)
	}
}

func DeleteCourseHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "bad id", 400)
			return
		}
		if err := store.DeleteCourse(r.Context(), id); err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id})
	}
}

func ListSourcesHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListSources(r.Context())
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}

func CreateSourceHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		s, err := store.CreateSource(r.Context(), req.Name)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, 201, s)
	}
}

func DeleteSourceHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "bad id", 400)
			return
		}
		if err := store.DeleteSource(r.Context(), id); err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id})
	}
}
