package question

import (
	"context"
	"errors"
	"strings"
)

// Taxonomy CRUD. Modules, courses and sources are the three
// classification axes a question may carry.

func (s *Store) ListModules(ctx context.Context) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM modules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Module{}
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateModule(ctx context.Context, name string) (Module, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Module{}, errors.New("name required")
	}
	var m Module
	m.Name = name
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO modules (name) VALUES ($1) RETURNING id`, name).Scan(&m.ID)
	return m, err
}

func (s *Store) DeleteModule(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id=$1`, id)
	return err
}

func (s *Store) ListCourses(ctx context.Context, moduleID *int64) ([]Course, error) {
	query := `SELECT id, name, module_id FROM courses`
	var args []any
	if moduleID != nil {
		query += ` WHERE module_id=$1`
		args = append(args, *moduleID)
	}
	query += ` ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.ModuleID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCourse(ctx context.Context, name string, moduleID *int64) (Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Course{}, errors.New("name required")
	}
	c := Course{Name: name, ModuleID: moduleID}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO courses (name, module_id) VALUES ($1,$2) RETURNING id`,
		name, moduleID).Scan(&c.ID)
	return c, err
}

func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id)
	return err
}

func (s *Store) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM sources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Source{}
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.Name); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *Store) CreateSource(ctx context.Context, name string) (Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Source{}, errors.New("name required")
	}
	var src Source
	src.Name = name
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO sources (name) VALUES ($1) RETURNING id`, name).Scan(&src.ID)
	return src, err
}

func (s *Store) DeleteSource(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id=$1`, id)
	return err
}

// ModuleIDByName resolves a module name (normalized comparison is done by
// the caller) to its id; used by the CSV importer.
func (s *Store) ModuleIDByName(ctx context.Context) (map[string]int64, error) {
	mods, err := s.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(mods))
	for _, m := range mods {
		out[m.Name] = m.ID
	}
	return out, nil
}

func (s *Store) CourseIDByName(ctx context.Context) (map[string]int64, error) {
	courses, err := s.ListCourses(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(courses))
	for _, c := range courses {
		out[c.Name] = c.ID
	}
	return out, nil
}

func (s *Store) SourceIDByName(ctx context.Context) (map[string]int64, error) {
	srcs, err := s.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(srcs))
	for _, src := range srcs {
		out[src.Name] = src.ID
	}
	return out, nil
}
