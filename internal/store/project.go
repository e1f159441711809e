package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const projectColumns = "project_id, file_md5, file_suffix, upload_time"

func projectBlobKey(id int64, suffix string) string {
	return fmt.Sprintf("%d%s", id, suffix)
}

// InsertProject persists a new project record with an explicit identifier.
// A UNIQUE violation on project_id or file_md5 surfaces as DuplicateKeyError
// so the caller can re-read the maximum and retry the assignment.
func (s *Store) InsertProject(ctx context.Context, project *Project) (*Project, error) {
	if project == nil {
		return nil, errors.New("project is nil")
	}
	if strings.TrimSpace(project.Fingerprint) == "" {
		return nil, errors.New("fingerprint is required")
	}
	if project.ProjectID <= 0 {
		return nil, errors.New("project id must be positive")
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO projects (project_id, file_md5, file_suffix, upload_time) VALUES (?, ?, ?, ?)`,
		project.ProjectID,
		project.Fingerprint,
		project.FileSuffix,
		formatTime(project.UploadTime),
	)
	if err != nil {
		if dup := classifyInsertError(err); dup != err {
			return nil, dup
		}
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.ProjectByID(ctx, project.ProjectID)
}

// DeleteProject removes a project record. Callers use it to release an
// identifier reservation when the payload never made it to the blob store.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE project_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete project: no record with id %d", id)
	}
	return nil
}

// ProjectByID fetches a project record by identifier.
func (s *Store) ProjectByID(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE project_id = ?`, id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// ProjectByFingerprint returns the project matching a content fingerprint, or nil.
func (s *Store) ProjectByFingerprint(ctx context.Context, fingerprint string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE file_md5 = ?`, fingerprint)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by fingerprint: %w", err)
	}
	return project, nil
}

// MaxProjectID returns the highest assigned project identifier, or 0 when
// the table is empty.
func (s *Store) MaxProjectID(ctx context.Context) (int64, error) {
	var maxID int64
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(project_id), 0) FROM projects`)
	if err := row.Scan(&maxID); err != nil {
		return 0, fmt.Errorf("max project id: %w", err)
	}
	return maxID, nil
}

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, error) {
	var (
		projectID   int64
		fingerprint string
		suffix      string
		uploadRaw   string
	)
	if err := scanner.Scan(&projectID, &fingerprint, &suffix, &uploadRaw); err != nil {
		return nil, err
	}
	project := &Project{
		ProjectID:   projectID,
		Fingerprint: fingerprint,
		FileSuffix:  suffix,
	}
	if uploaded, err := parseTimeString(uploadRaw); err == nil {
		project.UploadTime = uploaded
	}
	return project, nil
}
