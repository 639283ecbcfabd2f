package store

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListQueuedJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error

	UpsertArtifact(ctx context.Context, a *Artifact) error
	ListArtifacts(ctx context.Context, project string) ([]*Artifact, error)
	GetArtifact(ctx context.Context, project, videoRel, kind string) (*Artifact, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) ([]*Setting, error)
	DeleteSetting(ctx context.Context, key string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, kind, project, video_rel, model_size, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.Kind, j.Project, j.VideoRel, j.ModelSize, j.Status, nullString(j.Error),
		j.CreatedAt.Format(time.RFC3339), j.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, kind, project, video_rel, model_size, status, error, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id)

	var j Job
	var errMsg sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&j.ID, &j.Kind, &j.Project, &j.VideoRel, &j.ModelSize, &j.Status, &errMsg, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.Error = errMsg.String
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, project, video_rel, model_size, status, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanJobs(rows)
}

func (r *SQLiteRepository) ListQueuedJobs(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, project, video_rel, model_size, status, error, created_at, updated_at
		FROM jobs WHERE status = 'queued' ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanJobs(rows)
}

func (r *SQLiteRepository) scanJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		var j Job
		var errMsg sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&j.ID, &j.Kind, &j.Project, &j.VideoRel, &j.ModelSize, &j.Status, &errMsg, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		j.Error = errMsg.String
		j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = datetime('now') WHERE id = ?
	`, status, nullString(errorMsg), id)
	return err
}

func (r *SQLiteRepository) UpsertArtifact(ctx context.Context, a *Artifact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artifacts (project, video_rel, sha256, kind, rel_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project, video_rel, kind) DO UPDATE SET
			sha256 = excluded.sha256,
			rel_path = excluded.rel_path,
			created_at = excluded.created_at
	`, a.Project, a.VideoRel, a.SHA256, a.Kind, a.RelPath, a.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) ListArtifacts(ctx context.Context, project string) ([]*Artifact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project, video_rel, sha256, kind, rel_path, created_at
		FROM artifacts WHERE project = ? ORDER BY video_rel, kind
	`, project)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*Artifact
	for rows.Next() {
		var a Artifact
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Project, &a.VideoRel, &a.SHA256, &a.Kind, &a.RelPath, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		artifacts = append(artifacts, &a)
	}
	return artifacts, rows.Err()
}

func (r *SQLiteRepository) GetArtifact(ctx context.Context, project, videoRel, kind string) (*Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project, video_rel, sha256, kind, rel_path, created_at
		FROM artifacts WHERE project = ? AND video_rel = ? AND kind = ?
	`, project, videoRel, kind)

	var a Artifact
	var createdAt string
	err := row.Scan(&a.ID, &a.Project, &a.VideoRel, &a.SHA256, &a.Kind, &a.RelPath, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')
	`, key, value)
	return err
}

func (r *SQLiteRepository) ListSettings(ctx context.Context) ([]*Setting, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

func (r *SQLiteRepository) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
