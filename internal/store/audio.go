package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const audioColumns = "id, upload_time, upload_ip, file_name, file_md5, audio_type, audio_sample_rate, project_id, short_url, expire_time, visit_count, download_count"

// InsertAudio persists a new shared audio record. UNIQUE violations on the
// fingerprint or short identifier surface as DuplicateKeyError.
func (s *Store) InsertAudio(ctx context.Context, audio *SharedAudio) (*SharedAudio, error) {
	if audio == nil {
		return nil, errors.New("audio is nil")
	}
	if strings.TrimSpace(audio.Fingerprint) == "" {
		return nil, errors.New("fingerprint is required")
	}
	if strings.TrimSpace(audio.ShortID) == "" {
		return nil, errors.New("short id is required")
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO shared_audio (
            upload_time, upload_ip, file_name, file_md5, audio_type,
            audio_sample_rate, project_id, short_url, expire_time,
            visit_count, download_count
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		formatTime(audio.UploadTime),
		audio.UploadIP,
		nullableString(audio.FileName),
		audio.Fingerprint,
		audio.AudioType,
		audio.SampleRate,
		nullableInt64(audio.ProjectID),
		audio.ShortID,
		formatTime(audio.ExpireTime),
		audio.VisitCount,
		audio.DownloadCount,
	)
	if err != nil {
		if dup := classifyInsertError(err); dup != err {
			return nil, dup
		}
		return nil, fmt.Errorf("insert shared audio: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.AudioByID(ctx, id)
}

// AudioByID fetches a shared audio record by row identifier.
func (s *Store) AudioByID(ctx context.Context, id int64) (*SharedAudio, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+audioColumns+` FROM shared_audio WHERE id = ?`, id)
	audio, err := scanAudio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shared audio: %w", err)
	}
	return audio, nil
}

// AudioByFingerprint returns the record matching a content fingerprint, or nil.
func (s *Store) AudioByFingerprint(ctx context.Context, fingerprint string) (*SharedAudio, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+audioColumns+` FROM shared_audio WHERE file_md5 = ?`, fingerprint)
	audio, err := scanAudio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by fingerprint: %w", err)
	}
	return audio, nil
}

// AudioByShortID returns the record matching a short identifier, or nil.
func (s *Store) AudioByShortID(ctx context.Context, shortID string) (*SharedAudio, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+audioColumns+` FROM shared_audio WHERE short_url = ?`, shortID)
	audio, err := scanAudio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by short id: %w", err)
	}
	return audio, nil
}

// ShortIDExists reports whether a short identifier is already assigned.
func (s *Store) ShortIDExists(ctx context.Context, shortID string) (bool, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM shared_audio WHERE short_url = ?`, shortID)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("short id existence: %w", err)
	}
	return count > 0, nil
}

// IncrementVisit bumps the visit counter atomically in the database, so
// concurrent lookups never lose updates.
func (s *Store) IncrementVisit(ctx context.Context, id int64) error {
	return s.incrementAudioField(ctx, id, "visit_count")
}

// IncrementDownload bumps the download counter atomically in the database.
func (s *Store) IncrementDownload(ctx context.Context, id int64) error {
	return s.incrementAudioField(ctx, id, "download_count")
}

func (s *Store) incrementAudioField(ctx context.Context, id int64, column string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shared_audio SET `+column+` = `+column+` + 1 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("increment %s: no record with id %d", column, id)
	}
	return nil
}

// RecentAudio returns the most recently uploaded records, newest first.
func (s *Store) RecentAudio(ctx context.Context, limit int) ([]*SharedAudio, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+audioColumns+` FROM shared_audio ORDER BY upload_time DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent audio: %w", err)
	}
	defer rows.Close()

	var items []*SharedAudio
	for rows.Next() {
		audio, err := scanAudio(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, audio)
	}
	return items, rows.Err()
}

func scanAudio(scanner interface{ Scan(dest ...any) error }) (*SharedAudio, error) {
	var (
		id            int64
		uploadRaw     string
		uploadIP      int64
		fileName      sql.NullString
		fingerprint   string
		audioType     string
		sampleRate    int
		projectID     sql.NullInt64
		shortID       string
		expireRaw     string
		visitCount    int64
		downloadCount int64
	)

	if err := scanner.Scan(
		&id,
		&uploadRaw,
		&uploadIP,
		&fileName,
		&fingerprint,
		&audioType,
		&sampleRate,
		&projectID,
		&shortID,
		&expireRaw,
		&visitCount,
		&downloadCount,
	); err != nil {
		return nil, err
	}

	audio := &SharedAudio{
		ID:            id,
		UploadIP:      uint32(uploadIP),
		FileName:      fileName.String,
		Fingerprint:   fingerprint,
		AudioType:     audioType,
		SampleRate:    sampleRate,
		ShortID:       shortID,
		VisitCount:    visitCount,
		DownloadCount: downloadCount,
	}
	if projectID.Valid {
		v := projectID.Int64
		audio.ProjectID = &v
	}
	if uploaded, err := parseTimeString(uploadRaw); err == nil {
		audio.UploadTime = uploaded
	}
	if expire, err := parseTimeString(expireRaw); err == nil {
		audio.ExpireTime = expire
	}
	return audio, nil
}
