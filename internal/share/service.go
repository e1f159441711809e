package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"audioshare/internal/blob"
	"audioshare/internal/config"
	"audioshare/internal/contenthash"
	"audioshare/internal/logging"
	"audioshare/internal/services"
	"audioshare/internal/shortid"
	"audioshare/internal/store"
	"audioshare/internal/transcode"
)

// insertRetries bounds re-allocation after a short identifier lost the
// insert race. Each retry draws a fresh identifier.
const insertRetries = 5

// projectIDRetries bounds max+1 re-assignment after a project identifier
// lost the insert race.
const projectIDRetries = 5

// Transcoder is the pipeline boundary, narrowed so tests can count calls.
type Transcoder interface {
	Run(ctx context.Context, payload []byte, fingerprint string, voice bool) (*transcode.Result, error)
}

// UploadRequest carries one audio upload.
type UploadRequest struct {
	Payload  []byte
	FileName string
	ClientIP string
	Voice    bool
	// ExpireDays of zero selects the configured default.
	ExpireDays int
	// ProjectID optionally links the audio to an uploaded project.
	ProjectID *int64
}

// AudioView is the caller-facing shape of a shared audio record.
type AudioView struct {
	ShortID       string    `json:"short_url"`
	FileName      string    `json:"file_name"`
	AudioType     string    `json:"audio_type"`
	SampleRate    int       `json:"audio_sample_rate"`
	UploadTime    time.Time `json:"upload_time"`
	ExpireTime    time.Time `json:"expire_time"`
	VisitCount    int64     `json:"visit_count"`
	DownloadCount int64     `json:"download_count"`
	ProjectID     *int64    `json:"project_id,omitempty"`
	PlayURL       string    `json:"play_url"`
}

// Service orchestrates uploads, lookups, and presigned retrieval.
//
// Dedup runs before any allocation or transcoding work. The read-side checks
// are advisory; the store's UNIQUE constraints decide races, and inserts that
// lose an identifier race are retried a bounded number of times with fresh
// identifiers.
type Service struct {
	cfg        *config.Config
	store      *store.Store
	blobs      blob.Store
	transcoder Transcoder
	allocator  *shortid.Allocator
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the orchestrator.
func NewService(cfg *config.Config, st *store.Store, blobs blob.Store, transcoder Transcoder, logger *slog.Logger) *Service {
	svc := &Service{
		cfg:        cfg,
		store:      st,
		blobs:      blobs,
		transcoder: transcoder,
		logger:     logging.NewComponentLogger(logger, "share"),
		now:        time.Now,
	}
	svc.allocator = shortid.NewAllocator(cfg.Share.ShortIDLength, st.ShortIDExists)
	return svc
}

func (s *Service) presignTTL() time.Duration {
	return time.Duration(s.cfg.Share.PresignTTLSeconds) * time.Second
}

// Upload ingests one audio payload: dedup, identifier allocation, transcode,
// persist. A payload whose fingerprint is already shared returns
// ConflictError carrying the existing record.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*store.SharedAudio, error) {
	if len(req.Payload) == 0 {
		return nil, services.Wrap(services.ErrValidation, "share", "upload", "empty payload", nil)
	}
	if limit := s.cfg.Share.MaxAudioBytes; int64(len(req.Payload)) > limit {
		return nil, &TooLargeError{Limit: limit, Actual: int64(len(req.Payload))}
	}
	expireDays := req.ExpireDays
	if expireDays == 0 {
		expireDays = s.cfg.Share.DefaultExpireDays
	}
	if expireDays < 1 || expireDays > s.cfg.Share.MaxExpireDays {
		return nil, services.Wrap(services.ErrValidation, "share", "upload",
			fmt.Sprintf("expire days must be between 1 and %d", s.cfg.Share.MaxExpireDays), nil)
	}
	if req.ProjectID != nil {
		project, err := s.store.ProjectByID(ctx, *req.ProjectID)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "share", "upload", "check linked project", err)
		}
		if project == nil {
			return nil, services.Wrap(services.ErrValidation, "share", "upload",
				fmt.Sprintf("linked project %d does not exist", *req.ProjectID), nil)
		}
	}

	fingerprint := contenthash.Fingerprint(req.Payload)
	if existing, err := s.store.AudioByFingerprint(ctx, fingerprint); err != nil {
		return nil, services.Wrap(services.ErrStorage, "share", "upload", "dedup check", err)
	} else if existing != nil {
		return nil, &ConflictError{Audio: existing}
	}

	shortID, err := s.allocator.Allocate(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "share", "upload", "allocate short id", err)
	}

	result, err := s.transcoder.Run(ctx, req.Payload, fingerprint, req.Voice)
	if err != nil {
		return nil, err
	}

	uploadTime := s.now().UTC()
	record := &store.SharedAudio{
		UploadTime:  uploadTime,
		UploadIP:    IPToInt(req.ClientIP),
		FileName:    displayName(uploadTime, req.FileName, result.AudioType),
		Fingerprint: fingerprint,
		AudioType:   result.AudioType,
		SampleRate:  result.SampleRate,
		ProjectID:   req.ProjectID,
		ShortID:     shortID,
		ExpireTime:  computeExpiry(uploadTime, expireDays),
	}

	inserted, err := s.insertWithRetry(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info(
		"audio shared",
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.String(logging.FieldShortID, inserted.ShortID),
		logging.String("audio_type", inserted.AudioType),
		logging.Int("expire_days", expireDays),
	)
	return inserted, nil
}

// insertWithRetry persists the record, treating UNIQUE violations as the
// final arbiter: a fingerprint collision means a concurrent identical upload
// won and becomes a conflict, a short identifier collision draws a fresh
// identifier and retries.
func (s *Service) insertWithRetry(ctx context.Context, record *store.SharedAudio) (*store.SharedAudio, error) {
	var lastErr error
	for attempt := 0; attempt <= insertRetries; attempt++ {
		inserted, err := s.store.InsertAudio(ctx, record)
		if err == nil {
			return inserted, nil
		}

		var dup *store.DuplicateKeyError
		if !errors.As(err, &dup) {
			return nil, services.Wrap(services.ErrStorage, "share", "upload", "persist record", err)
		}
		switch dup.Field {
		case "shared_audio.file_md5":
			existing, readErr := s.store.AudioByFingerprint(ctx, record.Fingerprint)
			if readErr != nil || existing == nil {
				return nil, services.Wrap(services.ErrStorage, "share", "upload", "read winning record", readErr)
			}
			return nil, &ConflictError{Audio: existing}
		case "shared_audio.short_url":
			lastErr = err
			shortID, allocErr := s.allocator.Allocate(ctx)
			if allocErr != nil {
				return nil, services.Wrap(services.ErrTransient, "share", "upload", "re-allocate short id", allocErr)
			}
			s.logger.Warn(
				"short id lost insert race",
				logging.String(logging.FieldShortID, record.ShortID),
				logging.Int("attempt", attempt+1),
			)
			record.ShortID = shortID
		default:
			return nil, services.Wrap(services.ErrStorage, "share", "upload", "persist record", err)
		}
	}
	return nil, services.Wrap(services.ErrTransient, "share", "upload", "identifier retries exhausted", lastErr)
}

// Lookup resolves a short identifier to its audio view, bumping the visit
// counter and attaching a presigned play URL for the streaming derivative.
func (s *Service) Lookup(ctx context.Context, shortID string) (*AudioView, error) {
	record, err := s.liveRecord(ctx, shortID)
	if err != nil {
		return nil, err
	}
	if err := s.store.IncrementVisit(ctx, record.ID); err != nil {
		return nil, services.Wrap(services.ErrStorage, "share", "lookup", "bump visit counter", err)
	}
	record.VisitCount++

	playURL, err := s.blobs.PresignGet(ctx, record.StreamBlobKey(), s.presignTTL())
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "share", "lookup", "presign play url", err)
	}
	return &AudioView{
		ShortID:       record.ShortID,
		FileName:      record.FileName,
		AudioType:     record.AudioType,
		SampleRate:    record.SampleRate,
		UploadTime:    record.UploadTime,
		ExpireTime:    record.ExpireTime,
		VisitCount:    record.VisitCount,
		DownloadCount: record.DownloadCount,
		ProjectID:     record.ProjectID,
		PlayURL:       playURL,
	}, nil
}

// DownloadURL issues a presigned URL for the retained raw artifact, bumping
// the download counter.
func (s *Service) DownloadURL(ctx context.Context, shortID string) (string, error) {
	record, err := s.liveRecord(ctx, shortID)
	if err != nil {
		return "", err
	}
	if err := s.store.IncrementDownload(ctx, record.ID); err != nil {
		return "", services.Wrap(services.ErrStorage, "share", "download", "bump download counter", err)
	}
	url, err := s.blobs.PresignGet(ctx, record.RawBlobKey(), s.presignTTL())
	if err != nil {
		return "", services.Wrap(services.ErrStorage, "share", "download", "presign raw url", err)
	}
	return url, nil
}

func (s *Service) liveRecord(ctx context.Context, shortID string) (*store.SharedAudio, error) {
	record, err := s.store.AudioByShortID(ctx, shortID)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "share", "lookup", "read record", err)
	}
	if record == nil {
		return nil, services.Wrap(services.ErrNotFound, "share", "lookup", shortID, nil)
	}
	if isExpired(s.now(), record.ExpireTime) {
		return nil, services.Wrap(services.ErrExpired, "share", "lookup", shortID, nil)
	}
	return record, nil
}

// displayName builds the stored file name: upload timestamp prefix plus the
// declared name, falling back to the probed type when none was declared.
func displayName(uploadTime time.Time, declared, audioType string) string {
	base := filepath.Base(declared)
	if base == "." || base == "/" || base == "" {
		base = "audio." + audioType
	}
	return uploadTime.Format("20060102150405") + "_" + base
}
