package share

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"audioshare/internal/contenthash"
	"audioshare/internal/logging"
	"audioshare/internal/services"
	"audioshare/internal/store"
)

// allowedProjectSuffixes is the extension allow-list for project uploads.
var allowedProjectSuffixes = map[string]struct{}{
	".ds":   {},
	".ustx": {},
	".svp":  {},
}

// ProjectRequest carries one synthesis-project upload.
type ProjectRequest struct {
	Payload  []byte
	FileName string
}

// UploadProject ingests one project payload. Identifiers are assigned as
// max+1; an assignment that loses the insert race re-reads the maximum and
// retries a bounded number of times.
func (s *Service) UploadProject(ctx context.Context, req ProjectRequest) (*store.Project, error) {
	if len(req.Payload) == 0 {
		return nil, services.Wrap(services.ErrValidation, "share", "upload project", "empty payload", nil)
	}
	if limit := s.cfg.Share.MaxProjectBytes; int64(len(req.Payload)) > limit {
		return nil, &TooLargeError{Limit: limit, Actual: int64(len(req.Payload))}
	}
	suffix := strings.ToLower(filepath.Ext(req.FileName))
	if _, ok := allowedProjectSuffixes[suffix]; !ok {
		return nil, services.Wrap(services.ErrUnsupported, "share", "upload project",
			"suffix "+suffix+" is not a recognized project type", nil)
	}

	fingerprint := contenthash.Fingerprint(req.Payload)
	if existing, err := s.store.ProjectByFingerprint(ctx, fingerprint); err != nil {
		return nil, services.Wrap(services.ErrStorage, "share", "upload project", "dedup check", err)
	} else if existing != nil {
		return nil, &ConflictError{Project: existing}
	}

	inserted, err := s.insertProjectWithRetry(ctx, fingerprint, suffix)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Put(ctx, inserted.BlobKey(), req.Payload, "application/octet-stream"); err != nil {
		// Release the record so the same content can be uploaded again; a
		// record without a payload would dedup every retry into a conflict.
		if delErr := s.store.DeleteProject(ctx, inserted.ProjectID); delErr != nil {
			s.logger.Error("project rollback failed",
				logging.Int64("project_id", inserted.ProjectID),
				logging.Error(delErr))
		}
		return nil, services.Wrap(services.ErrStorage, "share", "upload project", "store payload", err)
	}

	s.logger.Info(
		"project uploaded",
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.Int64("project_id", inserted.ProjectID),
		logging.String("suffix", suffix),
	)
	return inserted, nil
}

func (s *Service) insertProjectWithRetry(ctx context.Context, fingerprint, suffix string) (*store.Project, error) {
	var lastErr error
	for attempt := 0; attempt <= projectIDRetries; attempt++ {
		maxID, err := s.store.MaxProjectID(ctx)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "share", "upload project", "read max id", err)
		}
		candidate := &store.Project{
			ProjectID:   maxID + 1,
			Fingerprint: fingerprint,
			FileSuffix:  suffix,
			UploadTime:  s.now().UTC(),
		}
		inserted, err := s.store.InsertProject(ctx, candidate)
		if err == nil {
			return inserted, nil
		}

		var dup *store.DuplicateKeyError
		if !errors.As(err, &dup) {
			return nil, services.Wrap(services.ErrStorage, "share", "upload project", "persist record", err)
		}
		if dup.Field == "projects.file_md5" {
			existing, readErr := s.store.ProjectByFingerprint(ctx, fingerprint)
			if readErr != nil || existing == nil {
				return nil, services.Wrap(services.ErrStorage, "share", "upload project", "read winning record", readErr)
			}
			return nil, &ConflictError{Project: existing}
		}
		lastErr = err
		s.logger.Warn(
			"project id lost insert race",
			logging.Int64("project_id", candidate.ProjectID),
			logging.Int("attempt", attempt+1),
		)
	}
	return nil, services.Wrap(services.ErrTransient, "share", "upload project", "identifier retries exhausted", lastErr)
}

// ProjectURL issues a presigned URL for an uploaded project payload.
func (s *Service) ProjectURL(ctx context.Context, projectID int64) (string, error) {
	project, err := s.store.ProjectByID(ctx, projectID)
	if err != nil {
		return "", services.Wrap(services.ErrStorage, "share", "project url", "read record", err)
	}
	if project == nil {
		return "", services.Wrap(services.ErrNotFound, "share", "project url", "", nil)
	}
	url, err := s.blobs.PresignGet(ctx, project.BlobKey(), s.presignTTL())
	if err != nil {
		return "", services.Wrap(services.ErrStorage, "share", "project url", "presign", err)
	}
	return url, nil
}
