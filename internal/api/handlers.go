package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"audioshare/internal/logging"
	"audioshare/internal/services"
	"audioshare/internal/share"
)

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

type uploadAudioResponse struct {
	ShortURL   string    `json:"short_url"`
	FileName   string    `json:"file_name"`
	AudioType  string    `json:"audio_type"`
	ExpireTime time.Time `json:"expire_time"`
}

type uploadProjectResponse struct {
	ProjectID int64 `json:"project_id"`
}

func (s *Server) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Share.MaxAudioBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	req := share.UploadRequest{
		Payload:  payload,
		FileName: q.Get("file_name"),
		ClientIP: r.RemoteAddr,
		// Voice profile is opt-out: most uploads are vocal takes.
		Voice: true,
	}
	if v := q.Get("expire_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "upload", "expire_days must be an integer", nil))
			return
		}
		req.ExpireDays = days
	}
	if v := q.Get("voice"); v != "" {
		voice, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "upload", "voice must be a boolean", nil))
			return
		}
		req.Voice = voice
	}
	if v := q.Get("project_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "upload", "project_id must be an integer", nil))
			return
		}
		req.ProjectID = &id
	}

	record, err := s.share.Upload(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, uploadAudioResponse{
		ShortURL:   record.ShortID,
		FileName:   record.FileName,
		AudioType:  record.AudioType,
		ExpireTime: record.ExpireTime,
	})
}

func (s *Server) handleUploadProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Share.MaxProjectBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	project, err := s.share.UploadProject(r.Context(), share.ProjectRequest{
		Payload:  payload,
		FileName: r.URL.Query().Get("file_name"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, uploadProjectResponse{ProjectID: project.ProjectID})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	view, err := s.share.Lookup(r.Context(), chi.URLParam(r, "short_url"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, view)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	url, err := s.share.DownloadURL(r.Context(), chi.URLParam(r, "short_url"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]string{"download_url": url})
}

func (s *Server) handleProjectURL(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "project_id"), 10, 64)
	if err != nil {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "project url", "project_id must be an integer", nil))
		return
	}
	url, err := s.share.ProjectURL(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]string{"project_url": url})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, envelope{
			Code: http.StatusServiceUnavailable,
			Msg:  "store unreachable",
		})
		return
	}
	s.writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, envelope{Code: status, Msg: "ok", Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := envelope{Code: status, Msg: err.Error()}

	var conflict *share.ConflictError
	if errors.As(err, &conflict) {
		if conflict.Audio != nil {
			resp.Data = map[string]string{"short_url": conflict.Audio.ShortID}
		} else if conflict.Project != nil {
			resp.Data = map[string]int64{"project_id": conflict.Project.ProjectID}
		}
	}
	if status >= http.StatusInternalServerError {
		logger := logging.WithContext(r.Context(), s.logger)
		logger.Error("request failed", logging.Error(err))
		resp.Msg = "internal error"
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response", logging.Error(err))
	}
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	var tooLarge *share.TooLargeError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch {
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrExpired):
		return http.StatusGone
	case errors.Is(err, services.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
