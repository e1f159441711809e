package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"audioshare/internal/api"
	"audioshare/internal/config"
	"audioshare/internal/logging"
	"audioshare/internal/share"
	"audioshare/internal/testsupport"
	"audioshare/internal/transcode"
)

type stubTranscoder struct {
	blobs *testsupport.MemoryBlob

	mu     sync.Mutex
	voices []bool
}

func (s *stubTranscoder) Run(ctx context.Context, payload []byte, fingerprint string, voice bool) (*transcode.Result, error) {
	s.mu.Lock()
	s.voices = append(s.voices, voice)
	s.mu.Unlock()
	result := &transcode.Result{
		AudioType:  "mp3",
		SampleRate: 44100,
		RawKey:     fingerprint + ".mp3",
		StreamKey:  fingerprint + ".opus",
	}
	if err := s.blobs.Put(ctx, result.RawKey, payload, "audio/mpeg"); err != nil {
		return nil, err
	}
	if err := s.blobs.Put(ctx, result.StreamKey, []byte("opus"), "audio/opus"); err != nil {
		return nil, err
	}
	return result, nil
}

type testEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*httptest.Server, *config.Config, *stubTranscoder) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	blobs := testsupport.NewMemoryBlob()
	trans := &stubTranscoder{blobs: blobs}
	svc := share.NewService(cfg, st, blobs, trans, logging.NewNop())
	srv := httptest.NewServer(api.NewServer(cfg, svc, st, logging.NewNop()).Router())
	t.Cleanup(srv.Close)
	return srv, cfg, trans
}

func (s *stubTranscoder) voiceCalls() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.voices...)
}

func doRequest(t *testing.T, method, url string, body []byte) (int, testEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env testEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, env
}

func TestUploadAndLookupFlow(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, env := doRequest(t, http.MethodPut, srv.URL+"/audio_share/audio?file_name=take.mp3", []byte("audio-bytes"))
	if status != http.StatusOK {
		t.Fatalf("upload status %d: %s", status, env.Msg)
	}
	var uploaded struct {
		ShortURL  string `json:"short_url"`
		AudioType string `json:"audio_type"`
	}
	if err := json.Unmarshal(env.Data, &uploaded); err != nil {
		t.Fatalf("decode upload data: %v", err)
	}
	if uploaded.ShortURL == "" || uploaded.AudioType != "mp3" {
		t.Fatalf("unexpected upload data: %+v", uploaded)
	}

	status, env = doRequest(t, http.MethodGet, srv.URL+"/audio_share/"+uploaded.ShortURL, nil)
	if status != http.StatusOK {
		t.Fatalf("lookup status %d: %s", status, env.Msg)
	}
	var view struct {
		VisitCount int64  `json:"visit_count"`
		PlayURL    string `json:"play_url"`
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode lookup data: %v", err)
	}
	if view.VisitCount != 1 || view.PlayURL == "" {
		t.Fatalf("unexpected lookup data: %+v", view)
	}

	status, env = doRequest(t, http.MethodGet, srv.URL+"/audio_share/download/"+uploaded.ShortURL, nil)
	if status != http.StatusOK {
		t.Fatalf("download status %d: %s", status, env.Msg)
	}
	var download struct {
		DownloadURL string `json:"download_url"`
	}
	if err := json.Unmarshal(env.Data, &download); err != nil {
		t.Fatalf("decode download data: %v", err)
	}
	if download.DownloadURL == "" {
		t.Fatal("expected a presigned download url")
	}
}

func TestUploadDuplicateReturnsConflict(t *testing.T) {
	srv, _, _ := newTestServer(t)
	payload := []byte("dup-bytes")

	status, env := doRequest(t, http.MethodPut, srv.URL+"/audio_share/audio?file_name=a.mp3", payload)
	if status != http.StatusOK {
		t.Fatalf("first upload status %d: %s", status, env.Msg)
	}
	var first struct {
		ShortURL string `json:"short_url"`
	}
	if err := json.Unmarshal(env.Data, &first); err != nil {
		t.Fatalf("decode first upload: %v", err)
	}

	status, env = doRequest(t, http.MethodPut, srv.URL+"/audio_share/audio?file_name=b.mp3", payload)
	if status != http.StatusConflict {
		t.Fatalf("duplicate upload status %d, want 409", status)
	}
	var dup struct {
		ShortURL string `json:"short_url"`
	}
	if err := json.Unmarshal(env.Data, &dup); err != nil {
		t.Fatalf("decode conflict data: %v", err)
	}
	if dup.ShortURL != first.ShortURL {
		t.Fatalf("conflict should point at the existing share, got %q want %q", dup.ShortURL, first.ShortURL)
	}
}

func TestUploadValidationFailures(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, _ := doRequest(t, http.MethodPut, srv.URL+"/audio_share/audio?file_name=x.mp3&expire_days=nope", []byte("p"))
	if status != http.StatusBadRequest {
		t.Fatalf("bad expire_days status %d, want 400", status)
	}
	status, _ = doRequest(t, http.MethodPut, srv.URL+"/audio_share/audio?file_name=x.mp3&expire_days=9", []byte("p"))
	if status != http.StatusBadRequest {
		t.Fatalf("out-of-range expire_days status %d, want 400", status)
	}
	status, _ = doRequest(t, http.MethodPut, srv.URL+"/audio_share/audio?file_name=x.mp3", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty payload status %d, want 400", status)
	}
}

func TestUploadOversizedPayload(t *testing.T) {
	srv, cfg, _ := newTestServer(t)
	cfg.Share.MaxAudioBytes = 8

	status, _ := doRequest(t, http.MethodPut, srv.URL+"/audio_share/audio?file_name=x.mp3", []byte("way too many bytes"))
	if status != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized payload status %d, want 413", status)
	}
}

func TestUploadVoiceProfileDefaultsOn(t *testing.T) {
	srv, _, trans := newTestServer(t)

	status, env := doRequest(t, http.MethodPut, srv.URL+"/audio_share/audio?file_name=a.mp3", []byte("take-a"))
	if status != http.StatusOK {
		t.Fatalf("upload status %d: %s", status, env.Msg)
	}
	status, env = doRequest(t, http.MethodPut, srv.URL+"/audio_share/audio?file_name=b.mp3&voice=false", []byte("take-b"))
	if status != http.StatusOK {
		t.Fatalf("upload status %d: %s", status, env.Msg)
	}

	voices := trans.voiceCalls()
	if len(voices) != 2 {
		t.Fatalf("expected 2 pipeline runs, got %d", len(voices))
	}
	if !voices[0] {
		t.Fatal("voice profile should default on when the parameter is absent")
	}
	if voices[1] {
		t.Fatal("voice=false must disable the voice profile")
	}
}

func TestLookupUnknownShortURL(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, _ := doRequest(t, http.MethodGet, srv.URL+"/audio_share/zzzzzz", nil)
	if status != http.StatusNotFound {
		t.Fatalf("unknown short url status %d, want 404", status)
	}
}

func TestProjectFlow(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, env := doRequest(t, http.MethodPut, srv.URL+"/audio_share/project?file_name=song.ustx", []byte("project-bytes"))
	if status != http.StatusOK {
		t.Fatalf("project upload status %d: %s", status, env.Msg)
	}
	var uploaded struct {
		ProjectID int64 `json:"project_id"`
	}
	if err := json.Unmarshal(env.Data, &uploaded); err != nil {
		t.Fatalf("decode project data: %v", err)
	}
	if uploaded.ProjectID != 1 {
		t.Fatalf("project id %d, want 1", uploaded.ProjectID)
	}

	status, env = doRequest(t, http.MethodGet, srv.URL+"/audio_share/project/1", nil)
	if status != http.StatusOK {
		t.Fatalf("project url status %d: %s", status, env.Msg)
	}
	var link struct {
		ProjectURL string `json:"project_url"`
	}
	if err := json.Unmarshal(env.Data, &link); err != nil {
		t.Fatalf("decode project url: %v", err)
	}
	if link.ProjectURL == "" {
		t.Fatal("expected a presigned project url")
	}
}

func TestProjectBadSuffix(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, _ := doRequest(t, http.MethodPut, srv.URL+"/audio_share/project?file_name=notes.txt", []byte("p"))
	if status != http.StatusUnsupportedMediaType {
		t.Fatalf("bad suffix status %d, want 415", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, env := doRequest(t, http.MethodGet, srv.URL+"/healthz", nil)
	if status != http.StatusOK {
		t.Fatalf("healthz status %d: %s", status, env.Msg)
	}
}
