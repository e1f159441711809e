package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"audioshare/internal/store"
	"audioshare/internal/testsupport"
)

func sampleAudio(fingerprint, shortID string) *store.SharedAudio {
	return &store.SharedAudio{
		UploadTime:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		UploadIP:    2130706433,
		FileName:    "20260314092653_take1.mp3",
		Fingerprint: fingerprint,
		AudioType:   "mp3",
		SampleRate:  44100,
		ShortID:     shortID,
		ExpireTime:  time.Date(2026, 3, 17, 9, 26, 53, 0, time.UTC),
	}
}

func TestInsertAudioRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	inserted, err := s.InsertAudio(ctx, sampleAudio("fp-round", "aB3xY9"))
	if err != nil {
		t.Fatalf("InsertAudio: %v", err)
	}
	if inserted.ID == 0 {
		t.Fatal("expected assigned row id")
	}

	byFP, err := s.AudioByFingerprint(ctx, "fp-round")
	if err != nil {
		t.Fatalf("AudioByFingerprint: %v", err)
	}
	if byFP == nil || byFP.ID != inserted.ID {
		t.Fatalf("fingerprint lookup mismatch: %+v", byFP)
	}
	if byFP.UploadIP != 2130706433 {
		t.Fatalf("upload ip mismatch: %d", byFP.UploadIP)
	}
	if !byFP.UploadTime.Equal(inserted.UploadTime) {
		t.Fatalf("upload time mismatch: %v vs %v", byFP.UploadTime, inserted.UploadTime)
	}

	byShort, err := s.AudioByShortID(ctx, "aB3xY9")
	if err != nil {
		t.Fatalf("AudioByShortID: %v", err)
	}
	if byShort == nil || byShort.ID != inserted.ID {
		t.Fatalf("short id lookup mismatch: %+v", byShort)
	}
}

func TestAudioLookupsReturnNilWhenMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if audio, err := s.AudioByFingerprint(ctx, "nope"); err != nil || audio != nil {
		t.Fatalf("expected nil, nil for unknown fingerprint, got %+v, %v", audio, err)
	}
	if audio, err := s.AudioByShortID(ctx, "nope"); err != nil || audio != nil {
		t.Fatalf("expected nil, nil for unknown short id, got %+v, %v", audio, err)
	}
	exists, err := s.ShortIDExists(ctx, "nope")
	if err != nil {
		t.Fatalf("ShortIDExists: %v", err)
	}
	if exists {
		t.Fatal("unexpected short id hit")
	}
}

func TestInsertAudioDuplicateFingerprint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := s.InsertAudio(ctx, sampleAudio("fp-dup", "first1")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := s.InsertAudio(ctx, sampleAudio("fp-dup", "second"))
	if !errors.Is(err, store.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	var dup *store.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Field != "shared_audio.file_md5" {
		t.Fatalf("expected file_md5 violation, got %v", err)
	}
}

func TestInsertAudioDuplicateShortID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := s.InsertAudio(ctx, sampleAudio("fp-one", "clash1")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := s.InsertAudio(ctx, sampleAudio("fp-two", "clash1"))
	var dup *store.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Field != "shared_audio.short_url" {
		t.Fatalf("expected short_url violation, got %v", err)
	}
}

func TestCountersIncrementAtomically(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	inserted, err := s.InsertAudio(ctx, sampleAudio("fp-count", "count1"))
	if err != nil {
		t.Fatalf("InsertAudio: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.IncrementVisit(ctx, inserted.ID); err != nil {
				errs[i] = err
				return
			}
			errs[i] = s.IncrementDownload(ctx, inserted.ID)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("increment failed: %v", err)
		}
	}

	audio, err := s.AudioByID(ctx, inserted.ID)
	if err != nil {
		t.Fatalf("AudioByID: %v", err)
	}
	if audio.VisitCount != workers || audio.DownloadCount != workers {
		t.Fatalf("expected %d/%d counters, got %d/%d", workers, workers, audio.VisitCount, audio.DownloadCount)
	}
}

func TestConcurrentWritersAcrossConnections(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Each goroutine gets its own pooled connection, so writes only succeed
	// when the busy timeout applies to all of them.
	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			audio := sampleAudio(
				fmt.Sprintf("fp-writer-%d", i),
				fmt.Sprintf("writ%02d", i),
			)
			_, errs[i] = s.InsertAudio(ctx, audio)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d: %v", i, err)
		}
	}

	items, err := s.RecentAudio(ctx, writers)
	if err != nil {
		t.Fatalf("RecentAudio: %v", err)
	}
	if len(items) != writers {
		t.Fatalf("expected %d records, got %d", writers, len(items))
	}
}

func TestIncrementUnknownRecordFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)

	if err := s.IncrementVisit(context.Background(), 404); err == nil {
		t.Fatal("expected error for missing record")
	}
}

func TestRecentAudioOrdersNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		audio := sampleAudio("fp-recent-"+string(rune('a'+i)), "recnt"+string(rune('a'+i)))
		audio.UploadTime = base.Add(time.Duration(i) * time.Minute)
		if _, err := s.InsertAudio(ctx, audio); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	items, err := s.RecentAudio(ctx, 2)
	if err != nil {
		t.Fatalf("RecentAudio: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if !items[0].UploadTime.After(items[1].UploadTime) {
		t.Fatalf("expected newest first, got %v then %v", items[0].UploadTime, items[1].UploadTime)
	}
}

func TestInsertProjectRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	maxID, err := s.MaxProjectID(ctx)
	if err != nil {
		t.Fatalf("MaxProjectID: %v", err)
	}
	if maxID != 0 {
		t.Fatalf("expected empty table, max id %d", maxID)
	}

	project := &store.Project{
		ProjectID:   1,
		Fingerprint: "fp-proj",
		FileSuffix:  ".zip",
		UploadTime:  time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	inserted, err := s.InsertProject(ctx, project)
	if err != nil {
		t.Fatalf("InsertProject: %v", err)
	}
	if inserted.BlobKey() != "1.zip" {
		t.Fatalf("unexpected blob key %q", inserted.BlobKey())
	}

	byFP, err := s.ProjectByFingerprint(ctx, "fp-proj")
	if err != nil {
		t.Fatalf("ProjectByFingerprint: %v", err)
	}
	if byFP == nil || byFP.ProjectID != 1 || byFP.FileSuffix != ".zip" {
		t.Fatalf("fingerprint lookup mismatch: %+v", byFP)
	}

	maxID, err = s.MaxProjectID(ctx)
	if err != nil {
		t.Fatalf("MaxProjectID: %v", err)
	}
	if maxID != 1 {
		t.Fatalf("expected max id 1, got %d", maxID)
	}
}

func TestInsertProjectDuplicateID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := &store.Project{ProjectID: 7, Fingerprint: "fp-a", FileSuffix: ".als", UploadTime: time.Now().UTC()}
	if _, err := s.InsertProject(ctx, first); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	second := &store.Project{ProjectID: 7, Fingerprint: "fp-b", FileSuffix: ".als", UploadTime: time.Now().UTC()}
	_, err := s.InsertProject(ctx, second)
	if !errors.Is(err, store.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestInsertProjectDuplicateFingerprint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := &store.Project{ProjectID: 1, Fingerprint: "fp-same", FileSuffix: ".zip", UploadTime: time.Now().UTC()}
	if _, err := s.InsertProject(ctx, first); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	second := &store.Project{ProjectID: 2, Fingerprint: "fp-same", FileSuffix: ".zip", UploadTime: time.Now().UTC()}
	_, err := s.InsertProject(ctx, second)
	var dup *store.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Field != "projects.file_md5" {
		t.Fatalf("expected projects.file_md5 violation, got %v", err)
	}
}
