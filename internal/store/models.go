package store

import "time"

// SharedAudio represents one publicly retrievable audio item.
//
// Fingerprint and ShortID carry UNIQUE indexes; both invariants are enforced
// by the database, not by callers. Counters only ever grow and are mutated
// through the atomic increment methods on Store.
type SharedAudio struct {
	ID            int64
	UploadTime    time.Time
	UploadIP      uint32
	FileName      string
	Fingerprint   string
	AudioType     string
	SampleRate    int
	ProjectID     *int64
	ShortID       string
	ExpireTime    time.Time
	VisitCount    int64
	DownloadCount int64
}

// Project represents an uploaded synthesis-project artifact. Records are
// immutable after creation.
type Project struct {
	ProjectID   int64
	Fingerprint string
	FileSuffix  string
	UploadTime  time.Time
}

// BlobKey returns the blob store key of the project payload.
func (p *Project) BlobKey() string {
	return projectBlobKey(p.ProjectID, p.FileSuffix)
}

// RawBlobKey returns the blob store key of the retained raw/normalized artifact.
func (a *SharedAudio) RawBlobKey() string {
	return a.Fingerprint + "." + a.AudioType
}

// StreamBlobKey returns the blob store key of the opus streaming derivative.
func (a *SharedAudio) StreamBlobKey() string {
	return a.Fingerprint + ".opus"
}
