package ziparchiver

import "time"

const (
	ManifestName    = "manifest.json"
	ManifestVersion = 1
)

// Manifest is the self-describing metadata entry embedded in every archive.
// It is written last, so a truncated archive is detectable by its absence.
type Manifest struct {
	Version        int            `json:"version"`
	Name           string         `json:"name"`
	AppVersion     string         `json:"app_version"`
	CreatedAt      time.Time      `json:"created_at"`
	IncludeLogs    bool           `json:"include_logs"`
	FileCount      int            `json:"file_count"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	Files          []ManifestFile `json:"files"`
}

type ManifestFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Hash uint64 `json:"hash,string"`
}
