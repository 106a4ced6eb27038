package models

import "time"

// PublicAsset is an uploaded image available to every player as a custom
// character. URL is filled in from the storage key when the asset is served.
type PublicAsset struct {
	ID           int       `json:"id"`
	StorageKey   string    `json:"storage_key"`
	UploaderName string    `json:"uploader_name"`
	URL          string    `json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
