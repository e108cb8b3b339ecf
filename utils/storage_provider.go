package utils

import (
	"os"
	"strings"
)

const (
	StorageProviderGCS    = "gcs"
	StorageProviderInline = "inline"
)

// GetStorageProvider picks where uploaded logos go. Without an explicit
// STORAGE_PROVIDER it falls back to inline data URIs unless a GCS bucket is set.
func GetStorageProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider != "" {
		return provider
	}
	if strings.TrimSpace(os.Getenv("GCS_BUCKET")) != "" {
		return StorageProviderGCS
	}
	return StorageProviderInline
}
