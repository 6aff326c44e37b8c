package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// DocumentBucket is the default storage bucket for uploads
const DocumentBucket = "document-uploads"

// Document is a row of documents describing a stored file
type Document struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Category    string    `json:"category" db:"category"`
	FileType    string    `json:"file_type" db:"file_type"`
	FilePath    string    `json:"file_path" db:"file_path"`
	FileSize    int64     `json:"file_size" db:"file_size"`
	UploadedBy  *string   `json:"uploaded_by,omitempty" db:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks required document fields
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return core.NewMissingFieldError("name")
	}
	if strings.TrimSpace(d.Category) == "" {
		return core.NewMissingFieldError("category")
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFileName replaces every character outside [a-zA-Z0-9._-] with '_'
func SanitizeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}

// DocumentObjectKey builds the storage key <unix millis>_<sanitized name>
func DocumentObjectKey(now time.Time, fileName string) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + SanitizeFileName(fileName)
}
