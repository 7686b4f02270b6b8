package templates

import (
	"fmt"

	"github.com/JonMunkholm/PoleMap/internal/core"
)

// UploadPageParams configures the upload page.
type UploadPageParams struct {
	Alert       *core.UserMessage
	AlertLevel  string
	MaxFileSize int64
}

func fileSizeNote(maxBytes int64) string {
	return fmt.Sprintf("Files up to %d MB.", maxBytes/(1024*1024))
}
