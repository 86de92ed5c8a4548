package genericmail

import (
	"mime"
	"os"
	"path/filepath"
)

var _ AttachmentSource = FileSource{}

// FileSource loads attachments from the local filesystem. The content
// type is guessed from the file extension.
type FileSource struct{}

func (FileSource) Load(path string) (Attachment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return Attachment{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Content:     content,
	}, nil
}
