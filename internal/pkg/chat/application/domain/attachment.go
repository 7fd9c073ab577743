package chat

import (
	"fmt"
	"strings"
)

// MaxAttachmentSize is the largest file the placeholder accepts.
const MaxAttachmentSize = 10 * 1024 * 1024

// Attachment describes a file the user picked. Only metadata travels;
// no binary content is stored anywhere.
type Attachment struct {
	FileName  string      `json:"file_name"`
	SizeBytes int64       `json:"size_bytes"`
	Kind      MessageKind `json:"kind"`
}

func (a Attachment) Validate() error {
	if strings.TrimSpace(a.FileName) == "" || a.SizeBytes < 0 || !a.Kind.IsAttachment() {
		return ErrInvalidAttachment
	}
	if a.SizeBytes > MaxAttachmentSize {
		return ErrAttachmentTooBig
	}
	return nil
}

// Describe renders the text message that stands in for the file, e.g.
// "📎 🖼️ beach.png (1.50 MB)".
func (a Attachment) Describe() string {
	mb := float64(a.SizeBytes) / 1024 / 1024
	return fmt.Sprintf("📎 %s %s (%.2f MB)", attachmentIcon(a.Kind), strings.TrimSpace(a.FileName), mb)
}

func attachmentIcon(k MessageKind) string {
	switch k {
	case MessageKindImage:
		return "🖼️"
	case MessageKindVideo:
		return "🎥"
	case MessageKindAudio:
		return "🎵"
	default:
		return "📄"
	}
}
