package chat

import "errors"

var (
	ErrInvalidConversation = errors.New("chat: conversation and sender are required")
	ErrNotParticipant      = errors.New("chat: user is not a participant in the conversation")
	ErrEmptyMessage        = errors.New("chat: message body is empty")
	ErrMessageTooLong      = errors.New("chat: message body is too long")
	ErrInvalidKind         = errors.New("chat: unknown conversation kind")
	ErrInvalidName         = errors.New("chat: conversation name is required")
	ErrNotFound            = errors.New("chat: conversation not found")
	ErrUnknownUser         = errors.New("chat: unknown participant")
	ErrAttachmentTooBig    = errors.New("File size must be less than 10MB")
	ErrInvalidAttachment   = errors.New("chat: unsupported attachment")
)
