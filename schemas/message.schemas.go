package schemas

// Attachment kinds stored on a message
const (
	AttachmentImage = "image"
	AttachmentVideo = "video"
	AttachmentFile  = "file"
)

// MessageSchema struct
type MessageSchema struct {
	MessageID      string `validate:"required"`
	ChatID         string `validate:"required"`
	SenderID       string `validate:"required"`
	ReceiverID     string `validate:"required"`
	Body           string
	AttachmentURL  string
	AttachmentType string `validate:"omitempty,oneof=image video file"`
	Created        int64  `validate:"required"`
}

// MessageFromRow maps and validates a messages row at the store boundary
func MessageFromRow(row map[string]interface{}) (MessageSchema, error) {
	message := MessageSchema{
		MessageID:      RowString(row, "message_id"),
		ChatID:         RowString(row, "chat_id"),
		SenderID:       RowString(row, "sender_id"),
		ReceiverID:     RowString(row, "receiver_id"),
		Body:           RowString(row, "body"),
		AttachmentURL:  RowString(row, "attachment_url"),
		AttachmentType: RowString(row, "attachment_type"),
		Created:        RowMilli(row, "created"),
	}
	if err := validate.Struct(message); err != nil {
		return MessageSchema{}, err
	}
	return message, nil
}

// Row converts the message back into its store row
func (m MessageSchema) Row() map[string]interface{} {
	return map[string]interface{}{
		"message_id":      m.MessageID,
		"chat_id":         m.ChatID,
		"sender_id":       m.SenderID,
		"receiver_id":     m.ReceiverID,
		"body":            m.Body,
		"attachment_url":  m.AttachmentURL,
		"attachment_type": m.AttachmentType,
		"created":         m.Created,
	}
}
