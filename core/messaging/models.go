package messaging

import "time"

// Notification types.
const (
	NotifMessage      = "message"
	NotifGroupMessage = "group_message"
	NotifMention      = "mention"
)

type Message struct {
	ID         string     `db:"id" json:"id"`
	SenderID   string     `db:"sender_id" json:"sender_id"`
	ReceiverID string     `db:"receiver_id" json:"receiver_id"`
	Subject    string     `db:"subject" json:"subject,omitempty"`
	Content    string     `db:"content" json:"content"`
	IsRead     bool       `db:"is_read" json:"is_read"`
	SentAt     time.Time  `db:"sent_at" json:"sent_at"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
}

// Involves reports whether userID is the sender or the receiver.
func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

type Conversation struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title,omitempty"`
	ParticipantIDs []string  `db:"-" json:"participants"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (c Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type GroupMessage struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	Content        string    `db:"content" json:"content"`
	SentAt         time.Time `db:"sent_at" json:"sent_at"`
}

// Attachment records metadata only; exactly one of MessageID or
// GroupMessageID is set.
type Attachment struct {
	ID             string    `db:"id" json:"id"`
	MessageID      string    `db:"message_id" json:"message_id,omitempty"`
	GroupMessageID string    `db:"group_message_id" json:"group_message_id,omitempty"`
	File           string    `db:"file" json:"file"`
	Filename       string    `db:"filename" json:"filename"`
	FileType       string    `db:"file_type" json:"file_type"`
	Size           int64     `db:"size" json:"size"`
	UploadedAt     time.Time `db:"uploaded_at" json:"uploaded_at"`
}

type Notification struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Type           string    `db:"notification_type" json:"notification_type"`
	MessageID      string    `db:"message_id" json:"message_id,omitempty"`
	GroupMessageID string    `db:"group_message_id" json:"group_message_id,omitempty"`
	Text           string    `db:"text" json:"text"`
	IsRead         bool      `db:"is_read" json:"is_read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type MessageFilter struct {
	// WithUserID narrows to the exchange between the actor and one peer.
	WithUserID string `json:"with" query:"with"`
	Unread     *bool  `json:"unread" query:"unread"`
}
