package sqlxrepos

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/esakris/techiekraft/core/messaging"
)

type messageAttachmentRow struct {
	ID             string      `db:"id"`
	MessageID      null.String `db:"message_id"`
	GroupMessageID null.String `db:"group_message_id"`
	File           string      `db:"file"`
	Filename       string      `db:"filename"`
	FileType       string      `db:"file_type"`
	Size           int64       `db:"size"`
	UploadedAt     time.Time   `db:"uploaded_at"`
}

func rowFromAttachment(att messaging.Attachment) messageAttachmentRow {
	return messageAttachmentRow{
		ID:             att.ID,
		MessageID:      null.NewString(att.MessageID, att.MessageID != ""),
		GroupMessageID: null.NewString(att.GroupMessageID, att.GroupMessageID != ""),
		File:           att.File,
		Filename:       att.Filename,
		FileType:       att.FileType,
		Size:           att.Size,
		UploadedAt:     att.UploadedAt,
	}
}

func (row messageAttachmentRow) toAttachment() messaging.Attachment {
	return messaging.Attachment{
		ID:             row.ID,
		MessageID:      row.MessageID.String,
		GroupMessageID: row.GroupMessageID.String,
		File:           row.File,
		Filename:       row.Filename,
		FileType:       row.FileType,
		Size:           row.Size,
		UploadedAt:     row.UploadedAt,
	}
}

type notificationRow struct {
	ID             string      `db:"id"`
	UserID         string      `db:"user_id"`
	Type           string      `db:"notification_type"`
	MessageID      null.String `db:"message_id"`
	GroupMessageID null.String `db:"group_message_id"`
	Text           string      `db:"text"`
	IsRead         bool        `db:"is_read"`
	CreatedAt      time.Time   `db:"created_at"`
}

func rowFromNotification(n messaging.Notification) notificationRow {
	return notificationRow{
		ID:             n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		MessageID:      null.NewString(n.MessageID, n.MessageID != ""),
		GroupMessageID: null.NewString(n.GroupMessageID, n.GroupMessageID != ""),
		Text:           n.Text,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
	}
}

func (row notificationRow) toNotification() messaging.Notification {
	return messaging.Notification{
		ID:             row.ID,
		UserID:         row.UserID,
		Type:           row.Type,
		MessageID:      row.MessageID.String,
		GroupMessageID: row.GroupMessageID.String,
		Text:           row.Text,
		IsRead:         row.IsRead,
		CreatedAt:      row.CreatedAt,
	}
}

type messagingRepository struct {
	db *sqlx.DB
}

var _ messaging.Repository = (*messagingRepository)(nil) // interface compliance check

func NewMessagingRepository(db *sqlx.DB) *messagingRepository {
	return &messagingRepository{db: db}
}

// direct messages

func (repo messagingRepository) CreateMessage(m messaging.Message) (messaging.Message, error) {
	m.ID = uuid.New().String()
	q := `INSERT INTO message (id, sender_id, receiver_id, subject, content, is_read, sent_at, read_at)
VALUES (:id, :sender_id, :receiver_id, :subject, :content, :is_read, :sent_at, :read_at)`
	if _, err := repo.db.NamedExec(q, m); err != nil {
		return messaging.Message{}, errors.Wrap(err, "inserting message")
	}
	return m, nil
}

func (repo messagingRepository) QueryInbox(userID string, filter messaging.MessageFilter) ([]messaging.Message, error) {
	q := `SELECT * FROM message WHERE receiver_id = $1`
	args := []interface{}{userID}
	if filter.WithUserID != "" {
		args = append(args, filter.WithUserID)
		q += " AND sender_id = $2"
	}
	if filter.Unread != nil {
		if *filter.Unread {
			q += " AND NOT is_read"
		} else {
			q += " AND is_read"
		}
	}
	q += " ORDER BY sent_at DESC"

	msgs := make([]messaging.Message, 0)
	if err := repo.db.Select(&msgs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying inbox")
	}
	return msgs, nil
}

func (repo messagingRepository) QuerySent(userID string) ([]messaging.Message, error) {
	msgs := make([]messaging.Message, 0)
	q := `SELECT * FROM message WHERE sender_id = $1 ORDER BY sent_at DESC`
	if err := repo.db.Select(&msgs, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying sent messages")
	}
	return msgs, nil
}

func (repo messagingRepository) GetMessageByID(id string) (messaging.Message, error) {
	var m messaging.Message
	if err := repo.db.Get(&m, `SELECT * FROM message WHERE id = $1`, id); err != nil {
		return messaging.Message{}, trapNoRowsErr(err, messaging.ErrMessageNotFound, "getting message")
	}
	return m, nil
}

func (repo messagingRepository) UpdateMessage(m messaging.Message) (messaging.Message, error) {
	q := `UPDATE message SET is_read = :is_read, read_at = :read_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, m); err != nil {
		return messaging.Message{}, errors.Wrap(err, "updating message")
	}
	return m, nil
}

func (repo messagingRepository) CountUnread(userID string) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM message WHERE receiver_id = $1 AND NOT is_read`
	if err := repo.db.Get(&count, q, userID); err != nil {
		return 0, errors.Wrap(err, "counting unread messages")
	}
	return count, nil
}

// conversations

func (repo messagingRepository) CreateConversation(c messaging.Conversation) (messaging.Conversation, error) {
	c.ID = uuid.New().String()
	tx, err := repo.db.Beginx()
	if err != nil {
		return messaging.Conversation{}, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	q := `INSERT INTO conversation (id, title, created_at, updated_at)
VALUES (:id, :title, :created_at, :updated_at)`
	if _, err = tx.NamedExec(q, c); err != nil {
		return messaging.Conversation{}, errors.Wrap(err, "inserting conversation")
	}
	for _, userID := range c.ParticipantIDs {
		q = `INSERT INTO conversation_participant (conversation_id, user_id) VALUES ($1, $2)`
		if _, err = tx.Exec(q, c.ID, userID); err != nil {
			return messaging.Conversation{}, errors.Wrap(err, "inserting conversation participant")
		}
	}
	if err = tx.Commit(); err != nil {
		return messaging.Conversation{}, errors.Wrap(err, "committing transaction")
	}
	return c, nil
}

func (repo messagingRepository) QueryConversations(userID string) ([]messaging.Conversation, error) {
	convs := make([]messaging.Conversation, 0)
	q := `SELECT c.* FROM conversation c
JOIN conversation_participant cp ON cp.conversation_id = c.id
WHERE cp.user_id = $1 ORDER BY c.updated_at DESC`
	if err := repo.db.Select(&convs, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying conversations")
	}
	for i := range convs {
		participants, err := repo.participants(convs[i].ID)
		if err != nil {
			return nil, err
		}
		convs[i].ParticipantIDs = participants
	}
	return convs, nil
}

func (repo messagingRepository) GetConversationByID(id string) (messaging.Conversation, error) {
	var c messaging.Conversation
	if err := repo.db.Get(&c, `SELECT * FROM conversation WHERE id = $1`, id); err != nil {
		return messaging.Conversation{}, trapNoRowsErr(err, messaging.ErrConversationNotFound, "getting conversation")
	}
	participants, err := repo.participants(id)
	if err != nil {
		return messaging.Conversation{}, err
	}
	c.ParticipantIDs = participants
	return c, nil
}

func (repo messagingRepository) participants(conversationID string) ([]string, error) {
	var ids pq.StringArray
	q := `SELECT ARRAY_AGG(user_id) FROM conversation_participant WHERE conversation_id = $1`
	if err := repo.db.Get(&ids, q, conversationID); err != nil {
		return nil, errors.Wrap(err, "querying conversation participants")
	}
	return ids, nil
}

func (repo messagingRepository) TouchConversation(id string, at time.Time) error {
	if _, err := repo.db.Exec(`UPDATE conversation SET updated_at = $2 WHERE id = $1`, id, at); err != nil {
		return errors.Wrap(err, "touching conversation")
	}
	return nil
}

func (repo messagingRepository) CreateGroupMessage(gm messaging.GroupMessage) (messaging.GroupMessage, error) {
	gm.ID = uuid.New().String()
	q := `INSERT INTO group_message (id, conversation_id, sender_id, content, sent_at)
VALUES (:id, :conversation_id, :sender_id, :content, :sent_at)`
	if _, err := repo.db.NamedExec(q, gm); err != nil {
		return messaging.GroupMessage{}, errors.Wrap(err, "inserting group message")
	}
	return gm, nil
}

func (repo messagingRepository) QueryGroupMessages(conversationID string) ([]messaging.GroupMessage, error) {
	msgs := make([]messaging.GroupMessage, 0)
	q := `SELECT * FROM group_message WHERE conversation_id = $1 ORDER BY sent_at`
	if err := repo.db.Select(&msgs, q, conversationID); err != nil {
		return nil, errors.Wrap(err, "querying group messages")
	}
	return msgs, nil
}

// attachments

func (repo messagingRepository) CreateAttachment(att messaging.Attachment) (messaging.Attachment, error) {
	att.ID = uuid.New().String()
	row := rowFromAttachment(att)
	q := `INSERT INTO message_attachment (id, message_id, group_message_id, file, filename, file_type, size, uploaded_at)
VALUES (:id, :message_id, :group_message_id, :file, :filename, :file_type, :size, :uploaded_at)`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return messaging.Attachment{}, errors.Wrap(err, "inserting message attachment")
	}
	return row.toAttachment(), nil
}

func (repo messagingRepository) QueryMessageAttachments(messageID string) ([]messaging.Attachment, error) {
	var rows []messageAttachmentRow
	q := `SELECT * FROM message_attachment WHERE message_id = $1 ORDER BY uploaded_at`
	if err := repo.db.Select(&rows, q, messageID); err != nil {
		return nil, errors.Wrap(err, "querying message attachments")
	}
	atts := make([]messaging.Attachment, 0, len(rows))
	for _, row := range rows {
		atts = append(atts, row.toAttachment())
	}
	return atts, nil
}

// notifications

func (repo messagingRepository) CreateNotification(n messaging.Notification) (messaging.Notification, error) {
	n.ID = uuid.New().String()
	row := rowFromNotification(n)
	q := `INSERT INTO notification (id, user_id, notification_type, message_id, group_message_id, text, is_read, created_at)
VALUES (:id, :user_id, :notification_type, :message_id, :group_message_id, :text, :is_read, :created_at)`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return messaging.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return row.toNotification(), nil
}

func (repo messagingRepository) QueryNotifications(userID string, unreadOnly bool) ([]messaging.Notification, error) {
	q := `SELECT * FROM notification WHERE user_id = $1`
	if unreadOnly {
		q += " AND NOT is_read"
	}
	q += " ORDER BY created_at DESC"

	var rows []notificationRow
	if err := repo.db.Select(&rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]messaging.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.toNotification())
	}
	return notifs, nil
}

func (repo messagingRepository) GetNotificationByID(id string) (messaging.Notification, error) {
	var row notificationRow
	if err := repo.db.Get(&row, `SELECT * FROM notification WHERE id = $1`, id); err != nil {
		return messaging.Notification{}, trapNoRowsErr(err, messaging.ErrNotificationNotFound, "getting notification")
	}
	return row.toNotification(), nil
}

func (repo messagingRepository) UpdateNotification(n messaging.Notification) (messaging.Notification, error) {
	row := rowFromNotification(n)
	q := `UPDATE notification SET is_read = :is_read WHERE id = :id`
	if _, err := repo.db.NamedExec(q, row); err != nil {
		return messaging.Notification{}, errors.Wrap(err, "updating notification")
	}
	return row.toNotification(), nil
}
