package messaging

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/user"
)

var (
	ErrMessageNotFound      = errors.New("message not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

type (
	Repository interface {
		CreateMessage(m Message) (Message, error)
		// QueryInbox returns messages received by userID, newest first.
		QueryInbox(userID string, filter MessageFilter) ([]Message, error)
		// QuerySent returns messages sent by userID, newest first.
		QuerySent(userID string) ([]Message, error)
		GetMessageByID(id string) (Message, error)
		UpdateMessage(m Message) (Message, error)
		CountUnread(userID string) (int, error)

		CreateConversation(c Conversation) (Conversation, error)
		QueryConversations(userID string) ([]Conversation, error)
		GetConversationByID(id string) (Conversation, error)
		TouchConversation(id string, at time.Time) error
		CreateGroupMessage(gm GroupMessage) (GroupMessage, error)
		QueryGroupMessages(conversationID string) ([]GroupMessage, error)

		CreateAttachment(att Attachment) (Attachment, error)
		QueryMessageAttachments(messageID string) ([]Attachment, error)

		CreateNotification(n Notification) (Notification, error)
		QueryNotifications(userID string, unreadOnly bool) ([]Notification, error)
		GetNotificationByID(id string) (Notification, error)
		UpdateNotification(n Notification) (Notification, error)
	}

	// UserDirectory resolves display names for notification texts.
	UserDirectory interface {
		GetUserByID(id string) (user.User, error)
	}

	Service interface {
		Send(actor user.User, nm NewMessage) (Message, error)
		Inbox(actor user.User, filter MessageFilter) ([]Message, error)
		Sent(actor user.User) ([]Message, error)
		Get(actor user.User, id string) (Message, error)
		// MarkRead flips the read flag and stamps read_at; only the receiver
		// may mark a message read.
		MarkRead(actor user.User, id string) (Message, error)
		UnreadCount(actor user.User) (int, error)
		AddAttachment(actor user.User, messageID string, na NewAttachment) (Attachment, error)
		Attachments(actor user.User, messageID string) ([]Attachment, error)

		StartConversation(actor user.User, nc NewConversation) (Conversation, error)
		Conversations(actor user.User) ([]Conversation, error)
		SendGroupMessage(actor user.User, conversationID string, ng NewGroupMessage) (GroupMessage, error)
		GroupMessages(actor user.User, conversationID string) ([]GroupMessage, error)

		Notifications(actor user.User, unreadOnly bool) ([]Notification, error)
		MarkNotificationRead(actor user.User, id string) (Notification, error)
	}

	service struct {
		repo  Repository
		users UserDirectory
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, users UserDirectory) Service {
	return &service{repo: repo, users: users}
}

func (svc *service) Send(actor user.User, nm NewMessage) (Message, error) {
	if nm.ReceiverID == actor.ID {
		return Message{}, core.NewValidationError(
			errors.New("you cannot message yourself"),
			core.FieldError{Field: "receiver_id", Error: "you cannot message yourself"},
		)
	}
	if _, err := svc.users.GetUserByID(nm.ReceiverID); err != nil {
		return Message{}, err
	}

	m, err := svc.repo.CreateMessage(Message{
		SenderID:   actor.ID,
		ReceiverID: nm.ReceiverID,
		Subject:    nm.Subject,
		Content:    nm.Content,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return Message{}, err
	}

	_, err = svc.repo.CreateNotification(Notification{
		UserID:    m.ReceiverID,
		Type:      NotifMessage,
		MessageID: m.ID,
		Text:      fmt.Sprintf("New message from %s %s", actor.FirstName, actor.LastName),
		CreatedAt: m.SentAt,
	})
	if err != nil {
		return Message{}, errors.Wrap(err, "creating notification")
	}
	return m, nil
}

func (svc *service) Inbox(actor user.User, filter MessageFilter) ([]Message, error) {
	return svc.repo.QueryInbox(actor.ID, filter)
}

func (svc *service) Sent(actor user.User) ([]Message, error) {
	return svc.repo.QuerySent(actor.ID)
}

func (svc *service) Get(actor user.User, id string) (Message, error) {
	m, err := svc.repo.GetMessageByID(id)
	if err != nil {
		return Message{}, err
	}
	if !m.Involves(actor.ID) && !actor.IsAdmin() {
		return Message{}, core.NewPermissionDeniedError("you don't have permission to view this message")
	}
	return m, nil
}

func (svc *service) MarkRead(actor user.User, id string) (Message, error) {
	m, err := svc.repo.GetMessageByID(id)
	if err != nil {
		return Message{}, err
	}
	if m.ReceiverID != actor.ID {
		return Message{}, core.NewPermissionDeniedError("only the receiver can mark a message as read")
	}
	if m.IsRead {
		return m, nil
	}
	now := time.Now().UTC()
	m.IsRead = true
	m.ReadAt = &now
	return svc.repo.UpdateMessage(m)
}

func (svc *service) UnreadCount(actor user.User) (int, error) {
	return svc.repo.CountUnread(actor.ID)
}

func (svc *service) AddAttachment(actor user.User, messageID string, na NewAttachment) (Attachment, error) {
	m, err := svc.repo.GetMessageByID(messageID)
	if err != nil {
		return Attachment{}, err
	}
	if m.SenderID != actor.ID {
		return Attachment{}, core.NewPermissionDeniedError("you can only attach files to your own messages")
	}
	return svc.repo.CreateAttachment(Attachment{
		MessageID:  messageID,
		File:       na.File,
		Filename:   na.Filename,
		FileType:   na.FileType,
		Size:       na.Size,
		UploadedAt: time.Now().UTC(),
	})
}

func (svc *service) Attachments(actor user.User, messageID string) ([]Attachment, error) {
	m, err := svc.repo.GetMessageByID(messageID)
	if err != nil {
		return nil, err
	}
	if !m.Involves(actor.ID) && !actor.IsAdmin() {
		return nil, core.NewPermissionDeniedError("you don't have permission to view this message")
	}
	return svc.repo.QueryMessageAttachments(messageID)
}

func (svc *service) StartConversation(actor user.User, nc NewConversation) (Conversation, error) {
	participants := nc.ParticipantIDs
	var hasActor bool
	for _, id := range participants {
		if id == actor.ID {
			hasActor = true
			continue
		}
		if _, err := svc.users.GetUserByID(id); err != nil {
			return Conversation{}, err
		}
	}
	if !hasActor {
		participants = append(participants, actor.ID)
	}

	now := time.Now().UTC()
	return svc.repo.CreateConversation(Conversation{
		Title:          nc.Title,
		ParticipantIDs: participants,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (svc *service) Conversations(actor user.User) ([]Conversation, error) {
	return svc.repo.QueryConversations(actor.ID)
}

func (svc *service) conversationFor(actor user.User, id string) (Conversation, error) {
	c, err := svc.repo.GetConversationByID(id)
	if err != nil {
		return Conversation{}, err
	}
	if !c.HasParticipant(actor.ID) && !actor.IsAdmin() {
		return Conversation{}, core.NewPermissionDeniedError("you are not a participant in this conversation")
	}
	return c, nil
}

func (svc *service) SendGroupMessage(actor user.User, conversationID string, ng NewGroupMessage) (GroupMessage, error) {
	c, err := svc.conversationFor(actor, conversationID)
	if err != nil {
		return GroupMessage{}, err
	}

	now := time.Now().UTC()
	gm, err := svc.repo.CreateGroupMessage(GroupMessage{
		ConversationID: c.ID,
		SenderID:       actor.ID,
		Content:        ng.Content,
		SentAt:         now,
	})
	if err != nil {
		return GroupMessage{}, err
	}
	if err = svc.repo.TouchConversation(c.ID, now); err != nil {
		return GroupMessage{}, errors.Wrap(err, "touching conversation")
	}

	for _, id := range c.ParticipantIDs {
		if id == actor.ID {
			continue
		}
		_, err = svc.repo.CreateNotification(Notification{
			UserID:         id,
			Type:           NotifGroupMessage,
			GroupMessageID: gm.ID,
			Text:           fmt.Sprintf("New message from %s %s in %s", actor.FirstName, actor.LastName, c.Title),
			CreatedAt:      now,
		})
		if err != nil {
			return GroupMessage{}, errors.Wrap(err, "creating notification")
		}
	}
	return gm, nil
}

func (svc *service) GroupMessages(actor user.User, conversationID string) ([]GroupMessage, error) {
	if _, err := svc.conversationFor(actor, conversationID); err != nil {
		return nil, err
	}
	return svc.repo.QueryGroupMessages(conversationID)
}

func (svc *service) Notifications(actor user.User, unreadOnly bool) ([]Notification, error) {
	return svc.repo.QueryNotifications(actor.ID, unreadOnly)
}

func (svc *service) MarkNotificationRead(actor user.User, id string) (Notification, error) {
	n, err := svc.repo.GetNotificationByID(id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != actor.ID {
		return Notification{}, core.NewPermissionDeniedError("you can only update your own notifications")
	}
	if n.IsRead {
		return n, nil
	}
	n.IsRead = true
	return svc.repo.UpdateNotification(n)
}
