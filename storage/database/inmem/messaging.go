package inmemdb

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/esakris/techiekraft/core/messaging"
)

type messagingRepository struct {
	db *messagingTable
}

var _ messaging.Repository = (*messagingRepository)(nil) // interface compliance check

func NewMessagingRepository(db *DB) *messagingRepository {
	return &messagingRepository{db: db.messaging}
}

// direct messages

func (repo *messagingRepository) CreateMessage(m messaging.Message) (messaging.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m.ID = uuid.New().String()
	repo.db.messages[m.ID] = &m
	return m, nil
}

func (repo *messagingRepository) QueryInbox(userID string, filter messaging.MessageFilter) ([]messaging.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := make([]messaging.Message, 0)
	for _, m := range repo.db.messages {
		if m.ReceiverID != userID {
			continue
		}
		if filter.WithUserID != "" && m.SenderID != filter.WithUserID {
			continue
		}
		if filter.Unread != nil && m.IsRead == *filter.Unread {
			continue
		}
		msgs = append(msgs, *m)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].SentAt.After(msgs[j].SentAt) })
	return msgs, nil
}

func (repo *messagingRepository) QuerySent(userID string) ([]messaging.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := make([]messaging.Message, 0)
	for _, m := range repo.db.messages {
		if m.SenderID == userID {
			msgs = append(msgs, *m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].SentAt.After(msgs[j].SentAt) })
	return msgs, nil
}

func (repo *messagingRepository) GetMessageByID(id string) (messaging.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.messages[id]; ok {
		return *m, nil
	}
	return messaging.Message{}, messaging.ErrMessageNotFound
}

func (repo *messagingRepository) UpdateMessage(m messaging.Message) (messaging.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.messages[m.ID]; !ok {
		return messaging.Message{}, messaging.ErrMessageNotFound
	}
	repo.db.messages[m.ID] = &m
	return m, nil
}

func (repo *messagingRepository) CountUnread(userID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, m := range repo.db.messages {
		if m.ReceiverID == userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

// conversations

func (repo *messagingRepository) CreateConversation(c messaging.Conversation) (messaging.Conversation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.New().String()
	repo.db.conversations[c.ID] = &c
	return c, nil
}

func (repo *messagingRepository) QueryConversations(userID string) ([]messaging.Conversation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	convs := make([]messaging.Conversation, 0)
	for _, c := range repo.db.conversations {
		if c.HasParticipant(userID) {
			convs = append(convs, *c)
		}
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].UpdatedAt.After(convs[j].UpdatedAt) })
	return convs, nil
}

func (repo *messagingRepository) GetConversationByID(id string) (messaging.Conversation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.conversations[id]; ok {
		return *c, nil
	}
	return messaging.Conversation{}, messaging.ErrConversationNotFound
}

func (repo *messagingRepository) TouchConversation(id string, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if c, ok := repo.db.conversations[id]; ok {
		c.UpdatedAt = at
	}
	return nil
}

func (repo *messagingRepository) CreateGroupMessage(gm messaging.GroupMessage) (messaging.GroupMessage, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	gm.ID = uuid.New().String()
	repo.db.groupMessages[gm.ID] = &gm
	return gm, nil
}

func (repo *messagingRepository) QueryGroupMessages(conversationID string) ([]messaging.GroupMessage, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := make([]messaging.GroupMessage, 0)
	for _, gm := range repo.db.groupMessages {
		if gm.ConversationID == conversationID {
			msgs = append(msgs, *gm)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].SentAt.Before(msgs[j].SentAt) })
	return msgs, nil
}

// attachments

func (repo *messagingRepository) CreateAttachment(att messaging.Attachment) (messaging.Attachment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	att.ID = uuid.New().String()
	repo.db.attachments[att.ID] = &att
	return att, nil
}

func (repo *messagingRepository) QueryMessageAttachments(messageID string) ([]messaging.Attachment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	atts := make([]messaging.Attachment, 0)
	for _, att := range repo.db.attachments {
		if att.MessageID == messageID {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].UploadedAt.Before(atts[j].UploadedAt) })
	return atts, nil
}

// notifications

func (repo *messagingRepository) CreateNotification(n messaging.Notification) (messaging.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n.ID = uuid.New().String()
	repo.db.notifications[n.ID] = &n
	return n, nil
}

func (repo *messagingRepository) QueryNotifications(userID string, unreadOnly bool) ([]messaging.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifs := make([]messaging.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		notifs = append(notifs, *n)
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (repo *messagingRepository) GetNotificationByID(id string) (messaging.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.notifications[id]; ok {
		return *n, nil
	}
	return messaging.Notification{}, messaging.ErrNotificationNotFound
}

func (repo *messagingRepository) UpdateNotification(n messaging.Notification) (messaging.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.notifications[n.ID]; !ok {
		return messaging.Notification{}, messaging.ErrNotificationNotFound
	}
	repo.db.notifications[n.ID] = &n
	return n, nil
}
