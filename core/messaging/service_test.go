package messaging_test

import (
	"testing"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/messaging"
	"github.com/esakris/techiekraft/core/user"
	inmemdb "github.com/esakris/techiekraft/storage/database/inmem"
)

type messagingFixture struct {
	svc messaging.Service

	alice  user.User
	bob    user.User
	carol  user.User
	hidden user.User // never a participant
	admin  user.User
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)

	f := &messagingFixture{svc: messaging.NewService(inmemdb.NewMessagingRepository(db), usrRepo)}
	createUser := func(email, first, role string) user.User {
		usr, err := usrRepo.CreateUser(user.User{Email: email, FirstName: first, Role: role, IsActive: true})
		if err != nil {
			t.Fatalf("CreateUser(%s): %v", email, err)
		}
		return usr
	}
	f.alice = createUser("alice@test.cd", "Alice", user.RoleTeacher)
	f.bob = createUser("bob@test.cd", "Bob", user.RoleStudent)
	f.carol = createUser("carol@test.cd", "Carol", user.RoleStudent)
	f.hidden = createUser("dave@test.cd", "Dave", user.RoleStudent)
	f.admin = createUser("boss@test.cd", "Eve", user.RoleAdmin)
	return f
}

func (f *messagingFixture) send(t *testing.T, from, to user.User) messaging.Message {
	t.Helper()
	m, err := f.svc.Send(from, messaging.NewMessage{
		ReceiverID: to.ID,
		Subject:    "Homework",
		Content:    "Please check question 3.",
	})
	if err != nil {
		t.Fatalf("Send(): %v", err)
	}
	return m
}

func TestService_Send(t *testing.T) {
	t.Run("notifies the receiver", func(t *testing.T) {
		f := newMessagingFixture(t)

		m := f.send(t, f.alice, f.bob)
		if m.IsRead {
			t.Error("new message marked read")
		}

		notifs, err := f.svc.Notifications(f.bob, true)
		if err != nil {
			t.Fatalf("Notifications(): %v", err)
		}
		if len(notifs) != 1 {
			t.Fatalf("Notifications() = %d, want 1", len(notifs))
		}
		if notifs[0].MessageID != m.ID {
			t.Errorf("notification MessageID = %q, want %q", notifs[0].MessageID, m.ID)
		}
	})
	t.Run("no messaging yourself", func(t *testing.T) {
		f := newMessagingFixture(t)

		_, err := f.svc.Send(f.alice, messaging.NewMessage{ReceiverID: f.alice.ID, Content: "hi me"})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Send(self) error = %v, want validation error", err)
		}
	})
	t.Run("unknown receiver", func(t *testing.T) {
		f := newMessagingFixture(t)

		_, err := f.svc.Send(f.alice, messaging.NewMessage{ReceiverID: "nope", Content: "hello?"})
		if err == nil {
			t.Error("Send(unknown receiver) should fail")
		}
	})
}

func TestService_MarkRead(t *testing.T) {
	f := newMessagingFixture(t)
	m := f.send(t, f.alice, f.bob)

	// only the receiver may flip the flag, not even the sender
	if _, err := f.svc.MarkRead(f.alice, m.ID); !core.IsPermissionDenied(err) {
		t.Errorf("MarkRead(sender) error = %v, want permission denied", err)
	}

	read, err := f.svc.MarkRead(f.bob, m.ID)
	if err != nil {
		t.Fatalf("MarkRead(): %v", err)
	}
	if !read.IsRead || read.ReadAt == nil {
		t.Error("message not marked read")
	}

	// idempotent, read_at stays put
	again, err := f.svc.MarkRead(f.bob, m.ID)
	if err != nil {
		t.Fatalf("MarkRead(again): %v", err)
	}
	if !again.ReadAt.Equal(*read.ReadAt) {
		t.Errorf("ReadAt changed on second MarkRead: %v != %v", again.ReadAt, read.ReadAt)
	}
}

func TestService_UnreadCount(t *testing.T) {
	f := newMessagingFixture(t)
	m := f.send(t, f.alice, f.bob)
	f.send(t, f.carol, f.bob)

	n, err := f.svc.UnreadCount(f.bob)
	if err != nil {
		t.Fatalf("UnreadCount(): %v", err)
	}
	if n != 2 {
		t.Errorf("UnreadCount() = %d, want 2", n)
	}

	if _, err = f.svc.MarkRead(f.bob, m.ID); err != nil {
		t.Fatalf("MarkRead(): %v", err)
	}
	if n, err = f.svc.UnreadCount(f.bob); err != nil {
		t.Fatalf("UnreadCount(): %v", err)
	}
	if n != 1 {
		t.Errorf("UnreadCount() = %d, want 1", n)
	}
}

func TestService_Get_visibility(t *testing.T) {
	f := newMessagingFixture(t)
	m := f.send(t, f.alice, f.bob)

	tests := []struct {
		name    string
		actor   user.User
		wantErr bool
	}{
		{"sender", f.alice, false},
		{"receiver", f.bob, false},
		{"admin", f.admin, false},
		{"third party", f.carol, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Get(tt.actor, m.ID)
			if tt.wantErr {
				if !core.IsPermissionDenied(err) {
					t.Errorf("Get() error = %v, want permission denied", err)
				}
			} else if err != nil {
				t.Errorf("Get(): %v", err)
			}
		})
	}
}

func TestService_Conversations(t *testing.T) {
	f := newMessagingFixture(t)

	c, err := f.svc.StartConversation(f.alice, messaging.NewConversation{
		Title:          "Project group",
		ParticipantIDs: []string{f.bob.ID, f.carol.ID},
	})
	if err != nil {
		t.Fatalf("StartConversation(): %v", err)
	}
	// the creator joins implicitly
	if !c.HasParticipant(f.alice.ID) {
		t.Error("creator missing from participants")
	}

	t.Run("group message notifies everyone else", func(t *testing.T) {
		gm, err := f.svc.SendGroupMessage(f.alice, c.ID, messaging.NewGroupMessage{Content: "kickoff tomorrow"})
		if err != nil {
			t.Fatalf("SendGroupMessage(): %v", err)
		}
		for _, member := range []user.User{f.bob, f.carol} {
			notifs, err := f.svc.Notifications(member, true)
			if err != nil {
				t.Fatalf("Notifications(%s): %v", member.Email, err)
			}
			if len(notifs) != 1 || notifs[0].GroupMessageID != gm.ID {
				t.Errorf("%s: got %d notifications, want 1 for the group message", member.Email, len(notifs))
			}
		}
		// no notification for the sender
		notifs, err := f.svc.Notifications(f.alice, true)
		if err != nil {
			t.Fatalf("Notifications(sender): %v", err)
		}
		if len(notifs) != 0 {
			t.Errorf("sender got %d notifications, want 0", len(notifs))
		}
	})

	t.Run("non-participants shut out", func(t *testing.T) {
		if _, err := f.svc.SendGroupMessage(f.hidden, c.ID, messaging.NewGroupMessage{Content: "let me in"}); !core.IsPermissionDenied(err) {
			t.Errorf("SendGroupMessage(outsider) error = %v, want permission denied", err)
		}
		if _, err := f.svc.GroupMessages(f.hidden, c.ID); !core.IsPermissionDenied(err) {
			t.Errorf("GroupMessages(outsider) error = %v, want permission denied", err)
		}
	})

	t.Run("listed for participants only", func(t *testing.T) {
		got, err := f.svc.Conversations(f.bob)
		if err != nil {
			t.Fatalf("Conversations(): %v", err)
		}
		if len(got) != 1 {
			t.Errorf("Conversations(participant) = %d, want 1", len(got))
		}
		if got, err = f.svc.Conversations(f.hidden); err != nil {
			t.Fatalf("Conversations(): %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Conversations(outsider) = %d, want 0", len(got))
		}
	})
}

func TestService_MarkNotificationRead(t *testing.T) {
	f := newMessagingFixture(t)
	f.send(t, f.alice, f.bob)

	notifs, err := f.svc.Notifications(f.bob, true)
	if err != nil {
		t.Fatalf("Notifications(): %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("Notifications() = %d, want 1", len(notifs))
	}

	if _, err = f.svc.MarkNotificationRead(f.carol, notifs[0].ID); !core.IsPermissionDenied(err) {
		t.Errorf("MarkNotificationRead(other user) error = %v, want permission denied", err)
	}

	n, err := f.svc.MarkNotificationRead(f.bob, notifs[0].ID)
	if err != nil {
		t.Fatalf("MarkNotificationRead(): %v", err)
	}
	if !n.IsRead {
		t.Error("notification not marked read")
	}

	unread, err := f.svc.Notifications(f.bob, true)
	if err != nil {
		t.Fatalf("Notifications(): %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("unread notifications = %d, want 0", len(unread))
	}
}
