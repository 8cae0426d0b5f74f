package forum_test

import (
	"testing"
	"time"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/forum"
	"github.com/esakris/techiekraft/core/user"
	inmemdb "github.com/esakris/techiekraft/storage/database/inmem"
)

var (
	admin    = user.User{ID: "admin-1", Email: "boss@test.cd", Role: user.RoleAdmin, IsActive: true}
	teacher  = user.User{ID: "teacher-1", Email: "prof@test.cd", Role: user.RoleTeacher, IsActive: true}
	student  = user.User{ID: "student-1", Email: "kid@test.cd", Role: user.RoleStudent, IsActive: true}
	student2 = user.User{ID: "student-2", Email: "pal@test.cd", Role: user.RoleStudent, IsActive: true}
	parent   = user.User{ID: "parent-1", Email: "mom@test.cd", Role: user.RoleParent, IsActive: true}
)

func newForumService(t *testing.T) forum.Service {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	return forum.NewService(inmemdb.NewForumRepository(db))
}

func createCategory(t *testing.T, svc forum.Service, name string) forum.Category {
	t.Helper()
	cat, err := svc.CreateCategory(admin, forum.NewCategory{Name: name, Description: "test category"})
	if err != nil {
		t.Fatalf("CreateCategory(%s): %v", name, err)
	}
	return cat
}

func createTopic(t *testing.T, svc forum.Service, actor user.User, categoryID string) forum.Topic {
	t.Helper()
	topic, err := svc.CreateTopic(actor, forum.NewTopic{
		CategoryID: categoryID,
		Title:      "Study group",
		Content:    "Anyone up for Saturday?",
	})
	if err != nil {
		t.Fatalf("CreateTopic(): %v", err)
	}
	return topic
}

func TestService_CreateCategory(t *testing.T) {
	svc := newForumService(t)

	cat := createCategory(t, svc, "General")
	if !cat.IsActive {
		t.Error("new categories should be active")
	}

	_, err := svc.CreateCategory(teacher, forum.NewCategory{Name: "Teachers only"})
	if !core.IsPermissionDenied(err) {
		t.Errorf("CreateCategory(teacher) error = %v, want permission denied", err)
	}
}

func TestService_CreateTopic_reservedCategories(t *testing.T) {
	tests := []struct {
		name     string
		category string
		actor    user.User
		wantErr  bool
	}{
		{"student in general", "General", student, false},
		{"student in parent forum", forum.CategoryParentForum, student, true},
		{"parent in parent forum", forum.CategoryParentForum, parent, false},
		{"parent announcing", forum.CategoryAnnouncements, parent, true},
		{"teacher announcing", forum.CategoryAnnouncements, teacher, true},
		{"admin announcing", forum.CategoryAnnouncements, admin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newForumService(t)
			cat := createCategory(t, svc, tt.category)

			_, err := svc.CreateTopic(tt.actor, forum.NewTopic{
				CategoryID: cat.ID,
				Title:      "Hello",
				Content:    "first",
			})
			if tt.wantErr {
				if !core.IsPermissionDenied(err) {
					t.Errorf("CreateTopic() error = %v, want permission denied", err)
				}
			} else if err != nil {
				t.Errorf("CreateTopic(): %v", err)
			}
		})
	}
}

func TestService_GetTopic_bumpsViews(t *testing.T) {
	svc := newForumService(t)
	cat := createCategory(t, svc, "General")
	topic := createTopic(t, svc, student, cat.ID)

	for i := 1; i <= 3; i++ {
		got, err := svc.GetTopic(topic.ID)
		if err != nil {
			t.Fatalf("GetTopic(): %v", err)
		}
		if got.ViewCount != i {
			t.Errorf("ViewCount = %d, want %d", got.ViewCount, i)
		}
	}
}

func TestService_UpdateTopic(t *testing.T) {
	svc := newForumService(t)
	cat := createCategory(t, svc, "General")
	topic := createTopic(t, svc, student, cat.ID)

	t.Run("author edits", func(t *testing.T) {
		got, err := svc.UpdateTopic(student, topic.ID, forum.UpdateTopic{Title: "Study group (moved)"})
		if err != nil {
			t.Fatalf("UpdateTopic(): %v", err)
		}
		if got.Title != "Study group (moved)" {
			t.Errorf("Title = %q", got.Title)
		}
	})
	t.Run("stranger denied", func(t *testing.T) {
		_, err := svc.UpdateTopic(student2, topic.ID, forum.UpdateTopic{Title: "hijack"})
		if !core.IsPermissionDenied(err) {
			t.Errorf("UpdateTopic() error = %v, want permission denied", err)
		}
	})
	t.Run("pin and lock are staff switches", func(t *testing.T) {
		pinned := true
		_, err := svc.UpdateTopic(student, topic.ID, forum.UpdateTopic{IsPinned: &pinned})
		if !core.IsPermissionDenied(err) {
			t.Errorf("UpdateTopic(author pinning) error = %v, want permission denied", err)
		}
		got, err := svc.UpdateTopic(admin, topic.ID, forum.UpdateTopic{IsPinned: &pinned})
		if err != nil {
			t.Fatalf("UpdateTopic(admin): %v", err)
		}
		if !got.IsPinned {
			t.Error("topic not pinned")
		}
	})
}

func TestService_CreatePost_lockedTopic(t *testing.T) {
	svc := newForumService(t)
	cat := createCategory(t, svc, "General")
	topic := createTopic(t, svc, student, cat.ID)

	locked := true
	if _, err := svc.UpdateTopic(admin, topic.ID, forum.UpdateTopic{IsLocked: &locked}); err != nil {
		t.Fatalf("UpdateTopic(lock): %v", err)
	}

	_, err := svc.CreatePost(student2, topic.ID, forum.NewPost{Content: "me too"})
	if !core.IsConflict(err) {
		t.Errorf("CreatePost(locked) error = %v, want conflict", err)
	}
	// staff can still reply
	if _, err = svc.CreatePost(admin, topic.ID, forum.NewPost{Content: "topic closed, see the wiki"}); err != nil {
		t.Errorf("CreatePost(admin on locked): %v", err)
	}
}

func TestService_UpdatePost(t *testing.T) {
	svc := newForumService(t)
	cat := createCategory(t, svc, "General")
	topic := createTopic(t, svc, student, cat.ID)

	post, err := svc.CreatePost(student2, topic.ID, forum.NewPost{Content: "count me in"})
	if err != nil {
		t.Fatalf("CreatePost(): %v", err)
	}

	got, err := svc.UpdatePost(student2, post.ID, forum.NewPost{Content: "count me in, bringing notes"})
	if err != nil {
		t.Fatalf("UpdatePost(): %v", err)
	}
	if !got.IsEdited || got.EditedAt == nil {
		t.Error("edit not flagged")
	}

	if _, err = svc.UpdatePost(student, post.ID, forum.NewPost{Content: "not yours"}); !core.IsPermissionDenied(err) {
		t.Errorf("UpdatePost(other user) error = %v, want permission denied", err)
	}
}

func TestService_Subscribe(t *testing.T) {
	svc := newForumService(t)
	cat := createCategory(t, svc, "General")
	topic := createTopic(t, svc, student, cat.ID)

	sub, err := svc.Subscribe(student2, topic.ID, forum.NewSubscription{})
	if err != nil {
		t.Fatalf("Subscribe(): %v", err)
	}
	if !sub.ReceiveEmails {
		t.Error("ReceiveEmails should default to true")
	}

	if _, err = svc.Subscribe(student2, topic.ID, forum.NewSubscription{}); !core.IsConflict(err) {
		t.Errorf("Subscribe(again) error = %v, want conflict", err)
	}

	if err = svc.Unsubscribe(student2, topic.ID); err != nil {
		t.Fatalf("Unsubscribe(): %v", err)
	}
	// gone, so subscribing again works
	if _, err = svc.Subscribe(student2, topic.ID, forum.NewSubscription{}); err != nil {
		t.Errorf("Subscribe(after unsubscribe): %v", err)
	}
}

func TestService_ParentTopics(t *testing.T) {
	svc := newForumService(t)

	t.Run("students shut out", func(t *testing.T) {
		_, err := svc.ParentTopics(student)
		if !core.IsPermissionDenied(err) {
			t.Errorf("ParentTopics(student) error = %v, want permission denied", err)
		}
	})
	t.Run("empty until the category exists", func(t *testing.T) {
		got, err := svc.ParentTopics(parent)
		if err != nil {
			t.Fatalf("ParentTopics(): %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ParentTopics() = %d topics, want 0", len(got))
		}
	})
	t.Run("scoped to the parent forum", func(t *testing.T) {
		general := createCategory(t, svc, "General")
		pf := createCategory(t, svc, forum.CategoryParentForum)
		createTopic(t, svc, student, general.ID)
		want := createTopic(t, svc, parent, pf.ID)

		got, err := svc.ParentTopics(parent)
		if err != nil {
			t.Fatalf("ParentTopics(): %v", err)
		}
		if len(got) != 1 || got[0].ID != want.ID {
			t.Errorf("ParentTopics() = %d topics, want only the parent forum one", len(got))
		}
	})
}

func TestService_Announcements(t *testing.T) {
	svc := newForumService(t)
	ann := createCategory(t, svc, forum.CategoryAnnouncements)
	want := createTopic(t, svc, admin, ann.ID)

	got, err := svc.Announcements(parent)
	if err != nil {
		t.Fatalf("Announcements(): %v", err)
	}
	if len(got) != 1 || got[0].ID != want.ID {
		t.Errorf("Announcements() = %d topics, want 1", len(got))
	}

	if _, err = svc.Announcements(student); !core.IsPermissionDenied(err) {
		t.Errorf("Announcements(student) error = %v, want permission denied", err)
	}
}

func TestService_React(t *testing.T) {
	svc := newForumService(t)
	cat := createCategory(t, svc, "General")
	topic := createTopic(t, svc, student, cat.ID)
	post, err := svc.CreatePost(student2, topic.ID, forum.NewPost{Content: "bring snacks"})
	if err != nil {
		t.Fatalf("CreatePost(): %v", err)
	}

	r, err := svc.React(student, post.ID, forum.NewReaction{ReactionType: forum.ReactionHelpful})
	if err != nil {
		t.Fatalf("React(): %v", err)
	}
	if r.PostID != post.ID || r.UserID != student.ID {
		t.Errorf("Reaction = %+v", r)
	}

	t.Run("one per type per user", func(t *testing.T) {
		_, err := svc.React(student, post.ID, forum.NewReaction{ReactionType: forum.ReactionHelpful})
		if !core.IsConflict(err) {
			t.Errorf("React(again) error = %v, want conflict", err)
		}
		// a different type is fine
		if _, err = svc.React(student, post.ID, forum.NewReaction{ReactionType: forum.ReactionThanks}); err != nil {
			t.Errorf("React(other type): %v", err)
		}
	})

	t.Run("unreact frees the slot", func(t *testing.T) {
		if err := svc.Unreact(student, post.ID, forum.ReactionHelpful); err != nil {
			t.Fatalf("Unreact(): %v", err)
		}
		if _, err := svc.React(student, post.ID, forum.NewReaction{ReactionType: forum.ReactionHelpful}); err != nil {
			t.Errorf("React(after unreact): %v", err)
		}
	})

	t.Run("listed per post", func(t *testing.T) {
		if _, err := svc.React(teacher, post.ID, forum.NewReaction{ReactionType: forum.ReactionInsightful}); err != nil {
			t.Fatalf("React(teacher): %v", err)
		}
		got, err := svc.Reactions(post.ID)
		if err != nil {
			t.Fatalf("Reactions(): %v", err)
		}
		if len(got) != 3 {
			t.Errorf("Reactions() = %d, want 3", len(got))
		}
	})
}

func TestService_CreatePoll(t *testing.T) {
	svc := newForumService(t)
	cat := createCategory(t, svc, "General")
	topic := createTopic(t, svc, student, cat.ID)

	np := forum.NewPoll{
		Question: "Which day works?",
		Choices:  []string{"Saturday", "Sunday"},
	}

	t.Run("stranger denied", func(t *testing.T) {
		_, err := svc.CreatePoll(student2, topic.ID, np)
		if !core.IsPermissionDenied(err) {
			t.Errorf("CreatePoll(stranger) error = %v, want permission denied", err)
		}
	})

	res, err := svc.CreatePoll(student, topic.ID, np)
	if err != nil {
		t.Fatalf("CreatePoll(): %v", err)
	}
	if len(res.Choices) != 2 || res.TotalVotes != 0 {
		t.Errorf("PollResults = %d choices, %d votes", len(res.Choices), res.TotalVotes)
	}
	if res.Choices[0].Text != "Saturday" || res.Choices[0].Order != 0 {
		t.Errorf("first choice = %+v", res.Choices[0])
	}

	t.Run("one poll per topic", func(t *testing.T) {
		_, err := svc.CreatePoll(student, topic.ID, np)
		if !core.IsConflict(err) {
			t.Errorf("CreatePoll(again) error = %v, want conflict", err)
		}
	})

	t.Run("staff can attach to any topic", func(t *testing.T) {
		other := createTopic(t, svc, student2, cat.ID)
		if _, err := svc.CreatePoll(admin, other.ID, np); err != nil {
			t.Errorf("CreatePoll(admin): %v", err)
		}
	})
}

func TestService_Vote(t *testing.T) {
	svc := newForumService(t)
	cat := createCategory(t, svc, "General")
	topic := createTopic(t, svc, student, cat.ID)

	res, err := svc.CreatePoll(student, topic.ID, forum.NewPoll{
		Question: "Which day works?",
		Choices:  []string{"Saturday", "Sunday"},
	})
	if err != nil {
		t.Fatalf("CreatePoll(): %v", err)
	}
	saturday, sunday := res.Choices[0].ID, res.Choices[1].ID

	if _, err := svc.Vote(student2, topic.ID, forum.NewVote{ChoiceID: saturday}); err != nil {
		t.Fatalf("Vote(): %v", err)
	}

	t.Run("single choice polls take one vote", func(t *testing.T) {
		if _, err := svc.Vote(student2, topic.ID, forum.NewVote{ChoiceID: saturday}); !core.IsConflict(err) {
			t.Errorf("Vote(same choice again) error = %v, want conflict", err)
		}
		if _, err := svc.Vote(student2, topic.ID, forum.NewVote{ChoiceID: sunday}); !core.IsConflict(err) {
			t.Errorf("Vote(second choice) error = %v, want conflict", err)
		}
	})

	t.Run("foreign choice rejected", func(t *testing.T) {
		_, err := svc.Vote(teacher, topic.ID, forum.NewVote{ChoiceID: "not-a-choice"})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Vote(foreign choice) error = %v, want ValidationError", err)
		}
	})

	t.Run("tallied in results", func(t *testing.T) {
		if _, err := svc.Vote(teacher, topic.ID, forum.NewVote{ChoiceID: sunday}); err != nil {
			t.Fatalf("Vote(teacher): %v", err)
		}
		got, err := svc.GetPoll(topic.ID)
		if err != nil {
			t.Fatalf("GetPoll(): %v", err)
		}
		if got.TotalVotes != 2 {
			t.Errorf("TotalVotes = %d, want 2", got.TotalVotes)
		}
		for _, c := range got.Choices {
			if c.VoteCount != 1 {
				t.Errorf("VoteCount(%s) = %d, want 1", c.Text, c.VoteCount)
			}
		}
	})
}

func TestService_Vote_closedPoll(t *testing.T) {
	svc := newForumService(t)
	cat := createCategory(t, svc, "General")
	topic := createTopic(t, svc, student, cat.ID)

	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	res, err := svc.CreatePoll(student, topic.ID, forum.NewPoll{
		Question: "Did you make it?",
		Choices:  []string{"Yes", "No"},
		EndDate:  &yesterday,
	})
	if err != nil {
		t.Fatalf("CreatePoll(): %v", err)
	}

	_, err = svc.Vote(student2, topic.ID, forum.NewVote{ChoiceID: res.Choices[0].ID})
	if !core.IsConflict(err) {
		t.Errorf("Vote(closed poll) error = %v, want conflict", err)
	}
}
