package forum

import "time"

// Reserved category names with special access rules.
const (
	CategoryParentForum   = "Parent Forum"
	CategoryAnnouncements = "School Announcements"
)

type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	IconClass   string    `db:"icon_class" json:"icon_class,omitempty"`
	Order       int       `db:"order" json:"order"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Topic struct {
	ID         string    `db:"id" json:"id"`
	CategoryID string    `db:"category_id" json:"category_id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	CreatorID  string    `db:"creator_id" json:"creator_id"`
	IsPinned   bool      `db:"is_pinned" json:"is_pinned"`
	IsLocked   bool      `db:"is_locked" json:"is_locked"`
	ViewCount  int       `db:"view_count" json:"view_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type Post struct {
	ID        string     `db:"id" json:"id"`
	TopicID   string     `db:"topic_id" json:"topic_id"`
	Content   string     `db:"content" json:"content"`
	CreatorID string     `db:"creator_id" json:"creator_id"`
	IsEdited  bool       `db:"is_edited" json:"is_edited"`
	EditedAt  *time.Time `db:"edited_at" json:"edited_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Attachment records metadata only; the blob lives in external storage.
type Attachment struct {
	ID         string    `db:"id" json:"id"`
	PostID     string    `db:"post_id" json:"post_id"`
	File       string    `db:"file" json:"file"`
	Filename   string    `db:"filename" json:"filename"`
	FileType   string    `db:"file_type" json:"file_type"`
	Size       int64     `db:"size" json:"size"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Reaction types.
const (
	ReactionUpvote     = "upvote"
	ReactionHelpful    = "helpful"
	ReactionLike       = "like"
	ReactionThanks     = "thanks"
	ReactionInsightful = "insightful"
)

// Reaction is unique per (post, user, reaction type).
type Reaction struct {
	ID           string    `db:"id" json:"id"`
	PostID       string    `db:"post_id" json:"post_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	ReactionType string    `db:"reaction_type" json:"reaction_type"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Poll is 1:1 with its topic.
type Poll struct {
	ID                   string     `db:"id" json:"id"`
	TopicID              string     `db:"topic_id" json:"topic_id"`
	Question             string     `db:"question" json:"question"`
	AllowMultipleChoices bool       `db:"allow_multiple_choices" json:"allow_multiple_choices"`
	EndDate              *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsActive             bool       `db:"is_active" json:"is_active"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// IsClosed reports whether the poll no longer accepts votes.
func (p Poll) IsClosed(now time.Time) bool {
	return !p.IsActive || (p.EndDate != nil && now.After(*p.EndDate))
}

type PollChoice struct {
	ID     string `db:"id" json:"id"`
	PollID string `db:"poll_id" json:"poll_id"`
	Text   string `db:"text" json:"text"`
	Order  int    `db:"order" json:"order"`
}

// PollVote is unique per (poll, user, choice); single-choice polls admit at
// most one vote per user.
type PollVote struct {
	ID       string    `db:"id" json:"id"`
	PollID   string    `db:"poll_id" json:"poll_id"`
	ChoiceID string    `db:"choice_id" json:"choice_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	VotedAt  time.Time `db:"voted_at" json:"voted_at"`
}

// PollResults carries the poll with per-choice tallies.
type PollResults struct {
	Poll
	Choices    []ChoiceResult `json:"choices"`
	TotalVotes int            `json:"total_votes"`
}

type ChoiceResult struct {
	PollChoice
	VoteCount int `json:"vote_count"`
}

// Subscription is unique per (user, topic).
type Subscription struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	TopicID       string    `db:"topic_id" json:"topic_id"`
	ReceiveEmails bool      `db:"receive_emails" json:"receive_emails"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type TopicFilter struct {
	CategoryID string `json:"category_id" query:"category_id"`
	CreatorID  string `json:"creator_id" query:"creator_id"`
	Search     string `json:"search" query:"search"`
}
