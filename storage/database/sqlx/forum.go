package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core/forum"
)

type forumRepository struct {
	db *sqlx.DB
}

var _ forum.Repository = (*forumRepository)(nil) // interface compliance check

func NewForumRepository(db *sqlx.DB) *forumRepository {
	return &forumRepository{db: db}
}

// categories

func (repo forumRepository) CreateCategory(cat forum.Category) (forum.Category, error) {
	cat.ID = uuid.New().String()
	q := `INSERT INTO forum_category (id, name, description, icon_class, "order", is_active, created_at, updated_at)
VALUES (:id, :name, :description, :icon_class, :order, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, cat); err != nil {
		return forum.Category{}, errors.Wrap(err, "inserting forum category")
	}
	return cat, nil
}

func (repo forumRepository) QueryCategories() ([]forum.Category, error) {
	cats := make([]forum.Category, 0)
	q := `SELECT * FROM forum_category WHERE is_active ORDER BY "order", name`
	if err := repo.db.Select(&cats, q); err != nil {
		return nil, errors.Wrap(err, "querying forum categories")
	}
	return cats, nil
}

func (repo forumRepository) GetCategoryByID(id string) (forum.Category, error) {
	var cat forum.Category
	if err := repo.db.Get(&cat, `SELECT * FROM forum_category WHERE id = $1`, id); err != nil {
		return forum.Category{}, trapNoRowsErr(err, forum.ErrCategoryNotFound, "getting forum category")
	}
	return cat, nil
}

func (repo forumRepository) GetCategoryByName(name string) (forum.Category, error) {
	var cat forum.Category
	if err := repo.db.Get(&cat, `SELECT * FROM forum_category WHERE name = $1`, name); err != nil {
		return forum.Category{}, trapNoRowsErr(err, forum.ErrCategoryNotFound, "getting forum category")
	}
	return cat, nil
}

func (repo forumRepository) UpdateCategory(cat forum.Category) (forum.Category, error) {
	q := `UPDATE forum_category SET name = :name, description = :description, icon_class = :icon_class,
"order" = :order, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, cat); err != nil {
		return forum.Category{}, errors.Wrap(err, "updating forum category")
	}
	return cat, nil
}

// topics

func (repo forumRepository) CreateTopic(t forum.Topic) (forum.Topic, error) {
	t.ID = uuid.New().String()
	q := `INSERT INTO forum_topic (id, category_id, title, content, creator_id, is_pinned, is_locked,
view_count, created_at, updated_at)
VALUES (:id, :category_id, :title, :content, :creator_id, :is_pinned, :is_locked,
:view_count, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, t); err != nil {
		return forum.Topic{}, errors.Wrap(err, "inserting forum topic")
	}
	return t, nil
}

func (repo forumRepository) QueryTopics(filter forum.TopicFilter) ([]forum.Topic, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CategoryID != "" {
		conds = append(conds, "category_id = "+arg(filter.CategoryID))
	}
	if filter.CreatorID != "" {
		conds = append(conds, "creator_id = "+arg(filter.CreatorID))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR content ILIKE %s)", p, p))
	}

	q := `SELECT * FROM forum_topic`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY is_pinned DESC, updated_at DESC"

	topics := make([]forum.Topic, 0)
	if err := repo.db.Select(&topics, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying forum topics")
	}
	return topics, nil
}

func (repo forumRepository) GetTopicByID(id string) (forum.Topic, error) {
	var t forum.Topic
	if err := repo.db.Get(&t, `SELECT * FROM forum_topic WHERE id = $1`, id); err != nil {
		return forum.Topic{}, trapNoRowsErr(err, forum.ErrTopicNotFound, "getting forum topic")
	}
	return t, nil
}

func (repo forumRepository) UpdateTopic(t forum.Topic) (forum.Topic, error) {
	q := `UPDATE forum_topic SET category_id = :category_id, title = :title, content = :content,
is_pinned = :is_pinned, is_locked = :is_locked, view_count = :view_count, updated_at = :updated_at
WHERE id = :id`
	if _, err := repo.db.NamedExec(q, t); err != nil {
		return forum.Topic{}, errors.Wrap(err, "updating forum topic")
	}
	return t, nil
}

func (repo forumRepository) DeleteTopic(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM forum_topic WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting forum topic")
	}
	return nil
}

// posts

func (repo forumRepository) CreatePost(p forum.Post) (forum.Post, error) {
	p.ID = uuid.New().String()
	q := `INSERT INTO forum_post (id, topic_id, content, creator_id, is_edited, edited_at, created_at, updated_at)
VALUES (:id, :topic_id, :content, :creator_id, :is_edited, :edited_at, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, p); err != nil {
		return forum.Post{}, errors.Wrap(err, "inserting forum post")
	}
	return p, nil
}

func (repo forumRepository) QueryPostsByTopic(topicID string) ([]forum.Post, error) {
	posts := make([]forum.Post, 0)
	q := `SELECT * FROM forum_post WHERE topic_id = $1 ORDER BY created_at`
	if err := repo.db.Select(&posts, q, topicID); err != nil {
		return nil, errors.Wrap(err, "querying forum posts")
	}
	return posts, nil
}

func (repo forumRepository) GetPostByID(id string) (forum.Post, error) {
	var p forum.Post
	if err := repo.db.Get(&p, `SELECT * FROM forum_post WHERE id = $1`, id); err != nil {
		return forum.Post{}, trapNoRowsErr(err, forum.ErrPostNotFound, "getting forum post")
	}
	return p, nil
}

func (repo forumRepository) UpdatePost(p forum.Post) (forum.Post, error) {
	q := `UPDATE forum_post SET content = :content, is_edited = :is_edited, edited_at = :edited_at,
updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExec(q, p); err != nil {
		return forum.Post{}, errors.Wrap(err, "updating forum post")
	}
	return p, nil
}

func (repo forumRepository) DeletePost(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM forum_post WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting forum post")
	}
	return nil
}

// attachments

func (repo forumRepository) CreateAttachment(att forum.Attachment) (forum.Attachment, error) {
	att.ID = uuid.New().String()
	q := `INSERT INTO forum_attachment (id, post_id, file, filename, file_type, size, uploaded_at)
VALUES (:id, :post_id, :file, :filename, :file_type, :size, :uploaded_at)`
	if _, err := repo.db.NamedExec(q, att); err != nil {
		return forum.Attachment{}, errors.Wrap(err, "inserting forum attachment")
	}
	return att, nil
}

func (repo forumRepository) QueryAttachmentsByPost(postID string) ([]forum.Attachment, error) {
	atts := make([]forum.Attachment, 0)
	q := `SELECT * FROM forum_attachment WHERE post_id = $1 ORDER BY uploaded_at`
	if err := repo.db.Select(&atts, q, postID); err != nil {
		return nil, errors.Wrap(err, "querying forum attachments")
	}
	return atts, nil
}

// subscriptions

func (repo forumRepository) CreateSubscription(sub forum.Subscription) (forum.Subscription, error) {
	sub.ID = uuid.New().String()
	q := `INSERT INTO forum_subscription (id, user_id, topic_id, receive_emails, created_at)
VALUES (:id, :user_id, :topic_id, :receive_emails, :created_at)`
	if _, err := repo.db.NamedExec(q, sub); err != nil {
		if isUniqueViolation(err) {
			return forum.Subscription{}, forum.ErrAlreadySubscribed
		}
		return forum.Subscription{}, errors.Wrap(err, "inserting forum subscription")
	}
	return sub, nil
}

func (repo forumRepository) GetSubscription(userID, topicID string) (forum.Subscription, error) {
	var sub forum.Subscription
	q := `SELECT * FROM forum_subscription WHERE user_id = $1 AND topic_id = $2`
	if err := repo.db.Get(&sub, q, userID, topicID); err != nil {
		return forum.Subscription{}, trapNoRowsErr(err, forum.ErrSubscriptionNotFound, "getting forum subscription")
	}
	return sub, nil
}

func (repo forumRepository) DeleteSubscription(userID, topicID string) error {
	q := `DELETE FROM forum_subscription WHERE user_id = $1 AND topic_id = $2`
	if _, err := repo.db.Exec(q, userID, topicID); err != nil {
		return errors.Wrap(err, "deleting forum subscription")
	}
	return nil
}

// reactions

func (repo forumRepository) CreateReaction(r forum.Reaction) (forum.Reaction, error) {
	r.ID = uuid.New().String()
	q := `INSERT INTO forum_reaction (id, post_id, user_id, reaction_type, created_at)
VALUES (:id, :post_id, :user_id, :reaction_type, :created_at)`
	if _, err := repo.db.NamedExec(q, r); err != nil {
		if isUniqueViolation(err) {
			return forum.Reaction{}, forum.ErrAlreadyReacted
		}
		return forum.Reaction{}, errors.Wrap(err, "inserting forum reaction")
	}
	return r, nil
}

func (repo forumRepository) QueryReactionsByPost(postID string) ([]forum.Reaction, error) {
	reactions := make([]forum.Reaction, 0)
	q := `SELECT * FROM forum_reaction WHERE post_id = $1 ORDER BY created_at`
	if err := repo.db.Select(&reactions, q, postID); err != nil {
		return nil, errors.Wrap(err, "querying forum reactions")
	}
	return reactions, nil
}

func (repo forumRepository) DeleteReaction(postID, userID, reactionType string) error {
	q := `DELETE FROM forum_reaction WHERE post_id = $1 AND user_id = $2 AND reaction_type = $3`
	if _, err := repo.db.Exec(q, postID, userID, reactionType); err != nil {
		return errors.Wrap(err, "deleting forum reaction")
	}
	return nil
}

// polls

func (repo forumRepository) CreatePoll(p forum.Poll, choices []forum.PollChoice) (forum.Poll, []forum.PollChoice, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return forum.Poll{}, nil, errors.Wrap(err, "beginning poll transaction")
	}
	defer tx.Rollback()

	p.ID = uuid.New().String()
	q := `INSERT INTO forum_poll (id, topic_id, question, allow_multiple_choices, end_date, is_active, created_at)
VALUES (:id, :topic_id, :question, :allow_multiple_choices, :end_date, :is_active, :created_at)`
	if _, err := tx.NamedExec(q, p); err != nil {
		if isUniqueViolation(err) {
			return forum.Poll{}, nil, forum.ErrPollExists
		}
		return forum.Poll{}, nil, errors.Wrap(err, "inserting forum poll")
	}

	created := make([]forum.PollChoice, 0, len(choices))
	cq := `INSERT INTO forum_poll_choice (id, poll_id, text, "order")
VALUES (:id, :poll_id, :text, :order)`
	for _, c := range choices {
		c.ID = uuid.New().String()
		c.PollID = p.ID
		if _, err := tx.NamedExec(cq, c); err != nil {
			return forum.Poll{}, nil, errors.Wrap(err, "inserting poll choice")
		}
		created = append(created, c)
	}

	if err := tx.Commit(); err != nil {
		return forum.Poll{}, nil, errors.Wrap(err, "committing poll transaction")
	}
	return p, created, nil
}

func (repo forumRepository) GetPollByTopic(topicID string) (forum.Poll, []forum.PollChoice, error) {
	var p forum.Poll
	if err := repo.db.Get(&p, `SELECT * FROM forum_poll WHERE topic_id = $1`, topicID); err != nil {
		return forum.Poll{}, nil, trapNoRowsErr(err, forum.ErrPollNotFound, "getting forum poll")
	}
	choices := make([]forum.PollChoice, 0)
	q := `SELECT * FROM forum_poll_choice WHERE poll_id = $1 ORDER BY "order"`
	if err := repo.db.Select(&choices, q, p.ID); err != nil {
		return forum.Poll{}, nil, errors.Wrap(err, "querying poll choices")
	}
	return p, choices, nil
}

func (repo forumRepository) CreateVote(v forum.PollVote) (forum.PollVote, error) {
	v.ID = uuid.New().String()
	q := `INSERT INTO forum_poll_vote (id, poll_id, choice_id, user_id, voted_at)
VALUES (:id, :poll_id, :choice_id, :user_id, :voted_at)`
	if _, err := repo.db.NamedExec(q, v); err != nil {
		if isUniqueViolation(err) {
			return forum.PollVote{}, forum.ErrAlreadyVoted
		}
		return forum.PollVote{}, errors.Wrap(err, "inserting poll vote")
	}
	return v, nil
}

func (repo forumRepository) QueryVotesByPoll(pollID string) ([]forum.PollVote, error) {
	votes := make([]forum.PollVote, 0)
	q := `SELECT * FROM forum_poll_vote WHERE poll_id = $1 ORDER BY voted_at`
	if err := repo.db.Select(&votes, q, pollID); err != nil {
		return nil, errors.Wrap(err, "querying poll votes")
	}
	return votes, nil
}
