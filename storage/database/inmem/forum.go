package inmemdb

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/esakris/techiekraft/core/forum"
)

type forumRepository struct {
	db *forumTable
}

var _ forum.Repository = (*forumRepository)(nil) // interface compliance check

func NewForumRepository(db *DB) *forumRepository {
	return &forumRepository{db: db.forum}
}

// categories

func (repo *forumRepository) CreateCategory(cat forum.Category) (forum.Category, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cat.ID = uuid.New().String()
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

func (repo *forumRepository) QueryCategories() ([]forum.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cats := make([]forum.Category, 0)
	for _, cat := range repo.db.categories {
		if cat.IsActive {
			cats = append(cats, *cat)
		}
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Order != cats[j].Order {
			return cats[i].Order < cats[j].Order
		}
		return cats[i].Name < cats[j].Name
	})
	return cats, nil
}

func (repo *forumRepository) GetCategoryByID(id string) (forum.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cat, ok := repo.db.categories[id]; ok {
		return *cat, nil
	}
	return forum.Category{}, forum.ErrCategoryNotFound
}

func (repo *forumRepository) GetCategoryByName(name string) (forum.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cat := range repo.db.categories {
		if cat.Name == name {
			return *cat, nil
		}
	}
	return forum.Category{}, forum.ErrCategoryNotFound
}

func (repo *forumRepository) UpdateCategory(cat forum.Category) (forum.Category, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.categories[cat.ID]; !ok {
		return forum.Category{}, forum.ErrCategoryNotFound
	}
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

// topics

func (repo *forumRepository) CreateTopic(t forum.Topic) (forum.Topic, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = uuid.New().String()
	repo.db.topics[t.ID] = &t
	return t, nil
}

func (repo *forumRepository) QueryTopics(filter forum.TopicFilter) ([]forum.Topic, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	topics := make([]forum.Topic, 0)
	for _, t := range repo.db.topics {
		if filter.CategoryID != "" && t.CategoryID != filter.CategoryID {
			continue
		}
		if filter.CreatorID != "" && t.CreatorID != filter.CreatorID {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(t.Title), s) &&
				!strings.Contains(strings.ToLower(t.Content), s) {
				continue
			}
		}
		topics = append(topics, *t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].IsPinned != topics[j].IsPinned {
			return topics[i].IsPinned
		}
		return topics[i].UpdatedAt.After(topics[j].UpdatedAt)
	})
	return topics, nil
}

func (repo *forumRepository) GetTopicByID(id string) (forum.Topic, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.topics[id]; ok {
		return *t, nil
	}
	return forum.Topic{}, forum.ErrTopicNotFound
}

func (repo *forumRepository) UpdateTopic(t forum.Topic) (forum.Topic, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.topics[t.ID]; !ok {
		return forum.Topic{}, forum.ErrTopicNotFound
	}
	repo.db.topics[t.ID] = &t
	return t, nil
}

func (repo *forumRepository) DeleteTopic(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.topics, id)
	for postID, p := range repo.db.posts {
		if p.TopicID == id {
			delete(repo.db.posts, postID)
		}
	}
	for subID, sub := range repo.db.subscriptions {
		if sub.TopicID == id {
			delete(repo.db.subscriptions, subID)
		}
	}
	for pollID, p := range repo.db.polls {
		if p.TopicID != id {
			continue
		}
		for choiceID, c := range repo.db.pollChoices {
			if c.PollID == pollID {
				delete(repo.db.pollChoices, choiceID)
			}
		}
		for voteID, v := range repo.db.pollVotes {
			if v.PollID == pollID {
				delete(repo.db.pollVotes, voteID)
			}
		}
		delete(repo.db.polls, pollID)
	}
	return nil
}

// posts

func (repo *forumRepository) CreatePost(p forum.Post) (forum.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = uuid.New().String()
	repo.db.posts[p.ID] = &p
	return p, nil
}

func (repo *forumRepository) QueryPostsByTopic(topicID string) ([]forum.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	posts := make([]forum.Post, 0)
	for _, p := range repo.db.posts {
		if p.TopicID == topicID {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.Before(posts[j].CreatedAt) })
	return posts, nil
}

func (repo *forumRepository) GetPostByID(id string) (forum.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.posts[id]; ok {
		return *p, nil
	}
	return forum.Post{}, forum.ErrPostNotFound
}

func (repo *forumRepository) UpdatePost(p forum.Post) (forum.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.posts[p.ID]; !ok {
		return forum.Post{}, forum.ErrPostNotFound
	}
	repo.db.posts[p.ID] = &p
	return p, nil
}

func (repo *forumRepository) DeletePost(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.posts, id)
	for attID, att := range repo.db.attachments {
		if att.PostID == id {
			delete(repo.db.attachments, attID)
		}
	}
	for rID, r := range repo.db.reactions {
		if r.PostID == id {
			delete(repo.db.reactions, rID)
		}
	}
	return nil
}

// attachments

func (repo *forumRepository) CreateAttachment(att forum.Attachment) (forum.Attachment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	att.ID = uuid.New().String()
	repo.db.attachments[att.ID] = &att
	return att, nil
}

func (repo *forumRepository) QueryAttachmentsByPost(postID string) ([]forum.Attachment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	atts := make([]forum.Attachment, 0)
	for _, att := range repo.db.attachments {
		if att.PostID == postID {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].UploadedAt.Before(atts[j].UploadedAt) })
	return atts, nil
}

// subscriptions

func (repo *forumRepository) CreateSubscription(sub forum.Subscription) (forum.Subscription, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.subscriptions {
		if s.UserID == sub.UserID && s.TopicID == sub.TopicID {
			return forum.Subscription{}, forum.ErrAlreadySubscribed
		}
	}
	sub.ID = uuid.New().String()
	repo.db.subscriptions[sub.ID] = &sub
	return sub, nil
}

func (repo *forumRepository) GetSubscription(userID, topicID string) (forum.Subscription, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.subscriptions {
		if sub.UserID == userID && sub.TopicID == topicID {
			return *sub, nil
		}
	}
	return forum.Subscription{}, forum.ErrSubscriptionNotFound
}

func (repo *forumRepository) DeleteSubscription(userID, topicID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for subID, sub := range repo.db.subscriptions {
		if sub.UserID == userID && sub.TopicID == topicID {
			delete(repo.db.subscriptions, subID)
		}
	}
	return nil
}

// reactions

func (repo *forumRepository) CreateReaction(r forum.Reaction) (forum.Reaction, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.reactions {
		if existing.PostID == r.PostID && existing.UserID == r.UserID &&
			existing.ReactionType == r.ReactionType {
			return forum.Reaction{}, forum.ErrAlreadyReacted
		}
	}
	r.ID = uuid.New().String()
	repo.db.reactions[r.ID] = &r
	return r, nil
}

func (repo *forumRepository) QueryReactionsByPost(postID string) ([]forum.Reaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reactions := make([]forum.Reaction, 0)
	for _, r := range repo.db.reactions {
		if r.PostID == postID {
			reactions = append(reactions, *r)
		}
	}
	sort.Slice(reactions, func(i, j int) bool { return reactions[i].CreatedAt.Before(reactions[j].CreatedAt) })
	return reactions, nil
}

func (repo *forumRepository) DeleteReaction(postID, userID, reactionType string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, r := range repo.db.reactions {
		if r.PostID == postID && r.UserID == userID && r.ReactionType == reactionType {
			delete(repo.db.reactions, id)
		}
	}
	return nil
}

// polls

func (repo *forumRepository) CreatePoll(p forum.Poll, choices []forum.PollChoice) (forum.Poll, []forum.PollChoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.polls {
		if existing.TopicID == p.TopicID {
			return forum.Poll{}, nil, forum.ErrPollExists
		}
	}
	p.ID = uuid.New().String()
	repo.db.polls[p.ID] = &p

	created := make([]forum.PollChoice, 0, len(choices))
	for _, c := range choices {
		c.ID = uuid.New().String()
		c.PollID = p.ID
		repo.db.pollChoices[c.ID] = &c
		created = append(created, c)
	}
	return p, created, nil
}

func (repo *forumRepository) GetPollByTopic(topicID string) (forum.Poll, []forum.PollChoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, p := range repo.db.polls {
		if p.TopicID == topicID {
			choices := make([]forum.PollChoice, 0)
			for _, c := range repo.db.pollChoices {
				if c.PollID == p.ID {
					choices = append(choices, *c)
				}
			}
			sort.Slice(choices, func(i, j int) bool { return choices[i].Order < choices[j].Order })
			return *p, choices, nil
		}
	}
	return forum.Poll{}, nil, forum.ErrPollNotFound
}

func (repo *forumRepository) CreateVote(v forum.PollVote) (forum.PollVote, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.pollVotes {
		if existing.PollID == v.PollID && existing.UserID == v.UserID &&
			existing.ChoiceID == v.ChoiceID {
			return forum.PollVote{}, forum.ErrAlreadyVoted
		}
	}
	v.ID = uuid.New().String()
	repo.db.pollVotes[v.ID] = &v
	return v, nil
}

func (repo *forumRepository) QueryVotesByPoll(pollID string) ([]forum.PollVote, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	votes := make([]forum.PollVote, 0)
	for _, v := range repo.db.pollVotes {
		if v.PollID == pollID {
			votes = append(votes, *v)
		}
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].VotedAt.Before(votes[j].VotedAt) })
	return votes, nil
}
