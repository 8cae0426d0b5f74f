package forum

import (
	"time"

	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core"
	"github.com/esakris/techiekraft/core/user"
)

var (
	ErrCategoryNotFound     = errors.New("forum category not found")
	ErrTopicNotFound        = errors.New("forum topic not found")
	ErrPostNotFound         = errors.New("forum post not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")

	ErrPollNotFound = errors.New("poll not found")

	// ErrAlreadySubscribed reports a (user, topic) uniqueness violation.
	ErrAlreadySubscribed = errors.New("you are already subscribed to this topic")
	// ErrAlreadyReacted reports a (post, user, reaction type) uniqueness
	// violation.
	ErrAlreadyReacted = errors.New("you have already reacted to this post")
	// ErrAlreadyVoted reports a (poll, user, choice) uniqueness violation.
	ErrAlreadyVoted = errors.New("you have already voted in this poll")
	// ErrPollExists reports the 1:1 topic/poll violation.
	ErrPollExists = errors.New("this topic already has a poll")
)

type (
	Repository interface {
		CreateCategory(cat Category) (Category, error)
		QueryCategories() ([]Category, error)
		GetCategoryByID(id string) (Category, error)
		GetCategoryByName(name string) (Category, error)
		UpdateCategory(cat Category) (Category, error)

		CreateTopic(t Topic) (Topic, error)
		QueryTopics(filter TopicFilter) ([]Topic, error)
		GetTopicByID(id string) (Topic, error)
		UpdateTopic(t Topic) (Topic, error)
		DeleteTopic(id string) error

		CreatePost(p Post) (Post, error)
		QueryPostsByTopic(topicID string) ([]Post, error)
		GetPostByID(id string) (Post, error)
		UpdatePost(p Post) (Post, error)
		DeletePost(id string) error

		CreateAttachment(att Attachment) (Attachment, error)
		QueryAttachmentsByPost(postID string) ([]Attachment, error)

		CreateSubscription(sub Subscription) (Subscription, error)
		GetSubscription(userID, topicID string) (Subscription, error)
		DeleteSubscription(userID, topicID string) error

		CreateReaction(r Reaction) (Reaction, error)
		QueryReactionsByPost(postID string) ([]Reaction, error)
		DeleteReaction(postID, userID, reactionType string) error

		CreatePoll(p Poll, choices []PollChoice) (Poll, []PollChoice, error)
		GetPollByTopic(topicID string) (Poll, []PollChoice, error)
		CreateVote(v PollVote) (PollVote, error)
		QueryVotesByPoll(pollID string) ([]PollVote, error)
	}

	Service interface {
		Categories() ([]Category, error)
		CreateCategory(actor user.User, nc NewCategory) (Category, error)

		Topics(filter TopicFilter) ([]Topic, error)
		// GetTopic bumps the topic view counter.
		GetTopic(id string) (Topic, error)
		CreateTopic(actor user.User, nt NewTopic) (Topic, error)
		UpdateTopic(actor user.User, id string, ut UpdateTopic) (Topic, error)
		DeleteTopic(actor user.User, id string) error

		Posts(topicID string) ([]Post, error)
		CreatePost(actor user.User, topicID string, np NewPost) (Post, error)
		UpdatePost(actor user.User, id string, np NewPost) (Post, error)
		DeletePost(actor user.User, id string) error
		AddAttachment(actor user.User, postID string, na NewAttachment) (Attachment, error)
		Attachments(postID string) ([]Attachment, error)

		React(actor user.User, postID string, nr NewReaction) (Reaction, error)
		Unreact(actor user.User, postID, reactionType string) error
		Reactions(postID string) ([]Reaction, error)

		// CreatePoll attaches a poll to a topic; at most one per topic.
		CreatePoll(actor user.User, topicID string, np NewPoll) (PollResults, error)
		GetPoll(topicID string) (PollResults, error)
		Vote(actor user.User, topicID string, nv NewVote) (PollVote, error)

		Subscribe(actor user.User, topicID string, ns NewSubscription) (Subscription, error)
		Unsubscribe(actor user.User, topicID string) error

		// ParentTopics lists the parent-only forum.
		ParentTopics(actor user.User) ([]Topic, error)
		// Announcements lists school announcements for parents.
		Announcements(actor user.User) ([]Topic, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Categories() ([]Category, error) {
	return svc.repo.QueryCategories()
}

func (svc *service) CreateCategory(actor user.User, nc NewCategory) (Category, error) {
	if !actor.IsStaff() {
		return Category{}, core.NewPermissionDeniedError("only staff can create forum categories")
	}
	now := time.Now().UTC()
	return svc.repo.CreateCategory(Category{
		Name:        nc.Name,
		Description: nc.Description,
		IconClass:   nc.IconClass,
		Order:       nc.Order,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) Topics(filter TopicFilter) ([]Topic, error) {
	return svc.repo.QueryTopics(filter)
}

func (svc *service) GetTopic(id string) (Topic, error) {
	t, err := svc.repo.GetTopicByID(id)
	if err != nil {
		return Topic{}, err
	}
	t.ViewCount++
	return svc.repo.UpdateTopic(t)
}

func (svc *service) CreateTopic(actor user.User, nt NewTopic) (Topic, error) {
	cat, err := svc.repo.GetCategoryByID(nt.CategoryID)
	if err != nil {
		return Topic{}, err
	}
	if cat.Name == CategoryParentForum && !actor.IsParent() && !actor.IsStaff() {
		return Topic{}, core.NewPermissionDeniedError("only parents can create topics in the parent forum")
	}
	if cat.Name == CategoryAnnouncements && !actor.IsStaff() {
		return Topic{}, core.NewPermissionDeniedError("only staff can post announcements")
	}
	now := time.Now().UTC()
	return svc.repo.CreateTopic(Topic{
		CategoryID: cat.ID,
		Title:      nt.Title,
		Content:    nt.Content,
		CreatorID:  actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// canModerate admits the author or staff.
func canModerate(actor user.User, creatorID string) bool {
	return actor.IsStaff() || actor.ID == creatorID
}

func (svc *service) UpdateTopic(actor user.User, id string, ut UpdateTopic) (Topic, error) {
	t, err := svc.repo.GetTopicByID(id)
	if err != nil {
		return Topic{}, err
	}
	if !canModerate(actor, t.CreatorID) {
		return Topic{}, core.NewPermissionDeniedError("you can only edit your own topics")
	}
	if ut.Title != "" {
		t.Title = ut.Title
	}
	if ut.Content != "" {
		t.Content = ut.Content
	}
	// pin and lock are moderator switches
	if ut.IsPinned != nil || ut.IsLocked != nil {
		if !actor.IsStaff() {
			return Topic{}, core.NewPermissionDeniedError("only staff can pin or lock topics")
		}
		if ut.IsPinned != nil {
			t.IsPinned = *ut.IsPinned
		}
		if ut.IsLocked != nil {
			t.IsLocked = *ut.IsLocked
		}
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTopic(t)
}

func (svc *service) DeleteTopic(actor user.User, id string) error {
	t, err := svc.repo.GetTopicByID(id)
	if err != nil {
		return err
	}
	if !canModerate(actor, t.CreatorID) {
		return core.NewPermissionDeniedError("you can only delete your own topics")
	}
	return svc.repo.DeleteTopic(id)
}

func (svc *service) Posts(topicID string) ([]Post, error) {
	return svc.repo.QueryPostsByTopic(topicID)
}

func (svc *service) CreatePost(actor user.User, topicID string, np NewPost) (Post, error) {
	t, err := svc.repo.GetTopicByID(topicID)
	if err != nil {
		return Post{}, err
	}
	if t.IsLocked && !actor.IsStaff() {
		return Post{}, core.NewConflictError("this topic is locked")
	}
	now := time.Now().UTC()
	return svc.repo.CreatePost(Post{
		TopicID:   topicID,
		Content:   np.Content,
		CreatorID: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) UpdatePost(actor user.User, id string, np NewPost) (Post, error) {
	p, err := svc.repo.GetPostByID(id)
	if err != nil {
		return Post{}, err
	}
	if !canModerate(actor, p.CreatorID) {
		return Post{}, core.NewPermissionDeniedError("you can only edit your own posts")
	}
	now := time.Now().UTC()
	p.Content = np.Content
	p.IsEdited = true
	p.EditedAt = &now
	p.UpdatedAt = now
	return svc.repo.UpdatePost(p)
}

func (svc *service) DeletePost(actor user.User, id string) error {
	p, err := svc.repo.GetPostByID(id)
	if err != nil {
		return err
	}
	if !canModerate(actor, p.CreatorID) {
		return core.NewPermissionDeniedError("you can only delete your own posts")
	}
	return svc.repo.DeletePost(id)
}

func (svc *service) AddAttachment(actor user.User, postID string, na NewAttachment) (Attachment, error) {
	p, err := svc.repo.GetPostByID(postID)
	if err != nil {
		return Attachment{}, err
	}
	if !canModerate(actor, p.CreatorID) {
		return Attachment{}, core.NewPermissionDeniedError("you can only attach files to your own posts")
	}
	return svc.repo.CreateAttachment(Attachment{
		PostID:     postID,
		File:       na.File,
		Filename:   na.Filename,
		FileType:   na.FileType,
		Size:       na.Size,
		UploadedAt: time.Now().UTC(),
	})
}

func (svc *service) Attachments(postID string) ([]Attachment, error) {
	return svc.repo.QueryAttachmentsByPost(postID)
}

func (svc *service) React(actor user.User, postID string, nr NewReaction) (Reaction, error) {
	if _, err := svc.repo.GetPostByID(postID); err != nil {
		return Reaction{}, err
	}
	r, err := svc.repo.CreateReaction(Reaction{
		PostID:       postID,
		UserID:       actor.ID,
		ReactionType: nr.ReactionType,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Cause(err) == ErrAlreadyReacted {
		return Reaction{}, core.NewConflictError(ErrAlreadyReacted.Error())
	}
	return r, err
}

func (svc *service) Unreact(actor user.User, postID, reactionType string) error {
	return svc.repo.DeleteReaction(postID, actor.ID, reactionType)
}

func (svc *service) Reactions(postID string) ([]Reaction, error) {
	return svc.repo.QueryReactionsByPost(postID)
}

func (svc *service) CreatePoll(actor user.User, topicID string, np NewPoll) (PollResults, error) {
	t, err := svc.repo.GetTopicByID(topicID)
	if err != nil {
		return PollResults{}, err
	}
	if !canModerate(actor, t.CreatorID) {
		return PollResults{}, core.NewPermissionDeniedError("you can only attach polls to your own topics")
	}

	choices := make([]PollChoice, 0, len(np.Choices))
	for i, text := range np.Choices {
		choices = append(choices, PollChoice{Text: text, Order: i})
	}
	p, created, err := svc.repo.CreatePoll(Poll{
		TopicID:              topicID,
		Question:             np.Question,
		AllowMultipleChoices: np.AllowMultipleChoices,
		EndDate:              np.EndDate,
		IsActive:             true,
		CreatedAt:            time.Now().UTC(),
	}, choices)
	if err != nil {
		if errors.Cause(err) == ErrPollExists {
			return PollResults{}, core.NewConflictError(ErrPollExists.Error())
		}
		return PollResults{}, err
	}
	return svc.pollResults(p, created)
}

func (svc *service) GetPoll(topicID string) (PollResults, error) {
	p, choices, err := svc.repo.GetPollByTopic(topicID)
	if err != nil {
		return PollResults{}, err
	}
	return svc.pollResults(p, choices)
}

func (svc *service) pollResults(p Poll, choices []PollChoice) (PollResults, error) {
	votes, err := svc.repo.QueryVotesByPoll(p.ID)
	if err != nil {
		return PollResults{}, err
	}
	counts := make(map[string]int, len(choices))
	for _, v := range votes {
		counts[v.ChoiceID]++
	}
	res := PollResults{Poll: p, Choices: make([]ChoiceResult, 0, len(choices)), TotalVotes: len(votes)}
	for _, c := range choices {
		res.Choices = append(res.Choices, ChoiceResult{PollChoice: c, VoteCount: counts[c.ID]})
	}
	return res, nil
}

func (svc *service) Vote(actor user.User, topicID string, nv NewVote) (PollVote, error) {
	p, choices, err := svc.repo.GetPollByTopic(topicID)
	if err != nil {
		return PollVote{}, err
	}
	now := time.Now().UTC()
	if p.IsClosed(now) {
		return PollVote{}, core.NewConflictError("this poll is closed")
	}

	var choice *PollChoice
	for i := range choices {
		if choices[i].ID == nv.ChoiceID {
			choice = &choices[i]
			break
		}
	}
	if choice == nil {
		return PollVote{}, core.NewValidationError(nil,
			core.FieldError{Field: "choice_id", Error: "this choice does not belong to the poll"})
	}

	if !p.AllowMultipleChoices {
		votes, err := svc.repo.QueryVotesByPoll(p.ID)
		if err != nil {
			return PollVote{}, err
		}
		for _, v := range votes {
			if v.UserID == actor.ID {
				return PollVote{}, core.NewConflictError(ErrAlreadyVoted.Error())
			}
		}
	}

	v, err := svc.repo.CreateVote(PollVote{
		PollID:   p.ID,
		ChoiceID: choice.ID,
		UserID:   actor.ID,
		VotedAt:  now,
	})
	if errors.Cause(err) == ErrAlreadyVoted {
		return PollVote{}, core.NewConflictError(ErrAlreadyVoted.Error())
	}
	return v, err
}

func (svc *service) Subscribe(actor user.User, topicID string, ns NewSubscription) (Subscription, error) {
	if _, err := svc.repo.GetTopicByID(topicID); err != nil {
		return Subscription{}, err
	}
	receiveEmails := true
	if ns.ReceiveEmails != nil {
		receiveEmails = *ns.ReceiveEmails
	}
	sub, err := svc.repo.CreateSubscription(Subscription{
		UserID:        actor.ID,
		TopicID:       topicID,
		ReceiveEmails: receiveEmails,
		CreatedAt:     time.Now().UTC(),
	})
	if errors.Cause(err) == ErrAlreadySubscribed {
		return Subscription{}, core.NewConflictError(ErrAlreadySubscribed.Error())
	}
	return sub, err
}

func (svc *service) Unsubscribe(actor user.User, topicID string) error {
	return svc.repo.DeleteSubscription(actor.ID, topicID)
}

func (svc *service) ParentTopics(actor user.User) ([]Topic, error) {
	if !actor.IsParent() && !actor.IsStaff() {
		return nil, core.NewPermissionDeniedError("only parents can view the parent forum")
	}
	cat, err := svc.repo.GetCategoryByName(CategoryParentForum)
	if err != nil {
		if errors.Cause(err) == ErrCategoryNotFound {
			return []Topic{}, nil
		}
		return nil, err
	}
	return svc.repo.QueryTopics(TopicFilter{CategoryID: cat.ID})
}

func (svc *service) Announcements(actor user.User) ([]Topic, error) {
	if !actor.IsParent() && !actor.IsStaff() {
		return nil, core.NewPermissionDeniedError("only parents can view announcements")
	}
	cat, err := svc.repo.GetCategoryByName(CategoryAnnouncements)
	if err != nil {
		if errors.Cause(err) == ErrCategoryNotFound {
			return []Topic{}, nil
		}
		return nil, err
	}
	return svc.repo.QueryTopics(TopicFilter{CategoryID: cat.ID})
}
