package forum

import (
	"time"

	"github.com/esakris/techiekraft/core"
)

type (
	NewCategory struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		IconClass   string `json:"icon_class"`
		Order       int    `json:"order" validate:"min=0"`
	}

	NewTopic struct {
		CategoryID string `json:"category_id" validate:"required"`
		Title      string `json:"title" validate:"required"`
		Content    string `json:"content" validate:"required"`
	}

	UpdateTopic struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		IsPinned *bool  `json:"is_pinned"`
		IsLocked *bool  `json:"is_locked"`
	}

	NewPost struct {
		Content string `json:"content" validate:"required"`
	}

	NewAttachment struct {
		File     string `json:"file" validate:"required"`
		Filename string `json:"filename" validate:"required"`
		FileType string `json:"file_type" validate:"required"`
		Size     int64  `json:"size" validate:"min=0"`
	}

	NewSubscription struct {
		ReceiveEmails *bool `json:"receive_emails"`
	}

	NewReaction struct {
		ReactionType string `json:"reaction_type" validate:"required,oneof=upvote helpful like thanks insightful"`
	}

	NewPoll struct {
		Question             string     `json:"question" validate:"required"`
		AllowMultipleChoices bool       `json:"allow_multiple_choices"`
		EndDate              *time.Time `json:"end_date"`
		Choices              []string   `json:"choices" validate:"required,min=2,dive,required"`
	}

	NewVote struct {
		ChoiceID string `json:"choice_id" validate:"required"`
	}
)

func (nc *NewCategory) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

func (nt *NewTopic) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	return core.Validate.Struct(nt)
}

func (ut *UpdateTopic) Validate() error {
	ut.Title = core.CleanString(ut.Title)
	return core.Validate.Struct(ut)
}

func (np *NewPost) Validate() error {
	return core.Validate.Struct(np)
}

func (na *NewAttachment) Validate() error {
	na.Filename = core.CleanString(na.Filename)
	return core.Validate.Struct(na)
}

func (nr *NewReaction) Validate() error {
	return core.Validate.Struct(nr)
}

func (np *NewPoll) Validate() error {
	np.Question = core.CleanString(np.Question)
	for i, choice := range np.Choices {
		np.Choices[i] = core.CleanString(choice)
	}
	return core.Validate.Struct(np)
}

func (nv *NewVote) Validate() error {
	return core.Validate.Struct(nv)
}
