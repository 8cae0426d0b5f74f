package messaging

import "github.com/esakris/techiekraft/core"

type (
	NewMessage struct {
		ReceiverID string `json:"receiver_id" validate:"required"`
		Subject    string `json:"subject"`
		Content    string `json:"content" validate:"required"`
	}

	NewConversation struct {
		Title          string   `json:"title"`
		ParticipantIDs []string `json:"participants" validate:"required,min=1,dive,required"`
	}

	NewGroupMessage struct {
		Content string `json:"content" validate:"required"`
	}

	NewAttachment struct {
		File     string `json:"file" validate:"required"`
		Filename string `json:"filename" validate:"required"`
		FileType string `json:"file_type" validate:"required"`
		Size     int64  `json:"size" validate:"min=0"`
	}
)

func (nm *NewMessage) Validate() error {
	nm.Subject = core.CleanString(nm.Subject)
	return core.Validate.Struct(nm)
}

func (nc *NewConversation) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	return core.Validate.Struct(nc)
}

func (ng *NewGroupMessage) Validate() error {
	return core.Validate.Struct(ng)
}

func (na *NewAttachment) Validate() error {
	na.Filename = core.CleanString(na.Filename)
	return core.Validate.Struct(na)
}
