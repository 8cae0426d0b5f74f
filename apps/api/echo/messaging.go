package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core/messaging"
	"github.com/esakris/techiekraft/core/user"
)

type messagingApi struct {
	svc     messaging.Service
	userSvc user.Service
}

func registerMessagingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc messaging.Service, userSvc user.Service) {
	api := messagingApi{svc: svc, userSvc: userSvc}

	mg := g.Group("/messages", jwt)
	mg.GET("", api.inbox)
	mg.POST("", api.send)
	mg.GET("/sent", api.sent)
	mg.GET("/unread-count", api.unreadCount)
	mg.GET("/:id", api.retrieve)
	mg.POST("/:id/read", api.markRead)
	mg.GET("/:id/attachments", api.attachments)
	mg.POST("/:id/attachments", api.addAttachment)

	cg := g.Group("/conversations", jwt)
	cg.GET("", api.conversations)
	cg.POST("", api.startConversation)
	cg.GET("/:id/messages", api.groupMessages)
	cg.POST("/:id/messages", api.sendGroupMessage)

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.notifications)
	ng.POST("/:id/read", api.markNotificationRead)
}

// direct messages

func (api *messagingApi) inbox(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(messaging.MessageFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []messaging.Message{})
	}

	msgs, err := api.svc.Inbox(actor, *filter)
	if err != nil {
		return errors.Wrap(err, "querying inbox")
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messagingApi) send(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data messaging.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	msg, err := api.svc.Send(actor, data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messagingApi) sent(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	msgs, err := api.svc.Sent(actor)
	if err != nil {
		return errors.Wrap(err, "querying sent messages")
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messagingApi) unreadCount(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	count, err := api.svc.UnreadCount(actor)
	if err != nil {
		return errors.Wrap(err, "counting unread messages")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"unread": count})
}

func (api *messagingApi) retrieve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	msg, err := api.svc.Get(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding message")
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *messagingApi) markRead(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	msg, err := api.svc.MarkRead(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "marking message read")
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *messagingApi) attachments(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	attachments, err := api.svc.Attachments(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attachments")
	}
	if attachments == nil {
		attachments = []messaging.Attachment{}
	}
	return ctx.JSON(http.StatusOK, attachments)
}

func (api *messagingApi) addAttachment(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data messaging.NewAttachment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttachment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	att, err := api.svc.AddAttachment(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding attachment")
	}
	return ctx.JSON(http.StatusCreated, att)
}

// conversations

func (api *messagingApi) conversations(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	convs, err := api.svc.Conversations(actor)
	if err != nil {
		return errors.Wrap(err, "querying conversations")
	}
	if convs == nil {
		convs = []messaging.Conversation{}
	}
	return ctx.JSON(http.StatusOK, convs)
}

func (api *messagingApi) startConversation(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data messaging.NewConversation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewConversation")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	conv, err := api.svc.StartConversation(actor, data)
	if err != nil {
		return errors.Wrap(err, "starting conversation")
	}
	return ctx.JSON(http.StatusCreated, conv)
}

func (api *messagingApi) groupMessages(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	msgs, err := api.svc.GroupMessages(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying group messages")
	}
	if msgs == nil {
		msgs = []messaging.GroupMessage{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messagingApi) sendGroupMessage(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data messaging.NewGroupMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroupMessage")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	msg, err := api.svc.SendGroupMessage(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "sending group message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

// notifications

func (api *messagingApi) notifications(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	unreadOnly, _ := strconv.ParseBool(ctx.QueryParam("unread"))
	notifs, err := api.svc.Notifications(actor, unreadOnly)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []messaging.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *messagingApi) markNotificationRead(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	notif, err := api.svc.MarkNotificationRead(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, notif)
}
