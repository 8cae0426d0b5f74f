package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/esakris/techiekraft/core/forum"
	"github.com/esakris/techiekraft/core/user"
)

type forumApi struct {
	svc     forum.Service
	userSvc user.Service
}

func registerForumAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc forum.Service, userSvc user.Service) {
	api := forumApi{svc: svc, userSvc: userSvc}

	fg := g.Group("/forum", jwt)
	fg.GET("/categories", api.categories)
	fg.POST("/categories", api.createCategory, staffMiddleware())

	fg.GET("/topics", api.topics)
	fg.POST("/topics", api.createTopic)
	fg.GET("/topics/:id", api.retrieveTopic)
	fg.PUT("/topics/:id", api.updateTopic)
	fg.DELETE("/topics/:id", api.destroyTopic)
	fg.GET("/topics/:id/posts", api.posts)
	fg.POST("/topics/:id/posts", api.createPost)
	fg.POST("/topics/:id/subscribe", api.subscribe)
	fg.DELETE("/topics/:id/subscribe", api.unsubscribe)

	fg.GET("/topics/:id/poll", api.retrievePoll)
	fg.POST("/topics/:id/poll", api.createPoll)
	fg.POST("/topics/:id/poll/votes", api.vote)

	fg.PUT("/posts/:id", api.updatePost)
	fg.DELETE("/posts/:id", api.destroyPost)
	fg.GET("/posts/:id/attachments", api.attachments)
	fg.POST("/posts/:id/attachments", api.addAttachment)
	fg.GET("/posts/:id/reactions", api.reactions)
	fg.POST("/posts/:id/reactions", api.react)
	fg.DELETE("/posts/:id/reactions/:type", api.unreact)

	fg.GET("/parent-topics", api.parentTopics)
	fg.GET("/announcements", api.announcements)
}

func (api *forumApi) categories(ctx echo.Context) error {
	categories, err := api.svc.Categories()
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if categories == nil {
		categories = []forum.Category{}
	}
	return ctx.JSON(http.StatusOK, categories)
}

func (api *forumApi) createCategory(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *forumApi) topics(ctx echo.Context) error {
	filter := new(forum.TopicFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []forum.Topic{})
	}

	topics, err := api.svc.Topics(*filter)
	if err != nil {
		return errors.Wrap(err, "querying topics")
	}
	if topics == nil {
		topics = []forum.Topic{}
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *forumApi) retrieveTopic(ctx echo.Context) error {
	topic, err := api.svc.GetTopic(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding topic")
	}
	return ctx.JSON(http.StatusOK, topic)
}

func (api *forumApi) createTopic(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	topic, err := api.svc.CreateTopic(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating topic")
	}
	return ctx.JSON(http.StatusCreated, topic)
}

func (api *forumApi) updateTopic(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.UpdateTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTopic")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	topic, err := api.svc.UpdateTopic(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating topic")
	}
	return ctx.JSON(http.StatusOK, topic)
}

func (api *forumApi) destroyTopic(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteTopic(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *forumApi) posts(ctx echo.Context) error {
	posts, err := api.svc.Posts(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	if posts == nil {
		posts = []forum.Post{}
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *forumApi) createPost(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	post, err := api.svc.CreatePost(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *forumApi) updatePost(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	post, err := api.svc.UpdatePost(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating post")
	}
	return ctx.JSON(http.StatusOK, post)
}

func (api *forumApi) destroyPost(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeletePost(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *forumApi) attachments(ctx echo.Context) error {
	attachments, err := api.svc.Attachments(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attachments")
	}
	if attachments == nil {
		attachments = []forum.Attachment{}
	}
	return ctx.JSON(http.StatusOK, attachments)
}

func (api *forumApi) addAttachment(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewAttachment
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

func (api *forumApi) subscribe(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewSubscription
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubscription")
	}

	sub, err := api.svc.Subscribe(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "subscribing")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *forumApi) unsubscribe(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.Unsubscribe(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "unsubscribing")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *forumApi) reactions(ctx echo.Context) error {
	reactions, err := api.svc.Reactions(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying reactions")
	}
	if reactions == nil {
		reactions = []forum.Reaction{}
	}
	return ctx.JSON(http.StatusOK, reactions)
}

func (api *forumApi) react(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewReaction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReaction")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	r, err := api.svc.React(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "reacting to post")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *forumApi) unreact(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.Unreact(actor, ctx.Param("id"), ctx.Param("type")); err != nil {
		return errors.Wrap(err, "removing reaction")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *forumApi) retrievePoll(ctx echo.Context) error {
	poll, err := api.svc.GetPoll(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting poll")
	}
	return ctx.JSON(http.StatusOK, poll)
}

func (api *forumApi) createPoll(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewPoll
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPoll")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	poll, err := api.svc.CreatePoll(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating poll")
	}
	return ctx.JSON(http.StatusCreated, poll)
}

func (api *forumApi) vote(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewVote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVote")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	v, err := api.svc.Vote(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "voting")
	}
	return ctx.JSON(http.StatusCreated, v)
}

func (api *forumApi) parentTopics(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	topics, err := api.svc.ParentTopics(actor)
	if err != nil {
		return errors.Wrap(err, "querying parent topics")
	}
	if topics == nil {
		topics = []forum.Topic{}
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *forumApi) announcements(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	topics, err := api.svc.Announcements(actor)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if topics == nil {
		topics = []forum.Topic{}
	}
	return ctx.JSON(http.StatusOK, topics)
}
