package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/slack-go/slack"
)

// MessagePoster is the part of the Slack API the notifier uses
type MessagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Slack posts success notifications to a channel. Other levels are left to
// the client toast.
type Slack struct {
	api       MessagePoster
	channelID string
	baseURL   string
	routes    *model.RouteTable
}

var _ interfaces.Notifier = &Slack{}

type SlackOption func(*Slack)

// WithMessagePoster replaces the Slack API client
func WithMessagePoster(api MessagePoster) SlackOption {
	return func(s *Slack) {
		s.api = api
	}
}

// WithLink adds a link to the view named by the notification, resolved
// through routes against baseURL
func WithLink(baseURL string, routes *model.RouteTable) SlackOption {
	return func(s *Slack) {
		s.baseURL = strings.TrimRight(baseURL, "/")
		s.routes = routes
	}
}

func NewSlack(token, channelID string, opts ...SlackOption) (*Slack, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel is required")
	}

	s := &Slack{
		api:       slack.New(token),
		channelID: channelID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Slack) Notify(ctx context.Context, n *model.Notification) error {
	if n.Level != types.NotificationSuccess {
		return nil
	}

	blocks := buildNotificationBlocks(n, s.link(n))
	if _, _, err := s.api.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(n.Title+": "+n.Message, false),
	); err != nil {
		return goerr.Wrap(err, "failed to post notification to Slack",
			goerr.V("channel_id", s.channelID),
			goerr.V(model.DomainIDKey, n.Domain))
	}
	return nil
}

func (s *Slack) link(n *model.Notification) string {
	if s.baseURL == "" || s.routes == nil || n.View == "" {
		return ""
	}
	loc, ok := s.routes.LocationOf(n.View)
	if !ok {
		return ""
	}
	return s.baseURL + loc
}

func buildNotificationBlocks(n *model.Notification, link string) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, ":white_check_mark: "+n.Title, true, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, n.Message, false, false),
			nil, nil,
		),
	}

	if n.Domain != "" {
		contextText := fmt.Sprintf("Domain: %s", n.Domain)
		if link != "" {
			contextText += fmt.Sprintf("  |  :link: <%s|Open>", link)
		}
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, contextText, false, false),
		))
	}
	return blocks
}
