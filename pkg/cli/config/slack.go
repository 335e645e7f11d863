package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/service/notify"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken  string
	channelID string
	baseURL   string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for submission notifications)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("ISOGAP_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID that receives submission notifications",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("ISOGAP_SLACK_CHANNEL"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of the dashboard, used for links in notifications (e.g., https://your-domain.com)",
			Category:    "Slack",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("ISOGAP_BASE_URL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channelID),
		slog.String("base-url", x.baseURL),
	)
}

// IsConfigured reports whether both bot token and channel are set
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// Configure returns the notifier of the session. Notifications are always
// logged, and posted to Slack as well when it is configured.
func (x *Slack) Configure(ctx context.Context, routes *model.RouteTable) (interfaces.Notifier, error) {
	logger := notify.NewLogger()

	if x.botToken == "" && x.channelID == "" {
		logging.From(ctx).Info("Slack is not configured, notifications are logged only")
		return logger, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.New("both --slack-bot-token and --slack-channel are required for Slack notifications")
	}

	var opts []notify.SlackOption
	if x.baseURL != "" {
		opts = append(opts, notify.WithLink(x.baseURL, routes))
	}
	slackNotifier, err := notify.NewSlack(x.botToken, x.channelID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure Slack notifier")
	}

	logging.From(ctx).Info("Slack notification enabled", "channel", x.channelID)
	return notify.Multi{logger, slackNotifier}, nil
}
