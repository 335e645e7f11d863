package notify_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/secmon-lab/isogap/pkg/service/notify"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
	"github.com/slack-go/slack"
)

type mockPoster struct {
	channels []string
	err      error
}

func (m *mockPoster) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	m.channels = append(m.channels, channelID)
	return channelID, "1700000000.000100", m.err
}

func newNotification(level types.NotificationLevel) *model.Notification {
	return &model.Notification{
		Level:     level,
		Title:     "Assessment submitted",
		Message:   "Leadership assessment has been saved",
		Domain:    types.DomainLeadership,
		View:      types.ViewLeadershipReports,
		CreatedAt: time.Now(),
	}
}

func TestSlackNotifier(t *testing.T) {
	t.Run("posts success notifications", func(t *testing.T) {
		poster := &mockPoster{}
		n, err := notify.NewSlack("xoxb-test", "C0123", notify.WithMessagePoster(poster))
		gt.NoError(t, err).Required()

		gt.NoError(t, n.Notify(context.Background(), newNotification(types.NotificationSuccess))).Required()
		gt.Value(t, poster.channels).Equal([]string{"C0123"})
	})

	t.Run("skips other levels", func(t *testing.T) {
		poster := &mockPoster{}
		n, err := notify.NewSlack("xoxb-test", "C0123", notify.WithMessagePoster(poster))
		gt.NoError(t, err).Required()

		gt.NoError(t, n.Notify(context.Background(), newNotification(types.NotificationError))).Required()
		gt.NoError(t, n.Notify(context.Background(), newNotification(types.NotificationInfo))).Required()
		gt.Array(t, poster.channels).Length(0)
	})

	t.Run("wraps API errors", func(t *testing.T) {
		apiErr := goerr.New("channel_not_found")
		n, err := notify.NewSlack("xoxb-test", "C0123", notify.WithMessagePoster(&mockPoster{err: apiErr}))
		gt.NoError(t, err).Required()

		err = n.Notify(context.Background(), newNotification(types.NotificationSuccess))
		gt.Error(t, err).Is(apiErr)
	})

	t.Run("requires token and channel", func(t *testing.T) {
		_, err := notify.NewSlack("", "C0123")
		gt.Error(t, err)
		_, err = notify.NewSlack("xoxb-test", "")
		gt.Error(t, err)
	})
}

func TestSlackLink(t *testing.T) {
	n, err := notify.NewSlack("xoxb-test", "C0123",
		notify.WithMessagePoster(&mockPoster{}),
		notify.WithLink("https://isogap.example.com/", model.DefaultRouteTable()),
	)
	gt.NoError(t, err).Required()

	gt.Value(t, notify.Link(n, newNotification(types.NotificationSuccess))).
		Equal("https://isogap.example.com/leadership-reports")

	noView := newNotification(types.NotificationSuccess)
	noView.View = ""
	gt.Value(t, notify.Link(n, noView)).Equal("")
}

func TestLoggerNotifier(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	gt.NoError(t, notify.NewLogger().Notify(ctx, newNotification(types.NotificationSuccess))).Required()
	gt.String(t, buf.String()).Contains("Assessment submitted")
	gt.String(t, buf.String()).Contains("domain=leadership")
}

type failingNotifier struct{ err error }

func (f *failingNotifier) Notify(ctx context.Context, n *model.Notification) error {
	return f.err
}

func TestMultiNotifier(t *testing.T) {
	poster := &mockPoster{}
	s, err := notify.NewSlack("xoxb-test", "C0123", notify.WithMessagePoster(poster))
	gt.NoError(t, err).Required()

	failure := goerr.New("delivery failed")
	m := notify.Multi{&failingNotifier{err: failure}, s}

	err = m.Notify(context.Background(), newNotification(types.NotificationSuccess))
	gt.Error(t, err).Is(failure)
	gt.Array(t, poster.channels).Length(1)
}
