package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kvistberg/studyleague/internal/awards"
	"github.com/kvistberg/studyleague/internal/metrics"
	"github.com/kvistberg/studyleague/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendRolloverDigest posts the weekly rollover summary to the announcement channel.
func (s *Notifier) SendRolloverDigest(digest *notifier.RolloverDigest, dryRun bool) error {
	msg := s.formatRolloverDigest(digest)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) formatRolloverDigest(digest *notifier.RolloverDigest) slack.Message {
	weekStart := digest.Week.Start.Format("Jan 2")
	weekEnd := digest.Week.End.Add(-time.Second).Format("Jan 2")

	headerText := slack.NewTextBlockObject(slack.PlainTextType, fmt.Sprintf("🏆 League results: %s – %s", weekStart, weekEnd), true, false)
	headerBlock := slack.NewHeaderBlock(headerText)

	summary := fmt.Sprintf("*%d* leagues closed · *%d* promoted ⬆️ · *%d* demoted ⬇️", digest.Processed, digest.Promoted, digest.Demoted)
	if digest.Failed > 0 {
		summary += fmt.Sprintf(" · *%d* failed ⚠️", digest.Failed)
	}
	summaryBlock := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, summary, false, false), nil, nil)

	blocks := []slack.Block{headerBlock, summaryBlock}

	if len(digest.Awards) > 0 {
		var sb strings.Builder
		sb.WriteString("*Weekly awards*\n")
		for _, a := range digest.Awards {
			name := digest.Names[a.StudentID]
			if name == "" {
				name = a.StudentID
			}
			sb.WriteString(fmt.Sprintf("%s *%s* — %s (%s)\n", awardEmoji(a.Type), awardTitle(a.Type), name, a.Value))
		}
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, sb.String(), false, false), nil, nil),
		)
	}

	return slack.NewBlockMessage(blocks...)
}

func awardTitle(t awards.Type) string {
	switch t {
	case awards.MostImproved:
		return "Most Improved"
	case awards.SpeedDemon:
		return "Speed Demon"
	case awards.AccuracyKing:
		return "Accuracy King"
	case awards.Explorer:
		return "Explorer"
	default:
		return string(t)
	}
}

func awardEmoji(t awards.Type) string {
	switch t {
	case awards.MostImproved:
		return "📈"
	case awards.SpeedDemon:
		return "⚡"
	case awards.AccuracyKing:
		return "🎯"
	case awards.Explorer:
		return "🧭"
	default:
		return "🏅"
	}
}
