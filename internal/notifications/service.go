package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/mentionwatch/dashboard/internal/feed"
	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const digestMentionLimit = 10

// Service delivers digests and alerts to Teams and e-mail
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message card
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendReport sends a digest via every configured channel
func (s *Service) SendReport(report *models.Report) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.postToTeams(s.buildTeamsMessage(report)); err != nil {
			logrus.Errorf("Failed to send Teams digest: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent digest to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send digest e-mail: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent digest via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// SendAlert posts an urgent alert to Teams; other channels only log it
func (s *Service) SendAlert(alert *models.Alert) error {
	if s.config.TeamsWebhookURL == "" {
		logrus.Warnf("Alert not delivered, no Teams webhook configured: %s - %s", alert.Type, alert.Title)
		return nil
	}

	if err := s.postToTeams(s.buildAlertMessage(alert)); err != nil {
		return fmt.Errorf("failed to send alert %s: %w", alert.ID, err)
	}

	logrus.Infof("Sent %s alert: %s", alert.Type, alert.Title)
	return nil
}

func (s *Service) postToTeams(message *TeamsMessage) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func periodTitle(period string) string {
	switch period {
	case "daily":
		return "ежедневный"
	case "weekly":
		return "еженедельный"
	default:
		return period
	}
}

func sentimentCounts(report *models.Report) map[string]int {
	counts, _ := report.Summary["sentiment"].(map[string]int)
	return counts
}

func (s *Service) buildTeamsMessage(report *models.Report) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Упоминания: %s отчёт", periodTitle(report.Period)),
		Text:    fmt.Sprintf("Найдено упоминаний: %d", report.TotalMentions),
	}

	facts := []TeamsFact{
		{Name: "Всего упоминаний", Value: fmt.Sprintf("%d", report.TotalMentions)},
		{Name: "Сформирован", Value: report.GeneratedAt.Format("2006-01-02 15:04")},
	}
	counts := sentimentCounts(report)
	for _, sentiment := range models.Sentiments {
		facts = append(facts, TeamsFact{
			Name:  feed.FilterLabel(models.SentimentFilter(sentiment)),
			Value: fmt.Sprintf("%d", counts[string(sentiment)]),
		})
	}
	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Сводка",
		Facts:         facts,
		Markdown:      true,
	})

	if len(report.Mentions) > 0 {
		var lines []string
		for i, mention := range report.Mentions {
			if i >= 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("**%s** (%s): %s",
				mention.Author, feed.SentimentLabel(mention.Sentiment), truncate(mention.Content, 140)))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Последние упоминания",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) buildAlertMessage(alert *models.Alert) *TeamsMessage {
	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: "D13438",
		Title:      alert.Title,
		Text:       alert.Message,
	}

	if alert.Mention != nil {
		m := alert.Mention
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle:    m.Author,
			ActivitySubtitle: m.Timestamp,
			ActivityText:     truncate(m.Content, 400),
			Facts: []TeamsFact{
				{Name: "Охват", Value: fmt.Sprintf("%d", m.Engagement)},
				{Name: "Просмотры", Value: fmt.Sprintf("%d", m.Views)},
			},
		})
	}

	return message
}

func (s *Service) sendEmail(report *models.Report) error {
	subject := fmt.Sprintf("Упоминания: %s отчёт (%d)", periodTitle(report.Period), report.TotalMentions)

	htmlBody, err := buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

var emailTemplate = template.Must(template.New("email").Funcs(template.FuncMap{
	"label":    feed.SentimentLabel,
	"truncate": truncate,
	"limit": func(mentions []models.Mention) []models.Mention {
		if len(mentions) > digestMentionLimit {
			return mentions[:digestMentionLimit]
		}
		return mentions
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Отчёт по упоминаниям</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #b91c1c; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .mention { border-left: 4px solid #9ca3af; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .mention-meta { color: #666; font-size: 0.9em; }
        .positive { border-left-color: #22c55e; }
        .negative { border-left-color: #ef4444; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Отчёт по упоминаниям</h1>
        <p>Сформирован {{.GeneratedAt.Format "02.01.2006 15:04"}}</p>
    </div>

    <div class="summary">
        <p><strong>Всего упоминаний:</strong> {{.TotalMentions}}</p>
        {{with .Summary.sentiment}}
        <p><strong>Позитивные:</strong> {{index . "positive"}}</p>
        <p><strong>Нейтральные:</strong> {{index . "neutral"}}</p>
        <p><strong>Негативные:</strong> {{index . "negative"}}</p>
        {{end}}
    </div>

    {{range limit .Mentions}}
    <div class="mention {{.Sentiment}}">
        <div><strong>{{.Author}}</strong> · {{label .Sentiment}}</div>
        <div class="mention-meta">{{.Timestamp}} | охват {{.Engagement}} | просмотры {{.Views}}</div>
        <p>{{truncate .Content 200}}</p>
    </div>
    {{end}}

    <hr>
    <p><small>Отчёт сформирован автоматически.</small></p>
</body>
</html>
`))

func buildEmailHTML(report *models.Report) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildEmailText(report *models.Report) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Отчёт по упоминаниям (%s)\n", periodTitle(report.Period)))
	text.WriteString(fmt.Sprintf("Сформирован: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04")))

	text.WriteString("СВОДКА\n")
	text.WriteString("======\n")
	text.WriteString(fmt.Sprintf("Всего упоминаний: %d\n", report.TotalMentions))

	counts := sentimentCounts(report)
	for _, sentiment := range models.Sentiments {
		text.WriteString(fmt.Sprintf("%s: %d\n", feed.FilterLabel(models.SentimentFilter(sentiment)), counts[string(sentiment)]))
	}

	if authors, ok := report.Summary["top_authors"].([]string); ok && len(authors) > 0 {
		text.WriteString(fmt.Sprintf("Активные авторы: %s\n", strings.Join(authors, ", ")))
	}

	if len(report.Mentions) > 0 {
		text.WriteString("\nПОСЛЕДНИЕ УПОМИНАНИЯ\n")
		text.WriteString("====================\n")

		for i, mention := range report.Mentions {
			if i >= digestMentionLimit {
				break
			}
			text.WriteString(fmt.Sprintf("\n%d. %s (%s)\n", i+1, mention.Author, feed.SentimentLabel(mention.Sentiment)))
			text.WriteString(fmt.Sprintf("   %s | охват %d | просмотры %d\n", mention.Timestamp, mention.Engagement, mention.Views))
			text.WriteString(fmt.Sprintf("   %s\n", truncate(mention.Content, 200)))
		}
	}

	text.WriteString("\n---\nОтчёт сформирован автоматически.\n")
	return text.String()
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
