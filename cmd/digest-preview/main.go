package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/mentionwatch/dashboard/internal/feed"
	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/mentionwatch/dashboard/internal/monitoring"
	"github.com/mentionwatch/dashboard/internal/storage"
	"github.com/sirupsen/logrus"
)

// consoleNotifier prints digests to the terminal and saves them as JSON
type consoleNotifier struct {
	outputDir string
}

func (c *consoleNotifier) SendReport(report *models.Report) error {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("ОТЧЁТ ПО УПОМИНАНИЯМ")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Период: %s\n", report.Period)
	fmt.Printf("Сформирован: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Всего упоминаний: %d\n", report.TotalMentions)

	if platforms, ok := report.Summary["platforms"].(map[string]int); ok {
		fmt.Println("\nПлатформы:")
		for platform, count := range platforms {
			fmt.Printf("   • %-15s %d\n", platform+":", count)
		}
	}

	if counts, ok := report.Summary["sentiment"].(map[string]int); ok {
		fmt.Println("\nТональность:")
		for _, sentiment := range models.Sentiments {
			fmt.Printf("   %-12s %d\n", feed.FilterLabel(models.SentimentFilter(sentiment))+":", counts[string(sentiment)])
		}
	}

	if authors, ok := report.Summary["top_authors"].([]string); ok && len(authors) > 0 {
		fmt.Printf("\nАктивные авторы: %s\n", strings.Join(authors, ", "))
	}

	fmt.Println("\nПоследние упоминания:")
	for i, mention := range report.Mentions {
		if i >= 5 {
			fmt.Printf("   ... и ещё %d\n", len(report.Mentions)-5)
			break
		}
		fmt.Printf("\n   %d. %s [%s]\n", i+1, mention.Author, feed.SentimentLabel(mention.Sentiment))
		fmt.Printf("      %s\n", mention.Content)
		fmt.Printf("      %s | охват %d | просмотры %d\n", mention.Timestamp, mention.Engagement, mention.Views)
		if mention.URL != "" {
			fmt.Printf("      %s\n", mention.URL)
		}
	}

	if err := c.saveReportToFile(report); err != nil {
		fmt.Printf("\nWarning: could not save report: %v\n", err)
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	return nil
}

func (c *consoleNotifier) SendAlert(alert *models.Alert) error {
	fmt.Printf("\nALERT [%s] %s\n%s\n", alert.Type, alert.Title, alert.Message)
	return nil
}

func (c *consoleNotifier) saveReportToFile(report *models.Report) error {
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return err
	}

	filename := filepath.Join(c.outputDir, fmt.Sprintf("mentions_report_%s.json", report.GeneratedAt.Format("2006-01-02_15-04-05")))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}

	fmt.Printf("\nReport saved to: %s\n", filename)
	return nil
}

func main() {
	outputDir := flag.String("out", "digest_output", "directory for the JSON report")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logrus.SetLevel(logrus.WarnLevel)

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	notifier := &consoleNotifier{outputDir: *outputDir}
	service := monitoring.NewService(cfg, store, notifier)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := service.Refresh(ctx); err != nil {
		log.Fatalf("Refresh failed: %v", err)
	}

	report := service.GenerateReport(service.Mentions())
	if err := notifier.SendReport(report); err != nil {
		log.Fatalf("Failed to print report: %v", err)
	}
}
