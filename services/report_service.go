package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlazarStudio/lfl-live/live"
	"github.com/AlazarStudio/lfl-live/models"
	"github.com/AlazarStudio/lfl-live/storage"
)

// MatchReport — послематчевый отчёт, публикуемый в объектное хранилище
// после перевода матча в FINISHED.
type MatchReport struct {
	MatchID    int                   `json:"match_id"`
	Team1ID    int                   `json:"team1_id"`
	Team2ID    int                   `json:"team2_id"`
	Score      live.Score            `json:"score"`
	Events     []models.Event        `json:"events"`
	Ranking    []live.PlayerStanding `json:"mvp_ranking"`
	MVP        *live.PlayerStanding  `json:"mvp,omitempty"`
	FinishedAt time.Time             `json:"finished_at"`
}

// ReportPublisher публикует отчёт и возвращает его публичный URL.
type ReportPublisher interface {
	PublishMatchReport(ctx context.Context, report MatchReport) (string, error)
}

type reportService struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewReportService(uploader storage.FileUploader, logger *slog.Logger) ReportPublisher {
	return &reportService{uploader: uploader, logger: logger}
}

func (s *reportService) PublishMatchReport(ctx context.Context, report MatchReport) (string, error) {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal match report: %w", err)
	}

	key := fmt.Sprintf("reports/match-%d.json", report.MatchID)
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to publish match report: %w", err)
	}

	s.logger.Info("match report published",
		slog.Int("match_id", report.MatchID),
		slog.String("key", result.Key),
		slog.String("location", result.Location),
	)
	return result.Location, nil
}
