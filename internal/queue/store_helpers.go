package queue

import (
	"database/sql"
	"errors"
	"time"
)

const videoColumns = "id, video_id, channel_id, channel_name, title, url, published_at, status, transcript_path, transcript_chars, error_message, final_summary, summary_method, primary_model, secondary_model, synthesis_model, fallback_used, fallback_strategy, processing_seconds, cost_estimate, token_usage_json, notified_at, created_at, updated_at"

func scanVideo(scanner interface{ Scan(dest ...any) error }) (*Video, error) {
	var (
		id                int64
		videoID           string
		channelID         sql.NullString
		channelName       sql.NullString
		title             sql.NullString
		url               sql.NullString
		publishedRaw      sql.NullString
		statusStr         string
		transcriptPath    sql.NullString
		transcriptChars   sql.NullInt64
		errorMessage      sql.NullString
		finalSummary      sql.NullString
		summaryMethod     sql.NullString
		primaryModel      sql.NullString
		secondaryModel    sql.NullString
		synthesisModel    sql.NullString
		fallbackUsed      sql.NullInt64
		fallbackStrategy  sql.NullString
		processingSeconds sql.NullFloat64
		costEstimate      sql.NullFloat64
		tokenUsage        sql.NullString
		notifiedRaw       sql.NullString
		createdRaw        sql.NullString
		updatedRaw        sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&videoID,
		&channelID,
		&channelName,
		&title,
		&url,
		&publishedRaw,
		&statusStr,
		&transcriptPath,
		&transcriptChars,
		&errorMessage,
		&finalSummary,
		&summaryMethod,
		&primaryModel,
		&secondaryModel,
		&synthesisModel,
		&fallbackUsed,
		&fallbackStrategy,
		&processingSeconds,
		&costEstimate,
		&tokenUsage,
		&notifiedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	video := &Video{
		ID:                id,
		VideoID:           videoID,
		ChannelID:         channelID.String,
		ChannelName:       channelName.String,
		Title:             title.String,
		URL:               url.String,
		Status:            Status(statusStr),
		TranscriptPath:    transcriptPath.String,
		TranscriptChars:   int(transcriptChars.Int64),
		ErrorMessage:      errorMessage.String,
		FinalSummary:      finalSummary.String,
		SummaryMethod:     summaryMethod.String,
		PrimaryModel:      primaryModel.String,
		SecondaryModel:    secondaryModel.String,
		SynthesisModel:    synthesisModel.String,
		FallbackStrategy:  fallbackStrategy.String,
		ProcessingSeconds: processingSeconds.Float64,
		CostEstimate:      costEstimate.Float64,
		TokenUsageJSON:    tokenUsage.String,
	}
	if fallbackUsed.Valid {
		video.FallbackUsed = fallbackUsed.Int64 != 0
	}

	if published, err := parseTimeString(publishedRaw.String); err == nil {
		video.PublishedAt = published
	}
	if notifiedRaw.Valid {
		if notified, err := parseTimeString(notifiedRaw.String); err == nil {
			video.NotifiedAt = &notified
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		video.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		video.UpdatedAt = updated
	}
	return video, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
