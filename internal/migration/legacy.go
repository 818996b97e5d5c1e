/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package migration imports data from the legacy PostgreSQL deployment.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborlight/portkiosk/internal/models"
)

// Stats counts what an import run touched.
type Stats struct {
	Users       int `json:"users"`
	Schedules   int `json:"schedules"`
	MediaItems  int `json:"mediaItems"`
	Settings    int `json:"settings"`
	Advertisers int `json:"advertisers"`
	Campaigns   int `json:"campaigns"`
	AdMedia     int `json:"adMedia"`
	AdSchedules int `json:"adSchedules"`
	Impressions int `json:"impressions"`
	Errors      int `json:"errors"`
}

// Options controls an import run.
type Options struct {
	DryRun          bool
	SkipImpressions bool
}

// LegacyImporter copies rows from the old serial-keyed schema into the
// current one, generating fresh UUIDs and keeping a serial-to-UUID map so
// foreign keys survive the trip.
type LegacyImporter struct {
	db      *gorm.DB
	logger  zerolog.Logger
	options Options
	stats   Stats

	advertiserIDs map[int64]string
	campaignIDs   map[int64]string
	adMediaIDs    map[int64]string
}

func NewLegacyImporter(db *gorm.DB, logger zerolog.Logger, options Options) *LegacyImporter {
	return &LegacyImporter{
		db:          db,
		logger:      logger.With().Str("component", "legacy_importer").Logger(),
		options:       options,
		advertiserIDs: make(map[int64]string),
		campaignIDs:   make(map[int64]string),
		adMediaIDs:    make(map[int64]string),
	}
}

// Import reads the legacy database at dsn and writes everything into the
// current schema. Impressions are large and optional.
func (i *LegacyImporter) Import(ctx context.Context, dsn string) (*Stats, error) {
	i.logger.Info().
		Str("dsn", maskDSN(dsn)).
		Bool("dry_run", i.options.DryRun).
		Msg("starting legacy import")

	legacy, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to legacy db: %w", err)
	}
	defer legacy.Close()

	if err := legacy.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping legacy db: %w", err)
	}

	steps := []struct {
		name string
		fn   func(context.Context, *sql.DB) error
	}{
		{"users", i.importUsers},
		{"schedules", i.importSchedules},
		{"media playlist", i.importMediaPlaylist},
		{"settings", i.importSettings},
		{"advertisers", i.importAdvertisers},
		{"campaigns", i.importCampaigns},
		{"ad media", i.importAdMedia},
		{"ad schedules", i.importAdSchedules},
	}
	for _, step := range steps {
		if err := step.fn(ctx, legacy); err != nil {
			return nil, fmt.Errorf("import %s: %w", step.name, err)
		}
	}

	if !i.options.SkipImpressions {
		if err := i.importImpressions(ctx, legacy); err != nil {
			i.logger.Warn().Err(err).Msg("impression import failed, continuing")
			i.stats.Errors++
		}
	}

	i.logger.Info().Interface("stats", i.stats).Msg("legacy import completed")
	return &i.stats, nil
}

func (i *LegacyImporter) importUsers(ctx context.Context, legacy *sql.DB) error {
	rows, err := legacy.QueryContext(ctx, `
		SELECT username, password_hash, role
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var username, passwordHash, role string
		if err := rows.Scan(&username, &passwordHash, &role); err != nil {
			return fmt.Errorf("scan user: %w", err)
		}

		// The old system keyed accounts by username, not email.
		email := username
		if !strings.Contains(email, "@") {
			email = username + "@localhost"
		}
		user := models.NewUser(email, passwordHash, username, role)
		if err := i.create(ctx, user); err != nil {
			return err
		}
		i.stats.Users++
	}
	return rows.Err()
}

func (i *LegacyImporter) importSchedules(ctx context.Context, legacy *sql.DB) error {
	rows, err := legacy.QueryContext(ctx, `
		SELECT days, departure_time::text, arrival_time::text, time_display,
		       vessel, destination, status
		FROM schedules
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	order := 0
	for rows.Next() {
		var days, departure, arrival, timeDisplay, vessel, destination, status string
		if err := rows.Scan(&days, &departure, &arrival, &timeDisplay, &vessel, &destination, &status); err != nil {
			return fmt.Errorf("scan schedule: %w", err)
		}

		sched := models.NewSchedule(destination, vessel, clockHHMM(departure), clockHHMM(arrival), parsePGTextArray(days))
		sched.TimeDisplay = timeDisplay
		sched.Status = status
		sched.SortOrder = order
		order++
		if err := i.create(ctx, sched); err != nil {
			return err
		}
		i.stats.Schedules++
	}
	return rows.Err()
}

func (i *LegacyImporter) importMediaPlaylist(ctx context.Context, legacy *sql.DB) error {
	rows, err := legacy.QueryContext(ctx, `
		SELECT title, source, type, order_index
		FROM media_playlist
		ORDER BY order_index, id
	`)
	if err != nil {
		return fmt.Errorf("query media playlist: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var title, source, mediaType string
		var orderIndex int
		if err := rows.Scan(&title, &source, &mediaType, &orderIndex); err != nil {
			return fmt.Errorf("scan media item: %w", err)
		}

		item := models.NewMediaItem(title, normalizeMediaType(mediaType, source), source, 0)
		item.SortOrder = orderIndex
		if err := i.create(ctx, item); err != nil {
			return err
		}
		i.stats.MediaItems++
	}
	return rows.Err()
}

func (i *LegacyImporter) importSettings(ctx context.Context, legacy *sql.DB) error {
	rows, err := legacy.QueryContext(ctx, `
		SELECT setting_key, COALESCE(setting_value, '')
		FROM system_settings
	`)
	if err != nil {
		return fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan setting: %w", err)
		}
		setting := models.NewSystemSetting(key, value)
		if err := i.create(ctx, setting); err != nil {
			return err
		}
		i.stats.Settings++
	}
	return rows.Err()
}

func (i *LegacyImporter) importAdvertisers(ctx context.Context, legacy *sql.DB) error {
	rows, err := legacy.QueryContext(ctx, `
		SELECT id, company_name, COALESCE(contact_name, ''), email, COALESCE(phone, ''), status
		FROM advertisers
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("query advertisers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var legacyID int64
		var company, contact, email, phone, status string
		if err := rows.Scan(&legacyID, &company, &contact, &email, &phone, &status); err != nil {
			return fmt.Errorf("scan advertiser: %w", err)
		}

		adv := models.NewAdvertiser(company, contact, email)
		adv.Phone = phone
		adv.Company = company
		adv.Status = status
		i.advertiserIDs[legacyID] = adv.ID
		if err := i.create(ctx, adv); err != nil {
			return err
		}
		i.stats.Advertisers++
	}
	return rows.Err()
}

func (i *LegacyImporter) importCampaigns(ctx context.Context, legacy *sql.DB) error {
	rows, err := legacy.QueryContext(ctx, `
		SELECT id, advertiser_id, name, COALESCE(description, ''), status,
		       start_date, end_date, daily_rate, COALESCE(monthly_rate, 0),
		       COALESCE(billing_period, 'daily'), COALESCE(total_cost, 0),
		       COALESCE(priority, 0), COALESCE(frequency_type, 'interval'),
		       COALESCE(frequency_value, 0), COALESCE(display_type, 'mixed'),
		       COALESCE(interstitial_interval, 0)
		FROM ad_campaigns
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var legacyID, advertiserID int64
		var name, description, status, billing, freqType, displayType string
		var start, end time.Time
		var dailyRate, monthlyRate, totalCost float64
		var priority, freqValue, interstitialInterval int
		if err := rows.Scan(&legacyID, &advertiserID, &name, &description, &status,
			&start, &end, &dailyRate, &monthlyRate, &billing, &totalCost,
			&priority, &freqType, &freqValue, &displayType, &interstitialInterval); err != nil {
			return fmt.Errorf("scan campaign: %w", err)
		}

		newAdvertiserID, ok := i.advertiserIDs[advertiserID]
		if !ok {
			i.logger.Warn().Int64("legacy_campaign", legacyID).Msg("campaign references unknown advertiser, skipping")
			i.stats.Errors++
			continue
		}

		campaign := models.NewAdCampaign(newAdvertiserID, name, start, end)
		campaign.Status = status
		campaign.Description = description
		campaign.DisplayType = displayType
		campaign.FrequencyType = freqType
		campaign.FrequencyValue = freqValue
		campaign.InterstitialInterval = interstitialInterval
		campaign.Priority = priority
		campaign.DailyRate = dailyRate
		campaign.MonthlyRate = monthlyRate
		campaign.BillingType = billing
		campaign.TotalCost = totalCost
		i.campaignIDs[legacyID] = campaign.ID
		if err := i.create(ctx, campaign); err != nil {
			return err
		}
		i.stats.Campaigns++
	}
	return rows.Err()
}

func (i *LegacyImporter) importAdMedia(ctx context.Context, legacy *sql.DB) error {
	rows, err := legacy.QueryContext(ctx, `
		SELECT id, campaign_id, title, source, COALESCE(type, 'url'),
		       COALESCE(duration, 0), COALESCE(order_index, 0)
		FROM ad_media
		ORDER BY campaign_id, order_index, id
	`)
	if err != nil {
		return fmt.Errorf("query ad media: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var legacyID, campaignID int64
		var title, source, mediaType string
		var duration, orderIndex int
		if err := rows.Scan(&legacyID, &campaignID, &title, &source, &mediaType, &duration, &orderIndex); err != nil {
			return fmt.Errorf("scan ad media: %w", err)
		}

		newCampaignID, ok := i.campaignIDs[campaignID]
		if !ok {
			i.stats.Errors++
			continue
		}

		m := models.NewAdMedia(newCampaignID, title, normalizeMediaType(mediaType, source), source, duration)
		m.SortOrder = orderIndex
		i.adMediaIDs[legacyID] = m.ID
		if err := i.create(ctx, m); err != nil {
			return err
		}
		i.stats.AdMedia++
	}
	return rows.Err()
}

func (i *LegacyImporter) importAdSchedules(ctx context.Context, legacy *sql.DB) error {
	rows, err := legacy.QueryContext(ctx, `
		SELECT campaign_id, day_of_week, start_time, end_time, COALESCE(is_active, true)
		FROM ad_schedules
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("query ad schedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var campaignID int64
		var dayName, startTime, endTime sql.NullString
		var active bool
		if err := rows.Scan(&campaignID, &dayName, &startTime, &endTime, &active); err != nil {
			return fmt.Errorf("scan ad schedule: %w", err)
		}

		newCampaignID, ok := i.campaignIDs[campaignID]
		if !ok {
			i.stats.Errors++
			continue
		}

		sched := models.NewAdSchedule(newCampaignID)
		sched.Active = active
		sched.DayOfWeek = weekdayNumber(dayName)
		sched.StartMinutes = clockMinutes(startTime)
		sched.EndMinutes = clockMinutes(endTime)
		if err := i.create(ctx, sched); err != nil {
			return err
		}
		i.stats.AdSchedules++
	}
	return rows.Err()
}

func (i *LegacyImporter) importImpressions(ctx context.Context, legacy *sql.DB) error {
	rows, err := legacy.QueryContext(ctx, `
		SELECT campaign_id, ad_media_id, COALESCE(kiosk_id, 'default'),
		       impression_time, COALESCE(play_duration, 0),
		       COALESCE(completed, false), COALESCE(skipped, false)
		FROM ad_impressions
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("query impressions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var campaignID int64
		var mediaID sql.NullInt64
		var kioskID string
		var playedAt time.Time
		var duration int
		var completed, skipped bool
		if err := rows.Scan(&campaignID, &mediaID, &kioskID, &playedAt, &duration, &completed, &skipped); err != nil {
			return fmt.Errorf("scan impression: %w", err)
		}

		newCampaignID, ok := i.campaignIDs[campaignID]
		if !ok {
			i.stats.Errors++
			continue
		}
		newMediaID := ""
		if mediaID.Valid {
			newMediaID = i.adMediaIDs[mediaID.Int64]
		}

		imp := models.NewAdImpression(newCampaignID, newMediaID, kioskID, playedAt)
		imp.Duration = duration
		imp.Completed = completed
		imp.Skipped = skipped
		if err := i.create(ctx, imp); err != nil {
			return err
		}
		i.stats.Impressions++
	}
	return rows.Err()
}

func (i *LegacyImporter) create(ctx context.Context, value any) error {
	if i.options.DryRun {
		return nil
	}
	if err := i.db.WithContext(ctx).Create(value).Error; err != nil {
		return fmt.Errorf("create %T: %w", value, err)
	}
	return nil
}

// parsePGTextArray decodes a text[] literal like {Monday,Tuesday} as scanned
// into a string. Day names never contain quotes or commas so a simple split
// is enough.
func parsePGTextArray(raw string) []string {
	raw = strings.Trim(raw, "{}")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for n, p := range parts {
		parts[n] = strings.Trim(strings.TrimSpace(p), `"`)
	}
	return parts
}

// normalizeMediaType maps the legacy free-form type column onto video/image.
func normalizeMediaType(legacyType, source string) string {
	switch strings.ToLower(legacyType) {
	case "video", "image":
		return strings.ToLower(legacyType)
	}
	lower := strings.ToLower(source)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"} {
		if strings.HasSuffix(lower, ext) {
			return "image"
		}
	}
	return "video"
}

// weekdayNumber maps a legacy day name ("Monday") onto time.Weekday numbering.
func weekdayNumber(name sql.NullString) *int {
	if !name.Valid || name.String == "" {
		return nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name.String)) {
			n := int(d)
			return &n
		}
	}
	return nil
}

// clockHHMM trims a TIME column value ("14:30:00") down to "HH:MM".
func clockHHMM(value string) string {
	parts := strings.Split(value, ":")
	if len(parts) < 2 {
		return value
	}
	return parts[0] + ":" + parts[1]
}

// clockMinutes converts a TIME column value ("14:30:00") to minutes past
// midnight.
func clockMinutes(value sql.NullString) *int {
	if !value.Valid || value.String == "" {
		return nil
	}
	parts := strings.Split(value.String, ":")
	if len(parts) < 2 {
		return nil
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0]+":"+parts[1], "%d:%d", &h, &m); err != nil {
		return nil
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return nil
	}
	mins := h*60 + m
	return &mins
}

var dsnPassword = regexp.MustCompile(`(://[^:/@]+):[^@]+@`)

func maskDSN(dsn string) string {
	return dsnPassword.ReplaceAllString(dsn, "$1:****@")
}
