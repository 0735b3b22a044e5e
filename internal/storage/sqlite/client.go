package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/skillcompass/backend/internal/storage/models"
	"github.com/skillcompass/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS validation_history (
		id TEXT PRIMARY KEY,
		track TEXT NOT NULL,
		user_skill_count INTEGER NOT NULL,
		gap_count INTEGER NOT NULL,
		coverage_percent REAL NOT NULL,
		sort_strategy TEXT,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_validation_track ON validation_history(track);
	CREATE INDEX IF NOT EXISTS idx_validation_created ON validation_history(created_at);

	CREATE TABLE IF NOT EXISTS validation_gaps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		validation_id TEXT NOT NULL,
		skill TEXT NOT NULL,
		weight INTEGER NOT NULL,
		combined_score REAL,
		demand_category TEXT,
		FOREIGN KEY (validation_id) REFERENCES validation_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_gaps_validation ON validation_gaps(validation_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertValidationRecord(record *models.ValidationRecord) error {
	query := `
	INSERT INTO validation_history
		(id, track, user_skill_count, gap_count, coverage_percent, sort_strategy, latency_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(query,
		record.ID,
		record.Track,
		record.UserSkillCount,
		record.GapCount,
		record.CoveragePercent,
		record.SortStrategy,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert validation record: %w", err)
	}

	return nil
}

func (c *Client) InsertGapRecord(record *models.GapRecord) error {
	query := `
	INSERT INTO validation_gaps (validation_id, skill, weight, combined_score, demand_category)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(query,
		record.ValidationID,
		record.Skill,
		record.Weight,
		record.CombinedScore,
		record.DemandCategory,
	)
	if err != nil {
		return fmt.Errorf("failed to insert gap record: %w", err)
	}

	return nil
}

func (c *Client) GetValidationHistory(track string, limit int) ([]*models.ValidationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, track, user_skill_count, gap_count, coverage_percent, sort_strategy, latency_ms, created_at
	FROM validation_history
	`
	args := []interface{}{}
	if track != "" {
		query += " WHERE track = ?"
		args = append(args, track)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation history: %w", err)
	}
	defer rows.Close()

	records := make([]*models.ValidationRecord, 0)
	for rows.Next() {
		var record models.ValidationRecord
		var createdAt int64

		err := rows.Scan(
			&record.ID,
			&record.Track,
			&record.UserSkillCount,
			&record.GapCount,
			&record.CoveragePercent,
			&record.SortStrategy,
			&record.LatencyMS,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation record: %w", err)
		}

		record.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate validation history: %w", err)
	}

	return records, nil
}

func (c *Client) GetGapRecords(validationID string) ([]*models.GapRecord, error) {
	query := `
	SELECT id, validation_id, skill, weight, combined_score, demand_category
	FROM validation_gaps
	WHERE validation_id = ?
	ORDER BY id
	`

	rows, err := c.db.Query(query, validationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gap records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.GapRecord, 0)
	for rows.Next() {
		var record models.GapRecord

		err := rows.Scan(
			&record.ID,
			&record.ValidationID,
			&record.Skill,
			&record.Weight,
			&record.CombinedScore,
			&record.DemandCategory,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gap record: %w", err)
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gap records: %w", err)
	}

	return records, nil
}
