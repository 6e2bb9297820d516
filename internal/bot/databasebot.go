package bot

import (
	"database/sql"
	"fmt"
	"time"

	"tokentrackr/internal/common"

	"github.com/rs/zerolog/log"
)

const timestampLayout = "2006-01-02 15:04:05.000"

var schemaTokens = `CREATE TABLE IF NOT EXISTS awarded_tokens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	awarded_by TEXT NOT NULL,
	reason TEXT NOT NULL,
	timestamp DATETIME DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
)`

var schemaKills = `CREATE TABLE IF NOT EXISTS kills (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	ship_killed TEXT NOT NULL CHECK (ship_killed <> ''),
	pilot_killed TEXT NOT NULL CHECK (pilot_killed <> ''),
	timestamp DATETIME DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
)`

type TokenAward struct {
	Id          int64
	RecipientId int64
	AwardedBy   string
	Reason      string
	Timestamp   time.Time
}

type KillStat struct {
	KillerId    int64
	ShipKilled  string
	PilotKilled string
	Kills       int
}

// Token awards and the kill log live in separate files
type DatabaseBot struct {
	tokens common.Database
	kills  common.Database
}

func CreateDatabaseBot(tokensFilename string, killsFilename string) DatabaseBot {
	return DatabaseBot{
		tokens: common.NewDatabase(tokensFilename),
		kills:  common.NewDatabase(killsFilename),
	}
}

// Create both tables if they are not there yet
func (db *DatabaseBot) InitSchema() error {
	if err := db.tokens.Exec("init tokens schema", schemaTokens); err != nil {
		return err
	}
	if err := db.kills.Exec("init kills schema", schemaKills); err != nil {
		return err
	}
	log.Debug().Msg(fmt.Sprintf("Schema ready in %s and %s", db.tokens.Filename, db.kills.Filename))
	return nil
}

func (db *DatabaseBot) RecordTokenAward(recipientId int64, awardedBy string, reason string) error {
	return db.tokens.Exec("record token award",
		"INSERT INTO awarded_tokens (user_id, awarded_by, reason) VALUES (?, ?, ?)",
		recipientId, awardedBy, reason)
}

func (db *DatabaseBot) RecordKill(killerId int64, shipKilled string, pilotKilled string) error {
	return db.kills.Exec("record kill",
		"INSERT INTO kills (user_id, ship_killed, pilot_killed) VALUES (?, ?, ?)",
		killerId, shipKilled, pilotKilled)
}

// Number of kills per killer, ship and pilot
func (db *DatabaseBot) KillStats() ([]KillStat, error) {
	stats := []KillStat{}
	err := db.kills.Query("query kill stats", func(rows *sql.Rows) error {
		var stat KillStat
		if err := rows.Scan(&stat.KillerId, &stat.ShipKilled, &stat.PilotKilled, &stat.Kills); err != nil {
			return err
		}
		stats = append(stats, stat)
		return nil
	}, "SELECT user_id, ship_killed, pilot_killed, COUNT(*) FROM kills GROUP BY user_id, ship_killed, pilot_killed")
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// The most recent token awards of a user, newest first
func (db *DatabaseBot) TokenAwards(recipientId int64, limit int) ([]TokenAward, error) {
	awards := []TokenAward{}
	err := db.tokens.Query("query token awards", func(rows *sql.Rows) error {
		var award TokenAward
		var timestamp string
		if err := rows.Scan(&award.Id, &award.RecipientId, &award.AwardedBy, &award.Reason, &timestamp); err != nil {
			return err
		}
		parsed, err := time.Parse(timestampLayout, timestamp)
		if err != nil {
			return fmt.Errorf("timestamp of award %d: %w", award.Id, err)
		}
		award.Timestamp = parsed
		awards = append(awards, award)
		return nil
	}, `SELECT id, user_id, awarded_by, reason, strftime('%Y-%m-%d %H:%M:%f', timestamp)
		FROM awarded_tokens WHERE user_id = ? ORDER BY id DESC LIMIT ?`, recipientId, limit)
	if err != nil {
		return nil, err
	}
	return awards, nil
}

func (db *DatabaseBot) TokenCount(recipientId int64) (int, error) {
	count := 0
	err := db.tokens.Query("count tokens", func(rows *sql.Rows) error {
		return rows.Scan(&count)
	}, "SELECT COUNT(*) FROM awarded_tokens WHERE user_id = ?", recipientId)
	return count, err
}
