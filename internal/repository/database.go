package repository

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist. Callers use it to tell
// missing records apart from transient storage failures.
var ErrNotFound = errors.New("record not found")

func InitDB(dbPath string) (*sql.DB, error) {
	// The extraction goroutine writes while status pollers read; without a
	// busy timeout concurrent access fails spuriously with SQLITE_BUSY.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS transcripts (
        id TEXT PRIMARY KEY,
        content TEXT NOT NULL,
        source TEXT NOT NULL DEFAULT '',
        meeting_date DATETIME,
        processing_status TEXT NOT NULL,
        processing_progress INTEGER NOT NULL DEFAULT 0,
        error_message TEXT NOT NULL DEFAULT '',
        uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS tasks (
        id TEXT PRIMARY KEY,
        transcript_id TEXT,
        description TEXT NOT NULL,
        task_type TEXT NOT NULL,
        assignee TEXT NOT NULL DEFAULT '',
        deadline DATETIME,
        priority TEXT NOT NULL DEFAULT 'medium',
        status TEXT NOT NULL DEFAULT 'pending',
        needs_confirmation INTEGER NOT NULL DEFAULT 0,
        cluster_group TEXT,
        suggested_approach TEXT NOT NULL DEFAULT '',
        completion_note TEXT NOT NULL DEFAULT '',
        completed_date DATETIME,
        origin TEXT NOT NULL DEFAULT 'manual',
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (transcript_id) REFERENCES transcripts(id)
    );

    CREATE TABLE IF NOT EXISTS task_external_ids (
        task_id TEXT NOT NULL,
        integration TEXT NOT NULL,
        external_id TEXT NOT NULL,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (task_id, integration),
        FOREIGN KEY (task_id) REFERENCES tasks(id)
    );

    CREATE TABLE IF NOT EXISTS profiles (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL DEFAULT ''
    );

    CREATE TABLE IF NOT EXISTS profile_integrations (
        profile_id TEXT NOT NULL,
        integration TEXT NOT NULL,
        enabled INTEGER NOT NULL DEFAULT 1,
        settings TEXT,
        PRIMARY KEY (profile_id, integration),
        FOREIGN KEY (profile_id) REFERENCES profiles(id)
    );

    CREATE INDEX IF NOT EXISTS idx_tasks_transcript ON tasks(transcript_id);
    CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status, needs_confirmation);
    `

	_, err := db.Exec(schema)
	return err
}
