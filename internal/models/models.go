package models

import (
	"database/sql"
	"time"
)

// TableRecord is a hosted billiard table
type TableRecord struct {
	ID          string         `db:"id" json:"id"`
	Seed        int64          `db:"seed" json:"seed"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	ClosedAt    sql.NullTime   `db:"closed_at" json:"closed_at,omitempty"`
	CloseReason sql.NullString `db:"close_reason" json:"close_reason,omitempty"`
}

// Shot is one fired cue stroke
type Shot struct {
	ID         int64     `db:"id" json:"id" csv:"id"`
	TableID    string    `db:"table_id" json:"table_id" csv:"table_id"`
	RackNumber int       `db:"rack_number" json:"rack_number" csv:"rack"`
	ShotNumber int       `db:"shot_number" json:"shot_number" csv:"shot"`
	CueX       float64   `db:"cue_x" json:"cue_x" csv:"cue_x"`
	CueY       float64   `db:"cue_y" json:"cue_y" csv:"cue_y"`
	VelocityX  float64   `db:"velocity_x" json:"velocity_x" csv:"velocity_x"`
	VelocityY  float64   `db:"velocity_y" json:"velocity_y" csv:"velocity_y"`
	Speed      float64   `db:"speed" json:"speed" csv:"speed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at" csv:"created_at"`
}

// RackResult is written when every object ball of a rack has been pocketed
type RackResult struct {
	ID          int64     `db:"id" json:"id"`
	TableID     string    `db:"table_id" json:"table_id"`
	RackNumber  int       `db:"rack_number" json:"rack_number"`
	Shots       int       `db:"shots" json:"shots"`
	DurationMs  int64     `db:"duration_ms" json:"duration_ms"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
