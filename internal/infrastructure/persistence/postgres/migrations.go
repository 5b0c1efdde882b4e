// Package postgres implements the PostgreSQL persistence layer for
// Campus Conduct Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students table
-- Version: 001

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_number VARCHAR(30) NOT NULL UNIQUE,
    full_name VARCHAR(100) NOT NULL,
    base_score NUMERIC(8,2) NOT NULL DEFAULT 100.00,
    current_score NUMERIC(8,2) NOT NULL DEFAULT 100.00,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    appeal_permission BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_status CHECK (status IN ('active', 'inactive'))
);

CREATE INDEX IF NOT EXISTS idx_students_student_number ON students(student_number);
CREATE INDEX IF NOT EXISTS idx_students_status ON students(status);
CREATE INDEX IF NOT EXISTS idx_students_current_score ON students(current_score);
`

const migration001Down = `
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE CONDUCT RECORDS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create conduct records table
-- Version: 002

CREATE TABLE IF NOT EXISTS conduct_records (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    reason TEXT NOT NULL,
    score_change NUMERIC(8,2) NOT NULL,
    score_after NUMERIC(8,2) NOT NULL,
    operator_name VARCHAR(100) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'valid',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- A record always names its reason and moves the score.
    CONSTRAINT nonempty_reason CHECK (length(trim(reason)) > 0),
    CONSTRAINT nonzero_change CHECK (score_change <> 0),
    CONSTRAINT valid_record_status CHECK (status IN ('valid', 'invalid'))
);

CREATE INDEX IF NOT EXISTS idx_conduct_records_student_id ON conduct_records(student_id);
CREATE INDEX IF NOT EXISTS idx_conduct_records_created_at ON conduct_records(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_conduct_records_student_date ON conduct_records(student_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_conduct_records_student_valid
    ON conduct_records(student_id) WHERE status = 'valid';
`

const migration002Down = `
DROP TABLE IF EXISTS conduct_records;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE APPEALS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create appeals table
-- Version: 003

CREATE TABLE IF NOT EXISTS appeals (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    record_id UUID NOT NULL REFERENCES conduct_records(id) ON DELETE CASCADE,
    reason TEXT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    processed_by VARCHAR(100) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    processed_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT nonempty_appeal_reason CHECK (length(trim(reason)) > 0),
    CONSTRAINT valid_appeal_status CHECK (status IN ('pending', 'approved', 'rejected'))
);

-- One appeal per conduct record.
CREATE UNIQUE INDEX IF NOT EXISTS idx_appeals_record_id ON appeals(record_id);

CREATE INDEX IF NOT EXISTS idx_appeals_student_id ON appeals(student_id);
CREATE INDEX IF NOT EXISTS idx_appeals_status ON appeals(status);
CREATE INDEX IF NOT EXISTS idx_appeals_pending
    ON appeals(created_at) WHERE status = 'pending';
`

const migration003Down = `
DROP TABLE IF EXISTS appeals;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE OPERATORS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create operators table
-- Version: 004

CREATE TABLE IF NOT EXISTS operators (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username VARCHAR(50) NOT NULL UNIQUE,
    display_name VARCHAR(100) NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'reviewer',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_role CHECK (role IN ('admin', 'reviewer'))
);

CREATE INDEX IF NOT EXISTS idx_operators_username ON operators(username);
`

const migration004Down = `
DROP TABLE IF EXISTS operators;
`

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_students",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_conduct_records",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_appeals",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "create_operators",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}
