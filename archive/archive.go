// Package archive stores decoded genomes in a SQLite database.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bdsul/grace/genome"
)

const schema = `
CREATE TABLE IF NOT EXISTS decodes (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         TEXT NOT NULL,
	genome_id      TEXT NOT NULL,
	genotype       TEXT NOT NULL,
	phenotype      TEXT NOT NULL,
	valid          INTEGER NOT NULL,
	effective_size INTEGER NOT NULL,
	wrap_events    INTEGER NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS decodes_run ON decodes (run_id);
`

// Record is a stored decode result.
type Record struct {
	Run           uuid.UUID `json:"run"`
	GenomeID      uuid.UUID `json:"genomeId"`
	Genotype      []uint    `json:"genotype"`
	Phenotype     string    `json:"phenotype"`
	Valid         bool      `json:"valid"`
	EffectiveSize int       `json:"effectiveSize"`
	WrapEvents    int       `json:"wrapEvents"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Store is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates SQLite database at dsn, ":memory:" gives a private in-memory database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, e := sql.Open("sqlite", dsn)
	if e != nil {
		return nil, fmt.Errorf("open db: %w", e)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if _, e := db.ExecContext(ctx, schema); e != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", e)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores the last decode of g as a part of run.
func (s *Store) Record(ctx context.Context, run uuid.UUID, g *genome.Genome) error {
	return s.RecordAll(ctx, run, []*genome.Genome{g})
}

// RecordAll stores the last decodes of genomes in a single transaction.
func (s *Store) RecordAll(ctx context.Context, run uuid.UUID, genomes []*genome.Genome) error {
	tx, e := s.db.BeginTx(ctx, nil)
	if e != nil {
		return fmt.Errorf("begin tx: %w", e)
	}
	defer tx.Rollback()

	stmt, e := tx.PrepareContext(ctx,
		`INSERT INTO decodes (run_id, genome_id, genotype, phenotype, valid, effective_size, wrap_events, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if e != nil {
		return fmt.Errorf("prepare insert: %w", e)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, g := range genomes {
		codons, e := json.Marshal(g.Genotype)
		if e != nil {
			return fmt.Errorf("marshal genotype: %w", e)
		}

		_, e = stmt.ExecContext(ctx, run.String(), g.ID.String(), string(codons), g.Phenotype,
			g.PhenotypeValid, g.EffectiveSize, g.WrapEvents, now)
		if e != nil {
			return fmt.Errorf("record genome %s: %w", g.ID, e)
		}
	}

	if e := tx.Commit(); e != nil {
		return fmt.Errorf("commit: %w", e)
	}
	return nil
}

// List returns records of run in insertion order.
func (s *Store) List(ctx context.Context, run uuid.UUID) ([]Record, error) {
	rows, e := s.db.QueryContext(ctx,
		`SELECT run_id, genome_id, genotype, phenotype, valid, effective_size, wrap_events, created_at
		 FROM decodes WHERE run_id = ? ORDER BY id`, run.String())
	if e != nil {
		return nil, fmt.Errorf("query decodes: %w", e)
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var r Record
		var runID, genomeID, codons, created string
		e := rows.Scan(&runID, &genomeID, &codons, &r.Phenotype, &r.Valid, &r.EffectiveSize, &r.WrapEvents, &created)
		if e != nil {
			return nil, fmt.Errorf("scan decode: %w", e)
		}

		if r.Run, e = uuid.Parse(runID); e != nil {
			return nil, fmt.Errorf("parse run id: %w", e)
		}
		if r.GenomeID, e = uuid.Parse(genomeID); e != nil {
			return nil, fmt.Errorf("parse genome id: %w", e)
		}
		if e = json.Unmarshal([]byte(codons), &r.Genotype); e != nil {
			return nil, fmt.Errorf("parse genotype: %w", e)
		}
		if r.CreatedAt, e = time.Parse(time.RFC3339Nano, created); e != nil {
			return nil, fmt.Errorf("parse time: %w", e)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Runs returns identifiers of all stored runs ordered by first record.
func (s *Store) Runs(ctx context.Context) ([]uuid.UUID, error) {
	rows, e := s.db.QueryContext(ctx, `SELECT run_id FROM decodes GROUP BY run_id ORDER BY MIN(id)`)
	if e != nil {
		return nil, fmt.Errorf("query runs: %w", e)
	}
	defer rows.Close()

	var res []uuid.UUID
	for rows.Next() {
		var id string
		if e := rows.Scan(&id); e != nil {
			return nil, fmt.Errorf("scan run: %w", e)
		}
		run, e := uuid.Parse(id)
		if e != nil {
			return nil, fmt.Errorf("parse run id: %w", e)
		}
		res = append(res, run)
	}
	return res, rows.Err()
}
