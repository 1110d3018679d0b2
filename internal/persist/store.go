package persist

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Gajesh2007/proj-leela-sub000/internal/concept"
	"github.com/Gajesh2007/proj-leela-sub000/internal/mycelial"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS concepts (
	concept_id   TEXT PRIMARY KEY,
	domain       TEXT NOT NULL,
	definition   TEXT NOT NULL,
	attributes   TEXT,
	states_json  TEXT,
	links_json   TEXT,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ideas (
	idea_id        TEXT PRIMARY KEY,
	content        TEXT NOT NULL,
	insights_json  TEXT,
	source_node_id TEXT,
	domain         TEXT,
	tokens_used    INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_concepts_domain ON concepts(domain);
CREATE INDEX IF NOT EXISTS idx_ideas_domain ON ideas(domain);
`

// #endregion schema

// #region store-struct
// Store persists concept and idea records in SQLite. Saves are UPSERTs, so
// at-least-once delivery from the caller is safe.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region save-concept
// SaveConcept upserts a concept, together with its entanglement links from
// the registry when one is supplied. Assigns an id when missing and returns
// the stored record.
func (s *Store) SaveConcept(c concept.Concept, links []concept.DirectedLink) (concept.Concept, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	attrsJSON, err := json.Marshal(c.Attributes)
	if err != nil {
		return concept.Concept{}, fmt.Errorf("marshal attributes: %w", err)
	}
	statesJSON, err := json.Marshal(c.States)
	if err != nil {
		return concept.Concept{}, fmt.Errorf("marshal states: %w", err)
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return concept.Concept{}, fmt.Errorf("marshal links: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO concepts (concept_id, domain, definition, attributes, states_json, links_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(concept_id) DO UPDATE SET
		   domain = excluded.domain,
		   definition = excluded.definition,
		   attributes = excluded.attributes,
		   states_json = excluded.states_json,
		   links_json = excluded.links_json,
		   updated_at = excluded.updated_at`,
		c.ID, c.Domain, c.Definition, string(attrsJSON), string(statesJSON), string(linksJSON), now, now,
	)
	if err != nil {
		return concept.Concept{}, fmt.Errorf("save concept: %w", err)
	}
	return c, nil
}

// #endregion save-concept

// #region get-concept
// GetConcept reads a concept by id. Returns ErrNotFound when absent.
func (s *Store) GetConcept(id string) (concept.Concept, error) {
	var c concept.Concept
	var attrsJSON, statesJSON sql.NullString

	err := s.db.QueryRow(
		`SELECT concept_id, domain, definition, attributes, states_json
		 FROM concepts WHERE concept_id = ?`, id,
	).Scan(&c.ID, &c.Domain, &c.Definition, &attrsJSON, &statesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return concept.Concept{}, fmt.Errorf("concept %s: %w", id, concept.ErrNotFound)
	}
	if err != nil {
		return concept.Concept{}, fmt.Errorf("get concept %s: %w", id, err)
	}

	if attrsJSON.Valid && attrsJSON.String != "" {
		if err := json.Unmarshal([]byte(attrsJSON.String), &c.Attributes); err != nil {
			return concept.Concept{}, fmt.Errorf("unmarshal attributes: %w", err)
		}
	}
	if statesJSON.Valid && statesJSON.String != "" {
		if err := json.Unmarshal([]byte(statesJSON.String), &c.States); err != nil {
			return concept.Concept{}, fmt.Errorf("unmarshal states: %w", err)
		}
	}
	return c, nil
}

// ListConcepts returns the most recently updated concepts.
func (s *Store) ListConcepts(limit int) ([]concept.Concept, error) {
	rows, err := s.db.Query(
		`SELECT concept_id, domain, definition, attributes, states_json
		 FROM concepts ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	defer rows.Close()

	var out []concept.Concept
	for rows.Next() {
		var c concept.Concept
		var attrsJSON, statesJSON sql.NullString
		if err := rows.Scan(&c.ID, &c.Domain, &c.Definition, &attrsJSON, &statesJSON); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		if attrsJSON.Valid && attrsJSON.String != "" {
			if err := json.Unmarshal([]byte(attrsJSON.String), &c.Attributes); err != nil {
				return nil, fmt.Errorf("unmarshal attributes: %w", err)
			}
		}
		if statesJSON.Valid && statesJSON.String != "" {
			if err := json.Unmarshal([]byte(statesJSON.String), &c.States); err != nil {
				return nil, fmt.Errorf("unmarshal states: %w", err)
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// #endregion get-concept

// #region save-idea
// SaveIdea upserts an idea record, assigning an id when missing.
func (s *Store) SaveIdea(idea mycelial.Idea) (mycelial.Idea, error) {
	if idea.ID == "" {
		idea.ID = uuid.New().String()
	}
	insightsJSON, err := json.Marshal(idea.Insights)
	if err != nil {
		return mycelial.Idea{}, fmt.Errorf("marshal insights: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err = s.db.Exec(
		`INSERT INTO ideas (idea_id, content, insights_json, source_node_id, domain, tokens_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(idea_id) DO UPDATE SET
		   content = excluded.content,
		   insights_json = excluded.insights_json,
		   tokens_used = excluded.tokens_used`,
		idea.ID, idea.Content, string(insightsJSON), idea.SourceNodeID, idea.Domain, idea.TokensUsed, now,
	)
	if err != nil {
		return mycelial.Idea{}, fmt.Errorf("save idea: %w", err)
	}
	return idea, nil
}

// GetIdea reads an idea by id. Returns ErrNotFound when absent.
func (s *Store) GetIdea(id string) (mycelial.Idea, error) {
	var idea mycelial.Idea
	var insightsJSON sql.NullString

	err := s.db.QueryRow(
		`SELECT idea_id, content, insights_json, source_node_id, domain, tokens_used
		 FROM ideas WHERE idea_id = ?`, id,
	).Scan(&idea.ID, &idea.Content, &insightsJSON, &idea.SourceNodeID, &idea.Domain, &idea.TokensUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return mycelial.Idea{}, fmt.Errorf("idea %s: %w", id, concept.ErrNotFound)
	}
	if err != nil {
		return mycelial.Idea{}, fmt.Errorf("get idea %s: %w", id, err)
	}

	if insightsJSON.Valid && insightsJSON.String != "" && insightsJSON.String != "null" {
		if err := json.Unmarshal([]byte(insightsJSON.String), &idea.Insights); err != nil {
			return mycelial.Idea{}, fmt.Errorf("unmarshal insights: %w", err)
		}
	}
	return idea, nil
}

// ListIdeas returns the most recent ideas.
func (s *Store) ListIdeas(limit int) ([]mycelial.Idea, error) {
	rows, err := s.db.Query(
		`SELECT idea_id, content, insights_json, source_node_id, domain, tokens_used
		 FROM ideas ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	var out []mycelial.Idea
	for rows.Next() {
		var idea mycelial.Idea
		var insightsJSON sql.NullString
		if err := rows.Scan(&idea.ID, &idea.Content, &insightsJSON, &idea.SourceNodeID, &idea.Domain, &idea.TokensUsed); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		if insightsJSON.Valid && insightsJSON.String != "" && insightsJSON.String != "null" {
			if err := json.Unmarshal([]byte(insightsJSON.String), &idea.Insights); err != nil {
				return nil, fmt.Errorf("unmarshal insights: %w", err)
			}
		}
		out = append(out, idea)
	}
	return out, rows.Err()
}

// #endregion save-idea

// #region summary
// Summary reports row counts for inspection tooling.
func (s *Store) Summary() (string, error) {
	var concepts, ideas int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM concepts`).Scan(&concepts); err != nil {
		return "", err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ideas`).Scan(&ideas); err != nil {
		return "", err
	}
	parts := []string{
		fmt.Sprintf("concepts=%d", concepts),
		fmt.Sprintf("ideas=%d", ideas),
	}
	return strings.Join(parts, " "), nil
}

// #endregion summary
