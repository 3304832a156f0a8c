package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mkaline/recall/internal/model"
)

const memoryColumns = `id, content, mem_type, tags, importance, created_at, valid_from, valid_until,
		supersedes, superseded_by, related, access_count, last_accessed, project, session, source, confidence, layer`

// SaveMemory inserts a memory, assigning a fresh ULID when the caller did
// not supply an id. Returns the stored id.
func (db *DB) SaveMemory(m *model.Memory) (string, error) {
	if m.ID == "" {
		m.ID = model.NewID()
	}
	if m.Type == "" {
		m.Type = model.TypeContext
	}
	if !model.ValidTypes[m.Type] {
		return "", fmt.Errorf("invalid memory type %q", m.Type)
	}
	if m.Supersedes == m.ID {
		return "", fmt.Errorf("memory %s cannot supersede itself", m.ID)
	}
	if m.Layer == "" {
		m.Layer = model.LayerLongTerm
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.ValidFrom == nil {
		m.ValidFrom = &m.CreatedAt
	}
	if m.Confidence == 0 {
		m.Confidence = 1.0
	}
	if m.Importance == 0 {
		m.Importance = 3
	}
	m.Importance = model.ClampImportance(m.Importance)

	tags, err := json.Marshal(nonNil(m.Tags))
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	related, err := json.Marshal(nonNil(m.RelatedIDs))
	if err != nil {
		return "", fmt.Errorf("marshal related: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO memories (`+memoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULL, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?, ?)
	`, m.ID, m.Content, string(m.Type), string(tags), m.Importance,
		m.CreatedAt.UnixMilli(), timePtrToMS(m.ValidFrom), timePtrToMS(m.ValidUntil),
		m.Supersedes, string(related),
		m.AccessCount, timePtrToMS(m.LastAccessedAt),
		m.Project, m.Session, m.Source, m.Confidence, string(m.Layer))
	if err != nil {
		return "", fmt.Errorf("save memory: %w", err)
	}
	return m.ID, nil
}

// GetMemory returns a memory by id, or nil if not found.
func (db *DB) GetMemory(id string) (*model.Memory, error) {
	row := db.QueryRow(`SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	return m, nil
}

// UpdateMemory rewrites the mutable fields of an existing memory.
func (db *DB) UpdateMemory(m *model.Memory) error {
	if !model.ValidTypes[m.Type] {
		return fmt.Errorf("invalid memory type %q", m.Type)
	}
	m.Importance = model.ClampImportance(m.Importance)

	tags, err := json.Marshal(nonNil(m.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	related, err := json.Marshal(nonNil(m.RelatedIDs))
	if err != nil {
		return fmt.Errorf("marshal related: %w", err)
	}

	result, err := db.Exec(`
		UPDATE memories
		SET content = ?, mem_type = ?, tags = ?, importance = ?, valid_until = ?,
			related = ?, project = NULLIF(?, ''), source = NULLIF(?, ''), confidence = ?, layer = ?
		WHERE id = ?
	`, m.Content, string(m.Type), string(tags), m.Importance, timePtrToMS(m.ValidUntil),
		string(related), m.Project, m.Source, m.Confidence, string(m.Layer), m.ID)
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("memory %s not found", m.ID)
	}
	return nil
}

// UpdateImportance sets the importance of a memory.
func (db *DB) UpdateImportance(id string, importance int) error {
	result, err := db.Exec(
		"UPDATE memories SET importance = ? WHERE id = ?",
		model.ClampImportance(importance), id,
	)
	if err != nil {
		return fmt.Errorf("update importance: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("memory %s not found", id)
	}
	return nil
}

// DeleteMemory removes a memory. Its vector goes with it via the foreign
// key cascade.
func (db *DB) DeleteMemory(id string) error {
	result, err := db.Exec("DELETE FROM memories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("memory %s not found", id)
	}
	return nil
}

// TouchMemory bumps the access count and timestamp, feeding decay
// resistance.
func (db *DB) TouchMemory(id string) error {
	_, err := db.Exec(`
		UPDATE memories SET access_count = access_count + 1, last_accessed = ?
		WHERE id = ?
	`, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("touch memory: %w", err)
	}
	return nil
}

// Supersede closes the old memory's validity interval and records the
// replacement link. Idempotent: a memory already superseded keeps its
// original valid_until and superseded_by.
func (db *DB) Supersede(oldID, newID string) error {
	if oldID == newID {
		return fmt.Errorf("memory %s cannot supersede itself", oldID)
	}
	result, err := db.Exec(`
		UPDATE memories
		SET valid_until = COALESCE(valid_until, ?), superseded_by = COALESCE(superseded_by, ?)
		WHERE id = ?
	`, time.Now().UnixMilli(), newID, oldID)
	if err != nil {
		return fmt.Errorf("supersede: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("memory %s not found", oldID)
	}
	return nil
}

// ListMemories returns the most recent memories, newest first. A limit of
// 0 or less returns everything.
func (db *DB) ListMemories(limit int) ([]*model.Memory, error) {
	return db.ListFiltered(ListOpts{Limit: limit})
}

// ListOpts narrows a memory listing.
type ListOpts struct {
	Project string
	Type    string
	Tag     string
	Session string
	Limit   int
}

// ListFiltered returns memories matching the filter, newest first.
func (db *DB) ListFiltered(opts ListOpts) ([]*model.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories`
	var conds []string
	var args []any
	if opts.Project != "" {
		conds = append(conds, "project = ?")
		args = append(args, opts.Project)
	}
	if opts.Type != "" {
		conds = append(conds, "mem_type = ?")
		args = append(args, opts.Type)
	}
	if opts.Session != "" {
		conds = append(conds, "session = ?")
		args = append(args, opts.Session)
	}
	if opts.Tag != "" {
		// Tags are a JSON array of strings; match the quoted element.
		conds = append(conds, "tags LIKE ?")
		args = append(args, `%"`+opts.Tag+`"%`)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	var memories []*model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// CountMemories returns the total number of stored memories.
func (db *DB) CountMemories() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM memories").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count memories: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMemory(row scanner) (*model.Memory, error) {
	var m model.Memory
	var memType, layer, tags, related string
	var createdAt int64
	var validFrom, validUntil, lastAccessed sql.NullInt64
	var supersedes, supersededBy, project, session, source sql.NullString

	err := row.Scan(&m.ID, &m.Content, &memType, &tags, &m.Importance,
		&createdAt, &validFrom, &validUntil,
		&supersedes, &supersededBy, &related,
		&m.AccessCount, &lastAccessed,
		&project, &session, &source, &m.Confidence, &layer)
	if err != nil {
		return nil, err
	}

	m.Type = model.Type(memType)
	m.Layer = model.Layer(layer)
	m.CreatedAt = time.UnixMilli(createdAt)
	m.ValidFrom = msToTimePtr(validFrom)
	m.ValidUntil = msToTimePtr(validUntil)
	m.LastAccessedAt = msToTimePtr(lastAccessed)
	m.Supersedes = supersedes.String
	m.Project = project.String
	m.Session = session.String
	m.Source = source.String

	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(related), &m.RelatedIDs); err != nil {
		return nil, fmt.Errorf("unmarshal related: %w", err)
	}
	return &m, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func timePtrToMS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func msToTimePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}
