package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driven"
)

// fingerprintColumns lists the columns scanned by scanFingerprint, in order.
var fingerprintColumns = []string{
	"id", "owner_id", "source_document_id", "source_slide_id", "title", "content_text",
	"duration_minutes", "title_normalized", "content_normalized", "created_at", "updated_at",
}

func columns(prefix string) string {
	cols := make([]string, len(fingerprintColumns))
	for i, c := range fingerprintColumns {
		cols[i] = prefix + c
	}
	return strings.Join(cols, ", ")
}

// gramCountColumn returns the per-field trigram count column.
func gramCountColumn(field domain.Field) (string, error) {
	switch field {
	case domain.FieldTitle:
		return "title_gram_count", nil
	case domain.FieldContent:
		return "content_gram_count", nil
	default:
		return "", fmt.Errorf("%w: unknown field %q", domain.ErrValidation, field)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFingerprint(row rowScanner, extra ...any) (domain.SlideFingerprint, error) {
	var fp domain.SlideFingerprint
	var createdAt, updatedAt sql.NullTime
	dest := []any{
		&fp.ID, &fp.OwnerID, &fp.SourceDocumentID, &fp.SourceSlideID, &fp.Title, &fp.ContentText,
		&fp.DurationMinutes, &fp.TitleNormalized, &fp.ContentNormalized, &createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.SlideFingerprint{}, err
	}
	if createdAt.Valid {
		fp.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		fp.UpdatedAt = updatedAt.Time
	}
	return fp, nil
}

// ==================== Fingerprint Store ====================

// fingerprintStore implements driven.FingerprintStore.
type fingerprintStore struct {
	store *Store
}

var _ driven.FingerprintStore = (*fingerprintStore)(nil)

// Atomic runs fn inside one database transaction bound to the document.
func (s *fingerprintStore) Atomic(
	ctx context.Context,
	ownerID, documentID string,
	fn func(tx driven.FingerprintTx) error,
) error {
	if ownerID == "" || documentID == "" {
		return fmt.Errorf("%w: owner and document id are required", domain.ErrValidation)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existing sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT owner_id FROM fingerprints WHERE source_document_id = ? LIMIT 1",
		documentID,
	).Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("resolving document owner: %w", err)
	}

	ftx := &fingerprintTx{
		ctx:           ctx,
		tx:            tx,
		ownerID:       ownerID,
		documentID:    documentID,
		existingOwner: existing.String,
	}
	if err := fn(ftx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// FindSimilar answers a similarity query from the inverted trigram index.
func (s *fingerprintStore) FindSimilar(
	ctx context.Context,
	ownerID string,
	field domain.Field,
	normalised string,
	threshold float64,
) ([]domain.ScoredFingerprint, error) {
	countColumn, err := gramCountColumn(field)
	if err != nil {
		return nil, err
	}

	grams := domain.Trigrams(normalised).Slice()

	var rows *sql.Rows
	if len(grams) == 0 {
		// Two empty gram sets are identical; anything else scores 0.
		if threshold >= 1.0 {
			return nil, nil
		}
		rows, err = s.store.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT %s, 1.0 FROM fingerprints
			WHERE owner_id = ? AND %s = 0
			ORDER BY id
		`, columns(""), countColumn), ownerID)
	} else {
		gramsJSON, jsonErr := json.Marshal(grams)
		if jsonErr != nil {
			return nil, fmt.Errorf("marshalling query trigrams: %w", jsonErr)
		}
		rows, err = s.store.db.QueryContext(ctx, fmt.Sprintf(`
			WITH query_grams(gram) AS (SELECT DISTINCT value FROM json_each(?))
			SELECT %s, CAST(COUNT(*) AS REAL) / (? + f.%s - COUNT(*)) AS score
			FROM fingerprint_trigrams t
			JOIN query_grams q ON q.gram = t.gram
			JOIN fingerprints f ON f.id = t.fingerprint_id
			WHERE t.owner_id = ? AND t.field = ?
			GROUP BY f.id
			HAVING score > ?
			ORDER BY score DESC, f.id
		`, columns("f."), countColumn), string(gramsJSON), len(grams), ownerID, string(field), threshold)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s index: %w", field, err)
	}
	defer rows.Close()

	var hits []domain.ScoredFingerprint
	for rows.Next() {
		var score float64
		fp, err := scanFingerprint(rows, &score)
		if err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		hits = append(hits, domain.ScoredFingerprint{Fingerprint: fp, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fingerprints: %w", err)
	}
	return hits, nil
}

// ListByOwner returns every fingerprint of an owner ordered by document and slide.
func (s *fingerprintStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.SlideFingerprint, error) {
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM fingerprints
		WHERE owner_id = ?
		ORDER BY source_document_id, source_slide_id
	`, columns("")), ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying fingerprints: %w", err)
	}
	defer rows.Close()
	return collectFingerprints(rows)
}

// Owners returns every owner that currently has fingerprints.
func (s *fingerprintStore) Owners(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT DISTINCT owner_id FROM fingerprints ORDER BY owner_id")
	if err != nil {
		return nil, fmt.Errorf("querying owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scanning owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating owners: %w", err)
	}
	return owners, nil
}

func collectFingerprints(rows *sql.Rows) ([]domain.SlideFingerprint, error) {
	var fps []domain.SlideFingerprint
	for rows.Next() {
		fp, err := scanFingerprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		fps = append(fps, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fingerprints: %w", err)
	}
	return fps, nil
}

// ==================== Fingerprint Transaction ====================

// fingerprintTx implements driven.FingerprintTx over a *sql.Tx.
type fingerprintTx struct {
	ctx context.Context
	tx  *sql.Tx

	ownerID       string
	documentID    string
	existingOwner string
	ownerEnsured  bool
}

var _ driven.FingerprintTx = (*fingerprintTx)(nil)

func (t *fingerprintTx) checkDocument() error {
	if t.existingOwner != "" && t.existingOwner != t.ownerID {
		return fmt.Errorf("%w: document %s belongs to another owner", domain.ErrOwnerMismatch, t.documentID)
	}
	return nil
}

func (t *fingerprintTx) checkWrite(fp *domain.SlideFingerprint) error {
	if err := t.checkDocument(); err != nil {
		return err
	}
	if fp.OwnerID != t.ownerID {
		return fmt.Errorf("%w: fingerprint owner %q, transaction owner %q",
			domain.ErrOwnerMismatch, fp.OwnerID, t.ownerID)
	}
	if fp.SourceDocumentID != t.documentID {
		return fmt.Errorf("%w: fingerprint document %q outside transaction document %q",
			domain.ErrValidation, fp.SourceDocumentID, t.documentID)
	}
	if err := fp.Validate(); err != nil {
		return err
	}
	return t.ensureOwner()
}

func (t *fingerprintTx) ensureOwner() error {
	if t.ownerEnsured {
		return nil
	}
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO owners (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING",
		t.ownerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("registering owner: %w", err)
	}
	t.ownerEnsured = true
	return nil
}

// List returns the document's fingerprints ordered by slide.
func (t *fingerprintTx) List() ([]domain.SlideFingerprint, error) {
	if err := t.checkDocument(); err != nil {
		return nil, err
	}
	rows, err := t.tx.QueryContext(t.ctx, fmt.Sprintf(`
		SELECT %s FROM fingerprints
		WHERE source_document_id = ?
		ORDER BY source_slide_id
	`, columns("")), t.documentID)
	if err != nil {
		return nil, fmt.Errorf("querying fingerprints: %w", err)
	}
	defer rows.Close()
	return collectFingerprints(rows)
}

// Insert adds a new fingerprint and its trigram rows.
func (t *fingerprintTx) Insert(fp domain.SlideFingerprint) error {
	if err := t.checkWrite(&fp); err != nil {
		return err
	}

	var exists int
	if err := t.tx.QueryRowContext(t.ctx,
		"SELECT COUNT(*) FROM fingerprints WHERE source_document_id = ? AND source_slide_id = ?",
		fp.SourceDocumentID, fp.SourceSlideID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking fingerprint: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: slide %s of document %s is already indexed",
			domain.ErrValidation, fp.SourceSlideID, fp.SourceDocumentID)
	}

	titleGrams, contentGrams := domain.Trigrams(fp.TitleNormalized), domain.Trigrams(fp.ContentNormalized)
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO fingerprints (
			id, owner_id, source_document_id, source_slide_id, title, content_text,
			duration_minutes, title_normalized, content_normalized,
			title_gram_count, content_gram_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, fp.ID, fp.OwnerID, fp.SourceDocumentID, fp.SourceSlideID, fp.Title, fp.ContentText,
		fp.DurationMinutes, fp.TitleNormalized, fp.ContentNormalized,
		len(titleGrams), len(contentGrams), fp.CreatedAt, fp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting fingerprint: %w", err)
	}
	return t.insertTrigrams(fp.ID, titleGrams, contentGrams)
}

// Upsert inserts or replaces the fingerprint of fp.SourceSlideID and
// rebuilds its trigram rows.
func (t *fingerprintTx) Upsert(fp domain.SlideFingerprint) error {
	if err := t.checkWrite(&fp); err != nil {
		return err
	}

	_, err := t.tx.ExecContext(t.ctx, `
		DELETE FROM fingerprint_trigrams WHERE fingerprint_id IN (
			SELECT id FROM fingerprints WHERE source_document_id = ? AND source_slide_id = ?
		)
	`, fp.SourceDocumentID, fp.SourceSlideID)
	if err != nil {
		return fmt.Errorf("clearing trigrams: %w", err)
	}

	titleGrams, contentGrams := domain.Trigrams(fp.TitleNormalized), domain.Trigrams(fp.ContentNormalized)
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO fingerprints (
			id, owner_id, source_document_id, source_slide_id, title, content_text,
			duration_minutes, title_normalized, content_normalized,
			title_gram_count, content_gram_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_document_id, source_slide_id) DO UPDATE SET
			id = excluded.id,
			owner_id = excluded.owner_id,
			title = excluded.title,
			content_text = excluded.content_text,
			duration_minutes = excluded.duration_minutes,
			title_normalized = excluded.title_normalized,
			content_normalized = excluded.content_normalized,
			title_gram_count = excluded.title_gram_count,
			content_gram_count = excluded.content_gram_count,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, fp.ID, fp.OwnerID, fp.SourceDocumentID, fp.SourceSlideID, fp.Title, fp.ContentText,
		fp.DurationMinutes, fp.TitleNormalized, fp.ContentNormalized,
		len(titleGrams), len(contentGrams), fp.CreatedAt, fp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting fingerprint: %w", err)
	}
	return t.insertTrigrams(fp.ID, titleGrams, contentGrams)
}

func (t *fingerprintTx) insertTrigrams(fingerprintID string, titleGrams, contentGrams domain.TrigramSet) error {
	stmt, err := t.tx.PrepareContext(t.ctx, `
		INSERT INTO fingerprint_trigrams (fingerprint_id, owner_id, field, gram)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for field, grams := range map[domain.Field]domain.TrigramSet{
		domain.FieldTitle:   titleGrams,
		domain.FieldContent: contentGrams,
	} {
		for gram := range grams {
			if _, err := stmt.ExecContext(t.ctx, fingerprintID, t.ownerID, string(field), gram); err != nil {
				return fmt.Errorf("saving %s trigram: %w", field, err)
			}
		}
	}
	return nil
}

// Delete removes the fingerprint of one slide. Trigram rows cascade.
func (t *fingerprintTx) Delete(slideID string) error {
	if err := t.checkDocument(); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(t.ctx,
		"DELETE FROM fingerprints WHERE source_document_id = ? AND source_slide_id = ?",
		t.documentID, slideID)
	if err != nil {
		return fmt.Errorf("deleting fingerprint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("slide %s: %w", slideID, domain.ErrNotFound)
	}
	return nil
}

// DeleteAll removes every fingerprint of the document.
func (t *fingerprintTx) DeleteAll() (int, error) {
	if err := t.checkDocument(); err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(t.ctx,
		"DELETE FROM fingerprints WHERE source_document_id = ?", t.documentID)
	if err != nil {
		return 0, fmt.Errorf("deleting fingerprints: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return int(n), nil
}

// ==================== Owner Directory ====================

// ownerDirectory implements driven.OwnerDirectory.
type ownerDirectory struct {
	store *Store
}

var _ driven.OwnerDirectory = (*ownerDirectory)(nil)

// Exists reports whether the owner has ever had a fingerprint indexed.
func (d *ownerDirectory) Exists(ctx context.Context, ownerID string) (bool, error) {
	var n int
	err := d.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM owners WHERE id = ?", ownerID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying owner: %w", err)
	}
	return n > 0, nil
}
