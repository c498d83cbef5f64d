package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"rulekit/internal/aggregate"
	"rulekit/internal/fix"
	"rulekit/internal/review"
)

// Run is the stored record of one review invocation.
type Run struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"createdAt"`
	Root       string            `json:"root"`
	RuleSetIDs []string          `json:"ruleSets"`
	Summary    aggregate.Summary `json:"summary"`
}

// RecordRun stores a run with its findings and returns the generated run id.
func (db *DB) RecordRun(root string, ruleSetIDs []string, report *aggregate.Report) (string, error) {
	id := uuid.NewString()
	ruleSets, err := json.Marshal(ruleSetIDs)
	if err != nil {
		return "", err
	}

	err = db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, created_at, root, rule_sets, critical, high, medium, low, checks_passed, checks_failed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, time.Now().UTC().Format(time.RFC3339), root, string(ruleSets),
			report.Summary.Critical, report.Summary.High,
			report.Summary.Medium, report.Summary.Low,
			report.Summary.Passed, report.Summary.Failed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		for _, f := range report.Findings {
			_, err := tx.Exec(`
				INSERT INTO findings (run_id, category, finding_id, severity, title, file, line, auto_fixable, detail)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, f.Category, f.ID, string(f.Severity), f.Title, f.File, f.Line,
				boolToInt(f.AutoFixable), f.Detail,
			)
			if err != nil {
				return fmt.Errorf("failed to insert finding %s: %w", f.Key(), err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	db.logger.Debug("Recorded run", map[string]interface{}{
		"runId":    id,
		"findings": len(report.Findings),
	})
	return id, nil
}

// RecordOutcomes stores fix outcomes against an existing run.
func (db *DB) RecordOutcomes(runID string, outcomes []fix.Outcome) error {
	return db.WithTx(func(tx *sql.Tx) error {
		for _, o := range outcomes {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO fix_outcomes (run_id, category, finding_id, state, reason, changed)
				VALUES (?, ?, ?, ?, ?, ?)`,
				runID, o.Finding.Category, o.Finding.ID, string(o.State), o.Reason,
				boolToInt(o.Changed),
			)
			if err != nil {
				return fmt.Errorf("failed to insert outcome %s: %w", o.Finding.Key(), err)
			}
		}
		return nil
	})
}

// ListRuns returns runs newest first, up to limit. Limit <= 0 returns all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT id, created_at, root, rule_sets, critical, high, medium, low, checks_passed, checks_failed
		FROM runs ORDER BY created_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads one run by id.
func (db *DB) GetRun(id string) (*Run, error) {
	rows, err := db.conn.Query(`
		SELECT id, created_at, root, rule_sets, critical, high, medium, low, checks_passed, checks_failed
		FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FindingsForRun returns a run's findings sorted by severity, category, id.
func (db *DB) FindingsForRun(runID string) ([]review.Finding, error) {
	rows, err := db.conn.Query(`
		SELECT category, finding_id, severity, title, file, line, auto_fixable, detail
		FROM findings WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []review.Finding
	for rows.Next() {
		var f review.Finding
		var sev string
		var fixable int
		if err := rows.Scan(&f.Category, &f.ID, &sev, &f.Title, &f.File, &f.Line, &fixable, &f.Detail); err != nil {
			return nil, err
		}
		f.Severity = review.Severity(sev)
		f.AutoFixable = fixable != 0
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.ID < b.ID
	})
	return findings, nil
}

// Diff compares the resolved rule sets and findings of two runs.
type Diff struct {
	AddedRuleSets   []string         `json:"addedRuleSets"`
	RemovedRuleSets []string         `json:"removedRuleSets"`
	NewFindings     []review.Finding `json:"newFindings"`
	FixedFindings   []review.Finding `json:"fixedFindings"`
}

// DiffRuns reports what changed from the older run to the newer one.
func (db *DB) DiffRuns(olderID, newerID string) (*Diff, error) {
	older, err := db.GetRun(olderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", olderID, err)
	}
	newer, err := db.GetRun(newerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", newerID, err)
	}

	diff := &Diff{
		AddedRuleSets:   missingFrom(newer.RuleSetIDs, older.RuleSetIDs),
		RemovedRuleSets: missingFrom(older.RuleSetIDs, newer.RuleSetIDs),
	}

	oldFindings, err := db.FindingsForRun(olderID)
	if err != nil {
		return nil, err
	}
	newFindings, err := db.FindingsForRun(newerID)
	if err != nil {
		return nil, err
	}

	oldKeys := make(map[string]bool, len(oldFindings))
	for _, f := range oldFindings {
		oldKeys[f.Key()] = true
	}
	newKeys := make(map[string]bool, len(newFindings))
	for _, f := range newFindings {
		newKeys[f.Key()] = true
	}

	for _, f := range newFindings {
		if !oldKeys[f.Key()] {
			diff.NewFindings = append(diff.NewFindings, f)
		}
	}
	for _, f := range oldFindings {
		if !newKeys[f.Key()] {
			diff.FixedFindings = append(diff.FixedFindings, f)
		}
	}
	return diff, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var createdAt, ruleSets string
	err := rows.Scan(&run.ID, &createdAt, &run.Root, &ruleSets,
		&run.Summary.Critical, &run.Summary.High, &run.Summary.Medium, &run.Summary.Low,
		&run.Summary.Passed, &run.Summary.Failed)
	if err != nil {
		return run, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return run, fmt.Errorf("failed to parse run timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(ruleSets), &run.RuleSetIDs); err != nil {
		return run, fmt.Errorf("failed to decode rule sets: %w", err)
	}
	return run, nil
}

// missingFrom returns the elements of a that are not in b, sorted.
func missingFrom(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[s] = true
	}
	var out []string
	for _, s := range a {
		if !in[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
