// Package report persists completed analyses and renders them for the
// console.
package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"feasly/backend/internal/feasibility"
)

var ErrNotFound = errors.New("report not found")

// Report is one persisted analysis run.
type Report struct {
	ID          string               `json:"id"`
	ProjectName string               `json:"projectName"`
	Description string               `json:"description"`
	Depth       feasibility.Depth    `json:"depth"`
	Decision    feasibility.Decision `json:"decision"`
	CreatedAt   string               `json:"createdAt"`
}

// Summary is the listing row, without the full decision payload.
type Summary struct {
	ID           string                  `json:"id"`
	ProjectName  string                  `json:"projectName"`
	Feasibility  feasibility.Feasibility `json:"overallFeasibility"`
	OverallScore float64                 `json:"overallScore"`
	CreatedAt    string                  `json:"createdAt"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return Store{db: db}
}

func (s Store) Save(ctx context.Context, req feasibility.ProjectRequest, decision feasibility.Decision) (Report, error) {
	payload, err := json.Marshal(decision)
	if err != nil {
		return Report{}, fmt.Errorf("marshal decision: %w", err)
	}

	report := Report{
		ID:          uuid.NewString(),
		ProjectName: req.ProjectName,
		Description: req.Description,
		Depth:       req.Depth,
		Decision:    decision,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	query := `INSERT INTO reports (id, project_name, description, depth, decision, created_at) VALUES (?, ?, ?, ?, ?, ?);`
	if _, err := s.db.ExecContext(ctx, query, report.ID, report.ProjectName, report.Description, string(report.Depth), string(payload), report.CreatedAt); err != nil {
		return Report{}, fmt.Errorf("save report: %w", err)
	}
	return report, nil
}

func (s Store) Get(ctx context.Context, id string) (Report, error) {
	query := `SELECT id, project_name, description, depth, decision, created_at FROM reports WHERE id = ? LIMIT 1;`

	var out Report
	var depth, payload string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&out.ID, &out.ProjectName, &out.Description, &depth, &payload, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("get report: %w", err)
	}

	out.Depth = feasibility.Depth(depth)
	if err := json.Unmarshal([]byte(payload), &out.Decision); err != nil {
		return Report{}, fmt.Errorf("decode report decision: %w", err)
	}
	return out, nil
}

func (s Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, project_name, decision, created_at FROM reports ORDER BY created_at DESC LIMIT ?;`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var summary Summary
		var payload string
		if err := rows.Scan(&summary.ID, &summary.ProjectName, &payload, &summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		var decision feasibility.Decision
		if err := json.Unmarshal([]byte(payload), &decision); err != nil {
			return nil, fmt.Errorf("decode report decision: %w", err)
		}
		summary.Feasibility = decision.Feasibility
		summary.OverallScore = decision.OverallScore
		out = append(out, summary)
	}
	return out, rows.Err()
}
