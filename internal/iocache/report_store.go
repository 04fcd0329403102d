package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// Report store table names.
const (
	snapshotsTable     = "metrics_snapshots"
	conversationsTable = "agent_conversations"
)

const snapshotColumns = `id, timestamp, time_range, deployment_frequency, lead_time_hours,
	change_failure_rate, mttr_hours, total_churn, churn_rate, avg_commit_size, raw_metrics`

// ReportStoreImpl persists metrics snapshots and narrator conversations.
type ReportStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	now     func() time.Time
}

var _ contract.ReportStore = &ReportStoreImpl{} // Compile-time check

// NewReportStore opens the report store and applies pending migrations. The
// none backend returns a no-op store.
func NewReportStore(backend schema.DatabaseBackend, connStr string) (contract.ReportStore, error) {
	if backend == schema.NoneBackend {
		return &ReportStoreImpl{backend: backend, now: time.Now}, nil
	}

	db, err := openDB(backend, connStr, contract.GetReportDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report store: %w", err)
	}
	if err := runMigrations(db, backend, -1, io.Discard); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare report tables: %w", err)
	}
	return &ReportStoreImpl{db: db, backend: backend, now: time.Now}, nil
}

// SaveMetricsSnapshot stores the flattened metrics with the full structure as JSON.
func (rs *ReportStoreImpl) SaveMetricsSnapshot(metrics schema.Metrics, timeRange schema.TimeRange) error {
	if rs.db == nil {
		return nil
	}
	rec := schema.NewSnapshotRecord(metrics, timeRange, rs.now())
	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	query := rebind(fmt.Sprintf(`INSERT INTO %s (timestamp, time_range, deployment_frequency, lead_time_hours,
		change_failure_rate, mttr_hours, total_churn, churn_rate, avg_commit_size, raw_metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, quoteTableName(snapshotsTable, rs.backend)), rs.backend)
	_, err = rs.db.Exec(query,
		formatTime(rec.Timestamp, rs.backend), string(rec.TimeRange), rec.DeploymentFrequency, rec.LeadTimeHours,
		rec.ChangeFailureRate, rec.MTTRHours, rec.TotalChurn, rec.ChurnRate, rec.AvgCommitSize, string(raw))
	if err != nil {
		return fmt.Errorf("failed to insert metrics snapshot: %w", err)
	}
	return nil
}

// SaveConversation stores one narrator exchange. Prompt and response are
// truncated to schema.ConversationTextLimit characters.
func (rs *ReportStoreImpl) SaveConversation(agentName, prompt, response string) error {
	if rs.db == nil {
		return nil
	}
	query := rebind(fmt.Sprintf(`INSERT INTO %s (timestamp, agent_name, prompt, response) VALUES (?, ?, ?, ?)`,
		quoteTableName(conversationsTable, rs.backend)), rs.backend)
	_, err := rs.db.Exec(query,
		formatTime(rs.now(), rs.backend), agentName,
		contract.Truncate(prompt, schema.ConversationTextLimit),
		contract.Truncate(response, schema.ConversationTextLimit))
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// RecentSnapshots returns up to limit of the newest snapshots, oldest first.
func (rs *ReportStoreImpl) RecentSnapshots(limit int) ([]schema.SnapshotRecord, error) {
	if rs.db == nil || limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id DESC LIMIT %d",
		snapshotColumns, quoteTableName(snapshotsTable, rs.backend), limit)
	records, err := rs.querySnapshots(query)
	if err != nil {
		return nil, err
	}
	slices.Reverse(records)
	return records, nil
}

// GetAllSnapshots returns every snapshot, oldest first.
func (rs *ReportStoreImpl) GetAllSnapshots() ([]schema.SnapshotRecord, error) {
	if rs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", snapshotColumns, quoteTableName(snapshotsTable, rs.backend))
	return rs.querySnapshots(query)
}

func (rs *ReportStoreImpl) querySnapshots(query string) ([]schema.SnapshotRecord, error) {
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotRecord
	for rows.Next() {
		var (
			rec       schema.SnapshotRecord
			timeRange string
			raw       sql.NullString
			ts        = timeScanner{backend: rs.backend}
		)
		if err := rows.Scan(&rec.ID, ts.dest(), &timeRange, &rec.DeploymentFrequency, &rec.LeadTimeHours,
			&rec.ChangeFailureRate, &rec.MTTRHours, &rec.TotalChurn, &rec.ChurnRate, &rec.AvgCommitSize, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan metrics snapshot: %w", err)
		}
		if rec.Timestamp, err = ts.value(); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot timestamp: %w", err)
		}
		rec.TimeRange = schema.TimeRange(timeRange)
		rec.RawMetrics = raw.String
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metrics snapshots: %w", err)
	}
	return results, nil
}

// GetAllConversations returns every stored conversation, oldest first.
func (rs *ReportStoreImpl) GetAllConversations() ([]schema.ConversationRecord, error) {
	if rs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT id, timestamp, agent_name, prompt, response FROM %s ORDER BY id",
		quoteTableName(conversationsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ConversationRecord
	for rows.Next() {
		var (
			rec              schema.ConversationRecord
			prompt, response sql.NullString
			ts               = timeScanner{backend: rs.backend}
		)
		if err := rows.Scan(&rec.ID, ts.dest(), &rec.AgentName, &prompt, &response); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if rec.Timestamp, err = ts.value(); err != nil {
			return nil, fmt.Errorf("failed to parse conversation timestamp: %w", err)
		}
		rec.Prompt = prompt.String
		rec.Response = response.String
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return results, nil
}

// GetStatus returns row counts and the snapshot time span.
func (rs *ReportStoreImpl) GetStatus() (schema.ReportStatus, error) {
	status := schema.ReportStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	for _, table := range []string{snapshotsTable, conversationsTable} {
		var count int64
		row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalSnapshots = int(status.TableSizes[snapshotsTable])
	status.TotalConversations = int(status.TableSizes[conversationsTable])
	if status.TotalSnapshots == 0 {
		return status, nil
	}

	quoted := quoteTableName(snapshotsTable, rs.backend)
	for _, q := range []struct {
		order string
		dest  *time.Time
	}{
		{"DESC", &status.LastSnapshotTime},
		{"ASC", &status.OldestSnapshotTime},
	} {
		ts := timeScanner{backend: rs.backend}
		row := rs.db.QueryRow(fmt.Sprintf("SELECT timestamp FROM %s ORDER BY id %s LIMIT 1", quoted, q.order))
		if err := row.Scan(ts.dest()); err != nil {
			return status, fmt.Errorf("failed to get snapshot time: %w", err)
		}
		t, err := ts.value()
		if err != nil {
			return status, fmt.Errorf("failed to parse snapshot time: %w", err)
		}
		*q.dest = t
	}
	return status, nil
}

// Close closes the underlying connection.
func (rs *ReportStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
