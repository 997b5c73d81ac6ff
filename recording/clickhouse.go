package recording

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/tebeka/atexit"
)

// ClickHouseOptions locate the server a ClickHouse recorder writes to.
type ClickHouseOptions struct {
	Addr     string
	Database string
	Username string
	Password string
}

type chTableKind int

const (
	chTableAccess chTableKind = iota
	chTableAdmit
	chTableDealloc
	chTableConfig
	chTableSample
)

// clickHouseRecorder batches rows per table and bulk-inserts them over the
// native protocol. It keeps type-specific batches instead of reflecting
// over entries, so only the observer's row types are accepted.
type clickHouseRecorder struct {
	conn      driver.Conn
	mu        sync.Mutex
	batchSize int

	accessBatch  []AccessRow
	admitBatch   []AdmitRow
	deallocBatch []DeallocRow
	configBatch  []ConfigRow
	sampleBatch  []SystemSampleRow

	tables     map[string]chTableKind
	entryCount int
}

// NewClickHouseRecorder creates a DataRecorder that writes to a ClickHouse
// server. Connection failures panic at startup, never mid-run.
func NewClickHouseRecorder(opts ClickHouseOptions) DataRecorder {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      30 * time.Second,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	r := &clickHouseRecorder{
		conn:      conn,
		batchSize: 100000,
		tables:    make(map[string]chTableKind),
	}

	atexit.Register(func() { r.Flush() })

	return r
}

func (r *clickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var createSQL string
	var kind chTableKind

	switch sampleEntry.(type) {
	case AccessRow:
		kind = chTableAccess
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Time Float64,
				PID String,
				Page Int64,
				Hit Bool,
				Frame Int64,
				EvictedPID String,
				EvictedPage Int64,
				EvictedFrame Int64,
				Message String
			) ENGINE = MergeTree()
			ORDER BY Time
		`, tableName)
	case AdmitRow:
		kind = chTableAdmit
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Time Float64,
				PID String,
				Pages Int64
			) ENGINE = MergeTree()
			ORDER BY Time
		`, tableName)
	case DeallocRow:
		kind = chTableDealloc
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Time Float64,
				PID String,
				Frames Int64
			) ENGINE = MergeTree()
			ORDER BY Time
		`, tableName)
	case ConfigRow:
		kind = chTableConfig
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Time Float64,
				TotalKB Int64,
				FrameKB Int64,
				Algorithm String
			) ENGINE = MergeTree()
			ORDER BY Time
		`, tableName)
	case SystemSampleRow:
		kind = chTableSample
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Time Float64,
				TotalKB UInt64,
				UsedKB UInt64,
				AvailableKB UInt64,
				Percent Float64
			) ENGINE = MergeTree()
			ORDER BY Time
		`, tableName)
	default:
		panic(fmt.Sprintf("unknown table type: %T", sampleEntry))
	}

	err := r.conn.Exec(context.Background(), createSQL)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = kind
}

func (r *clickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	kind, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	switch kind {
	case chTableAccess:
		r.accessBatch = append(r.accessBatch, entry.(AccessRow))
	case chTableAdmit:
		r.admitBatch = append(r.admitBatch, entry.(AdmitRow))
	case chTableDealloc:
		r.deallocBatch = append(r.deallocBatch, entry.(DeallocRow))
	case chTableConfig:
		r.configBatch = append(r.configBatch, entry.(ConfigRow))
	case chTableSample:
		r.sampleBatch = append(r.sampleBatch, entry.(SystemSampleRow))
	}

	r.entryCount++

	if r.entryCount >= r.batchSize {
		r.mu.Unlock()
		r.Flush()
		return
	}

	r.mu.Unlock()
}

func (r *clickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, 0, len(r.tables))
	for name := range r.tables {
		tables = append(tables, name)
	}

	return tables
}

func (r *clickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, kind := range r.tables {
		switch kind {
		case chTableAccess:
			if len(r.accessBatch) > 0 {
				r.flushAccesses(ctx, tableName)
			}
		case chTableAdmit:
			if len(r.admitBatch) > 0 {
				r.flushAdmissions(ctx, tableName)
			}
		case chTableDealloc:
			if len(r.deallocBatch) > 0 {
				r.flushDeallocations(ctx, tableName)
			}
		case chTableConfig:
			if len(r.configBatch) > 0 {
				r.flushConfigs(ctx, tableName)
			}
		case chTableSample:
			if len(r.sampleBatch) > 0 {
				r.flushSamples(ctx, tableName)
			}
		}
	}

	r.entryCount = 0
}

func (r *clickHouseRecorder) Close() error {
	r.Flush()

	err := r.conn.Close()
	if err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}

	return nil
}

func (r *clickHouseRecorder) mustPrepareBatch(
	ctx context.Context,
	tableName string,
) driver.Batch {
	batch, err := r.conn.PrepareBatch(ctx,
		fmt.Sprintf("INSERT INTO %s", tableName))
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch for %s: %w",
			tableName, err))
	}

	return batch
}

func mustAppend(batch driver.Batch, values ...any) {
	err := batch.Append(values...)
	if err != nil {
		panic(fmt.Errorf("failed to append to batch: %w", err))
	}
}

func mustSend(batch driver.Batch) {
	err := batch.Send()
	if err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}
}

func (r *clickHouseRecorder) flushAccesses(
	ctx context.Context,
	tableName string,
) {
	batch := r.mustPrepareBatch(ctx, tableName)

	for _, row := range r.accessBatch {
		mustAppend(batch,
			row.Time,
			row.PID,
			int64(row.Page),
			row.Hit,
			int64(row.Frame),
			row.EvictedPID,
			int64(row.EvictedPage),
			int64(row.EvictedFrame),
			row.Message,
		)
	}

	mustSend(batch)
	r.accessBatch = r.accessBatch[:0]
}

func (r *clickHouseRecorder) flushAdmissions(
	ctx context.Context,
	tableName string,
) {
	batch := r.mustPrepareBatch(ctx, tableName)

	for _, row := range r.admitBatch {
		mustAppend(batch, row.Time, row.PID, int64(row.Pages))
	}

	mustSend(batch)
	r.admitBatch = r.admitBatch[:0]
}

func (r *clickHouseRecorder) flushDeallocations(
	ctx context.Context,
	tableName string,
) {
	batch := r.mustPrepareBatch(ctx, tableName)

	for _, row := range r.deallocBatch {
		mustAppend(batch, row.Time, row.PID, int64(row.Frames))
	}

	mustSend(batch)
	r.deallocBatch = r.deallocBatch[:0]
}

func (r *clickHouseRecorder) flushConfigs(
	ctx context.Context,
	tableName string,
) {
	batch := r.mustPrepareBatch(ctx, tableName)

	for _, row := range r.configBatch {
		mustAppend(batch,
			row.Time,
			int64(row.TotalKB),
			int64(row.FrameKB),
			row.Algorithm,
		)
	}

	mustSend(batch)
	r.configBatch = r.configBatch[:0]
}

func (r *clickHouseRecorder) flushSamples(
	ctx context.Context,
	tableName string,
) {
	batch := r.mustPrepareBatch(ctx, tableName)

	for _, row := range r.sampleBatch {
		mustAppend(batch,
			row.Time,
			row.TotalKB,
			row.UsedKB,
			row.AvailableKB,
			row.Percent,
		)
	}

	mustSend(batch)
	r.sampleBatch = r.sampleBatch[:0]
}
