package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// NewClickHouse creates a DataRecorder that writes into the ClickHouse
// database named by dsn, for example
// "clickhouse://localhost:9000/cachesim?username=default". Like New, it logs
// the execution in table exec_info and flushes at exit.
func NewClickHouse(dsn string) (DataRecorder, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing ClickHouse DSN: %w", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening ClickHouse connection: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to ClickHouse: %w", err)
	}

	r := withExecInfo(NewClickHouseWriter(conn))
	atexit.Register(r.end)

	return r, nil
}

// ClickHouseWriter is the writer that writes data into a ClickHouse database.
// Tables use the MergeTree engine and are created only if they do not exist,
// so that several runs can share them.
type ClickHouseWriter struct {
	conn clickhouse.Conn

	lock       sync.Mutex
	tables     map[string]*table
	tableNames []string
	batchSize  int
	entryCount int
	closed     bool
}

// NewClickHouseWriter creates a writer on an open connection.
func NewClickHouseWriter(conn clickhouse.Conn) *ClickHouseWriter {
	return &ClickHouseWriter{
		conn:      conn,
		tables:    make(map[string]*table),
		batchSize: defaultBatchSize,
	}
}

// WithBatchSize sets how many entries are buffered before an automatic flush.
func (w *ClickHouseWriter) WithBatchSize(n int) *ClickHouseWriter {
	w.batchSize = n
	return w
}

// CreateTable creates a table named after tableName.
func (w *ClickHouseWriter) CreateTable(tableName string, sampleEntry any) {
	query, err := clickHouseCreateTableSQL(tableName, sampleEntry)
	if err != nil {
		panic(err)
	}

	if err := w.conn.Exec(context.Background(), query); err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	w.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
		entries:    []any{},
	}
	w.tableNames = append(w.tableNames, tableName)
}

// InsertData buffers an entry. The type of the entry must match the sample
// used to create the table.
func (w *ClickHouseWriter) InsertData(tableName string, entry any) {
	w.lock.Lock()

	table, exists := w.tables[tableName]
	if !exists {
		w.lock.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != table.structType {
		w.lock.Unlock()
		panic(fmt.Sprintf("entry type %T does not match table %s",
			entry, tableName))
	}

	table.entries = append(table.entries, entry)
	w.entryCount++
	full := w.entryCount >= w.batchSize

	w.lock.Unlock()

	if full {
		w.Flush()
	}
}

// ListTables returns the tables in creation order.
func (w *ClickHouseWriter) ListTables() []string {
	w.lock.Lock()
	defer w.lock.Unlock()

	tables := make([]string, len(w.tableNames))
	copy(tables, w.tableNames)

	return tables
}

// Flush sends one batch per table.
func (w *ClickHouseWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.entryCount == 0 || w.closed {
		return
	}

	ctx := context.Background()

	for _, tableName := range w.tableNames {
		table := w.tables[tableName]
		if len(table.entries) == 0 {
			continue
		}

		if err := w.sendBatch(ctx, tableName, table.entries); err != nil {
			panic(err)
		}

		table.entries = nil
	}

	w.entryCount = 0
}

func (w *ClickHouseWriter) sendBatch(
	ctx context.Context,
	tableName string,
	entries []any,
) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
	if err != nil {
		return fmt.Errorf("preparing batch for %s: %w", tableName, err)
	}

	for _, entry := range entries {
		if err := batch.Append(clickHouseValues(entry)...); err != nil {
			return fmt.Errorf("appending to %s: %w", tableName, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("sending batch to %s: %w", tableName, err)
	}

	return nil
}

// Close flushes the buffered entries and closes the connection.
func (w *ClickHouseWriter) Close() error {
	w.Flush()

	w.lock.Lock()
	defer w.lock.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	return w.conn.Close()
}

func clickHouseCreateTableSQL(tableName string, sampleEntry any) (string, error) {
	if err := checkStructFields(sampleEntry); err != nil {
		return "", err
	}

	t := reflect.TypeOf(sampleEntry)
	columns := make([]string, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		columns[i] = field.Name + " " + clickHouseType(field.Type.Kind())
	}

	return "CREATE TABLE IF NOT EXISTS " + tableName + " (\n\t" +
		strings.Join(columns, ",\n\t") +
		"\n) ENGINE = MergeTree() ORDER BY tuple()", nil
}

func clickHouseType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int8:
		return "Int8"
	case reflect.Int16:
		return "Int16"
	case reflect.Int32:
		return "Int32"
	case reflect.Int, reflect.Int64:
		return "Int64"
	case reflect.Uint8:
		return "UInt8"
	case reflect.Uint16:
		return "UInt16"
	case reflect.Uint32:
		return "UInt32"
	case reflect.Uint, reflect.Uint64:
		return "UInt64"
	case reflect.Float32:
		return "Float32"
	case reflect.Float64:
		return "Float64"
	case reflect.String:
		return "String"
	default:
		panic(fmt.Sprintf("kind %s has no column type", kind))
	}
}

// clickHouseValues converts platform-sized integers, which the driver does not
// accept, to their 64-bit column types.
func clickHouseValues(entry any) []any {
	values := structs.Values(entry)

	for i, v := range values {
		switch v := v.(type) {
		case int:
			values[i] = int64(v)
		case uint:
			values[i] = uint64(v)
		}
	}

	return values
}
