package store

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"cmdbgroup/internal/cypher"
	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/messages"
	"cmdbgroup/internal/util"
	pkgutil "cmdbgroup/pkg/util"
)

// Publisher 保存或计算完成后发布通知。
type Publisher interface {
	Publish(msgs ...messages.Message)
}

// Options 控制批量写入与重试。
type Options struct {
	ProjectID    string
	BatchSize    int
	RetryTimes   int
	RetryBackoff time.Duration
}

// Store 把项目库存保存在 Neo4j 中，同时实现 snapshot.Source 与 messages.Saver。
type Store struct {
	runner    Runner
	publisher Publisher
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

// New 创建 Store。
func New(runner Runner, publisher Publisher, opts Options, logger *zap.Logger) *Store {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	if opts.RetryTimes <= 0 {
		opts.RetryTimes = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{runner: runner, publisher: publisher, logger: logger, opts: opts, now: time.Now}
}

// EnsureSchema 初始化约束和索引。
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range cypher.Statements("init_schema.cql") {
		if err := s.runner.RunWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("执行 schema 语句失败: %w", err)
		}
	}
	return nil
}

// Save 校验并写入整份快照，旧数据按 run id 清理。写入完成后发布带 request id 的 changed 通知。
func (s *Store) Save(ctx context.Context, m domain.Model) (messages.SaveReceipt, error) {
	if err := m.Validate(); err != nil {
		return messages.SaveReceipt{}, &messages.SaveError{Status: http.StatusUnprocessableEntity, Message: err.Error()}
	}
	fingerprint, err := pkgutil.Fingerprint(m)
	if err != nil {
		return messages.SaveReceipt{}, err
	}
	runID := uuid.NewString()
	now := s.now().UTC()
	nodes, rels := BuildRows(s.opts.ProjectID, m, now)

	start := time.Now()
	if err := s.writeNodes(ctx, runID, nodes); err != nil {
		return messages.SaveReceipt{}, err
	}
	if err := s.writeRels(ctx, runID, rels); err != nil {
		return messages.SaveReceipt{}, err
	}
	scope := map[string]any{"project_id": s.opts.ProjectID, "run_id": runID}
	for _, name := range []string{"clean_stale_rels.cql", "clean_stale_nodes.cql"} {
		if err := s.write(ctx, cypher.MustAsset(name), scope); err != nil {
			return messages.SaveReceipt{}, fmt.Errorf("清理旧数据失败: %w", err)
		}
	}
	inventory := map[string]any{
		"project_id":  s.opts.ProjectID,
		"run_id":      runID,
		"fingerprint": fingerprint,
		"updated_at":  now,
	}
	if err := s.write(ctx, cypher.MustAsset("save_inventory.cql"), inventory); err != nil {
		return messages.SaveReceipt{}, fmt.Errorf("写入库存元数据失败: %w", err)
	}

	receipt := messages.SaveReceipt{RequestID: runID, EntityID: s.opts.ProjectID}
	s.logger.Info("库存已保存",
		zap.String("request_id", runID),
		zap.Int("nodes", len(nodes)),
		zap.Int("rels", len(rels)),
		zap.Duration("duration", time.Since(start)))
	s.publish(messages.Message{
		RoutingKey: messages.RoutingChangedPrefix + ".inventory",
		Data:       messages.Data{EntityID: s.opts.ProjectID, RequestID: runID},
	})
	return receipt, nil
}

func (s *Store) writeNodes(ctx context.Context, runID string, rows []domain.NodeRow) error {
	grouped := make(map[string][]domain.NodeRow)
	patterns := make(map[string]string)
	for _, row := range rows {
		key := domain.JoinLabels(row.Labels)
		grouped[key] = append(grouped[key], row)
		patterns[key] = domain.LabelPattern(row.Labels)
	}
	for _, key := range sortedKeys(grouped) {
		query := cypher.MustTemplate("upsert_nodes.cql", map[string]string{"LabelPattern": patterns[key]})
		for _, chunk := range pkgutil.Batch(grouped[key], s.opts.BatchSize) {
			params := map[string]any{"rows": toNodeParameters(chunk), "run_id": runID}
			if err := s.write(ctx, query, params); err != nil {
				return fmt.Errorf("写入节点失败 labels=%s: %w", key, err)
			}
		}
	}
	return nil
}

func (s *Store) writeRels(ctx context.Context, runID string, rows []domain.RelRow) error {
	grouped := make(map[string][]domain.RelRow)
	for _, row := range rows {
		grouped[row.Type] = append(grouped[row.Type], row)
	}
	for _, relType := range sortedKeys(grouped) {
		query := cypher.MustTemplate("upsert_rels.cql", map[string]string{"RelType": ":" + relType})
		for _, chunk := range pkgutil.Batch(grouped[relType], s.opts.BatchSize) {
			params := map[string]any{"rows": toRelParameters(chunk), "run_id": runID}
			if err := s.write(ctx, query, params); err != nil {
				return fmt.Errorf("写入关系失败 type=%s: %w", relType, err)
			}
		}
	}
	return nil
}

func (s *Store) write(ctx context.Context, query string, params map[string]any) error {
	return util.Retry(ctx, s.opts.RetryTimes, s.opts.RetryBackoff, func() error {
		err := s.runner.RunWrite(ctx, query, params)
		// 语法、约束等错误重试也不会成功
		if err != nil && !neo4j.IsRetryable(err) {
			return util.Permanent(err)
		}
		return err
	})
}

func (s *Store) publish(msgs ...messages.Message) {
	if s.publisher != nil {
		s.publisher.Publish(msgs...)
	}
}

// Fetch 从图中还原库存快照。
func (s *Store) Fetch(ctx context.Context) (domain.Model, error) {
	params := map[string]any{"project_id": s.opts.ProjectID}
	read := func(name string) ([]map[string]any, error) {
		records, err := s.runner.RunRead(ctx, cypher.MustAsset(name), params)
		if err != nil {
			return nil, fmt.Errorf("读取 %s 失败: %w", name, err)
		}
		return records, nil
	}

	var m domain.Model
	nodeRecs, err := read("fetch_nodes.cql")
	if err != nil {
		return m, err
	}
	appRecs, err := read("fetch_applications.cql")
	if err != nil {
		return m, err
	}
	mgRecs, err := read("fetch_movegroups.cql")
	if err != nil {
		return m, err
	}
	propRecs, err := read("fetch_properties.cql")
	if err != nil {
		return m, err
	}
	valueRecs, err := read("fetch_values.cql")
	if err != nil {
		return m, err
	}
	return decodeModel(nodeRecs, appRecs, mgRecs, propRecs, valueRecs), nil
}

// GroupCount 一次计算的结果：迁移组内未排除的节点数量。
type GroupCount struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NodeCount int64  `json:"node_count"`
}

// StartRun 执行一次本地计算，依次发布 started、finished 与 changed 通知。
func (s *Store) StartRun(ctx context.Context) error {
	entity := messages.Data{EntityID: s.opts.ProjectID}
	s.publish(messages.Message{RoutingKey: messages.RoutingRunStarted, Data: entity})
	err := s.write(ctx, cypher.MustAsset("calculate.cql"), map[string]any{
		"project_id":    s.opts.ProjectID,
		"calculated_at": s.now().UTC(),
	})
	// finished 总是发布，避免页面一直处于计算中。
	finished := entity
	if err != nil {
		finished.Text = err.Error()
	}
	s.publish(messages.Message{RoutingKey: messages.RoutingRunFinished, Data: finished})
	if err != nil {
		s.publish(messages.Message{RoutingKey: messages.RoutingChangedPrefix, Data: entity})
		return fmt.Errorf("计算失败: %w", err)
	}
	s.logger.Info("计算完成", zap.String("project_id", s.opts.ProjectID))
	s.publish(messages.Message{RoutingKey: messages.RoutingChangedPrefix + ".calculation", Data: entity})
	return nil
}

// Calculation 读取最近一次计算结果。
func (s *Store) Calculation(ctx context.Context) ([]GroupCount, error) {
	records, err := s.runner.RunRead(ctx, cypher.MustAsset("fetch_calculation.cql"), map[string]any{"project_id": s.opts.ProjectID})
	if err != nil {
		return nil, fmt.Errorf("读取计算结果失败: %w", err)
	}
	out := make([]GroupCount, 0, len(records))
	for _, r := range records {
		out = append(out, GroupCount{ID: asString(r["id"]), Name: asString(r["name"]), NodeCount: asInt(r["node_count"])})
	}
	return out, nil
}

func toNodeParameters(rows []domain.NodeRow) []map[string]any {
	res := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		res = append(res, map[string]any{
			"key":        row.Key,
			"properties": row.Properties,
			"project_id": row.ProjectID,
			"updated_at": row.UpdatedAt,
		})
	}
	return res
}

func toRelParameters(rows []domain.RelRow) []map[string]any {
	res := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		res = append(res, map[string]any{
			"start_key":  row.StartKey,
			"end_key":    row.EndKey,
			"properties": row.Properties,
			"project_id": row.ProjectID,
		})
	}
	return res
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
