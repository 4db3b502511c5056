package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/embedding"
	"github.com/ppiankov/basir/internal/model"
)

const (
	defaultTopK          = 15
	defaultMinSimilarity = 0.65
	defaultVectorField   = "vector"
)

// searcher is the part of client.Client used for retrieval
type searcher interface {
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string,
		vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int,
		sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	Close() error
}

// dialFunc opens a connection to Milvus
type dialFunc func(ctx context.Context, cfg client.Config) (searcher, error)

func dialMilvus(ctx context.Context, cfg client.Config) (searcher, error) {
	c, err := client.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MilvusRetriever runs COSINE similarity search against one Milvus
// collection per label. Every call opens and closes its own connection, so
// concurrent requests never share a client.
type MilvusRetriever struct {
	cfg         client.Config
	engine      embedding.Engine
	collections map[model.Label]Collection
	vectorField string
	topK        int
	minScore    float32
	dial        dialFunc
	logger      *zap.Logger
}

// Option customizes a MilvusRetriever
type Option func(*MilvusRetriever)

// WithCollections replaces the label -> collection map
func WithCollections(c map[model.Label]Collection) Option {
	return func(r *MilvusRetriever) { r.collections = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *MilvusRetriever) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewMilvusRetriever creates a retriever from configuration
func NewMilvusRetriever(cfg model.RetrievalConfig, engine embedding.Engine, opts ...Option) *MilvusRetriever {
	r := &MilvusRetriever{
		cfg: client.Config{
			Address:  cfg.Address,
			Username: cfg.Username,
			Password: cfg.Password,
			DBName:   cfg.Database,
		},
		engine:      engine,
		collections: DefaultCollections(),
		vectorField: cfg.VectorField,
		topK:        cfg.TopK,
		minScore:    float32(cfg.MinSimilarity),
		dial:        dialMilvus,
		logger:      zap.NewNop(),
	}
	if r.vectorField == "" {
		r.vectorField = defaultVectorField
	}
	if r.topK <= 0 {
		r.topK = defaultTopK
	}
	if cfg.MinSimilarity == 0 {
		r.minScore = defaultMinSimilarity
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds query and searches the collection bound to label.
func (r *MilvusRetriever) Retrieve(ctx context.Context, query string, label model.Label) (*Result, error) {
	canonical, ok := model.ParseLabel(string(label))
	if !ok {
		return nil, &UnknownLabelError{Label: strings.ToLower(strings.TrimSpace(string(label)))}
	}
	coll, ok := r.collections[canonical]
	if !ok {
		return nil, &UnknownLabelError{Label: string(canonical)}
	}

	vec, err := r.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	c, err := r.dial(ctx, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to milvus at %s: %w", r.cfg.Address, err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			r.logger.Warn("closing milvus client failed", zap.Error(cerr))
		}
	}()

	sp, err := entity.NewIndexFlatSearchParam()
	if err != nil {
		return nil, fmt.Errorf("search params: %w", err)
	}

	r.logger.Debug("searching collection",
		zap.String("label", string(canonical)),
		zap.String("collection", coll.Name),
		zap.Int("top_k", r.topK))

	results, err := c.Search(ctx, coll.Name, nil, "", coll.Fields,
		[]entity.Vector{entity.FloatVector(vec)}, r.vectorField, entity.COSINE, r.topK, sp)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", coll.Name, err)
	}

	out := NewResult(canonical)
	for _, res := range results {
		records, err := r.records(res, coll.Fields)
		if err != nil {
			return nil, fmt.Errorf("read %s results: %w", coll.Name, err)
		}
		out.Records = append(out.Records, records...)
	}

	r.logger.Info("retrieval finished",
		zap.String("label", string(canonical)),
		zap.Int("records", len(out.Records)))
	return out, nil
}

// records converts one result set, dropping hits below the similarity floor
func (r *MilvusRetriever) records(res client.SearchResult, fields []string) ([]model.Record, error) {
	if res.Err != nil {
		return nil, res.Err
	}

	var out []model.Record
	for i := 0; i < res.ResultCount; i++ {
		if i < len(res.Scores) && res.Scores[i] < r.minScore {
			continue
		}
		rec := make(model.Record, len(fields))
		for _, name := range fields {
			col := res.Fields.GetColumn(name)
			if col == nil {
				continue
			}
			v, err := col.Get(i)
			if err != nil {
				return nil, fmt.Errorf("field %s row %d: %w", name, i, err)
			}
			rec[name] = normalizeValue(v)
		}
		out = append(out, rec)
	}
	return out, nil
}

// normalizeValue turns column values into JSON-friendly scalars or lists
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		// JSON columns come back as raw bytes
		var decoded any
		if err := json.Unmarshal(val, &decoded); err == nil {
			return decoded
		}
		return string(val)
	case [][]byte:
		strs := make([]string, len(val))
		for i, b := range val {
			strs[i] = string(b)
		}
		return strs
	default:
		return v
	}
}
