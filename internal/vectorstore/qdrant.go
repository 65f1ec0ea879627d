// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vectorstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/nmjlab/papergraph/pkg/types"
)

// pointNamespace seeds the deterministic UUIDs derived from paper ids.
// Changing it orphans every stored point.
var pointNamespace = uuid.MustParse("8f8b9c52-7e0e-4d8a-b0a3-64cba7a0e5d1")

// payloadIDKey is the payload field holding the paper's external id.
const payloadIDKey = "paper_id"

// Qdrant adapts a qdrant instance to the Store contract. Each namespace
// maps to its own collection named "<prefix>_<namespace>", created lazily
// on first upsert with cosine distance, which pins the index's native query
// metric to cosine. Paper ids are opaque strings and not necessarily UUIDs,
// but qdrant only accepts UUID or integer point ids, so each point id is a
// SHA1 UUID derived from the paper id and the paper id itself travels in
// the point payload for the read paths.
type Qdrant struct {
	client  *qdrant.Client
	cfg     types.VectorStoreConfig
	timeout time.Duration

	mu    sync.Mutex
	known map[string]bool // collections verified to exist
}

// NewQdrant connects to the configured qdrant instance. Host defaults to
// localhost, port to 6334, the collection prefix to "papers" and the call
// timeout to 10 seconds.
func NewQdrant(cfg types.VectorStoreConfig) (*Qdrant, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.CollectionPrefix == "" {
		cfg.CollectionPrefix = "papers"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Qdrant{
		client:  client,
		cfg:     cfg,
		timeout: timeout,
		known:   make(map[string]bool),
	}, nil
}

// Close releases the underlying gRPC connection.
func (s *Qdrant) Close() error {
	return s.client.Close()
}

func (s *Qdrant) collection(namespace string) string {
	return s.cfg.CollectionPrefix + "_" + namespace
}

// ensureCollection creates the namespace's collection if it does not exist
// yet, sized to the vector being written.
func (s *Qdrant) ensureCollection(ctx context.Context, namespace string, dim int) error {
	name := s.collection(namespace)

	s.mu.Lock()
	verified := s.known[name]
	s.mu.Unlock()
	if verified {
		return nil
	}

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !exists {
		size := s.cfg.VectorSize
		if size <= 0 {
			size = dim
		}
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(size),
						Distance: qdrant.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("%w: create collection %s: %v", ErrUnavailable, name, err)
		}
	}

	s.mu.Lock()
	s.known[name] = true
	s.mu.Unlock()
	return nil
}

// Upsert writes the vector for id into the namespace's collection.
func (s *Qdrant) Upsert(ctx context.Context, id string, vec types.Vector, namespace string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.ensureCollection(ctx, namespace, len(vec)); err != nil {
		return err
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection(namespace),
		Points: []*qdrant.PointStruct{{
			Id:      pointID(id),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{payloadIDKey: id}),
		}},
	})
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrUnavailable, id, err)
	}
	return nil
}

// Query returns the k nearest ids by the collection's native metric, in the
// index's own relevance order.
func (s *Qdrant) Query(ctx context.Context, vec types.Vector, k int, namespace string) ([]types.CandidateScore, error) {
	if k <= 0 {
		return []types.CandidateScore{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	limit := uint64(k)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection(namespace),
		Limit:          &limit,
		Query:          qdrant.NewQuery(vec...),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrUnavailable, err)
	}

	out := make([]types.CandidateScore, 0, len(resp))
	for _, r := range resp {
		out = append(out, types.CandidateScore{
			ID:    payloadID(r.Payload, r.Id),
			Score: float64(r.Score),
		})
	}
	return out, nil
}

// Fetch returns the stored vectors for ids. Ids with no stored vector are
// omitted from the result.
func (s *Qdrant) Fetch(ctx context.Context, ids []string, namespace string) ([]types.Candidate, error) {
	if len(ids) == 0 {
		return []types.Candidate{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	resp, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection(namespace),
		Ids:            pointIDs,
		WithVectors:    qdrant.NewWithVectors(true),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", ErrUnavailable, err)
	}

	out := make([]types.Candidate, 0, len(resp))
	for _, r := range resp {
		vecs := r.Vectors.GetVector()
		if vecs == nil || len(vecs.Data) == 0 {
			continue
		}
		out = append(out, types.Candidate{
			ID:     payloadID(r.Payload, r.Id),
			Vector: vecs.Data,
		})
	}
	return out, nil
}

// pointID derives the UUID point id for a paper id. The derivation is
// deterministic, so the same paper id always addresses the same point.
func pointID(id string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(pointNamespace, []byte(id)).String())
}

// payloadID reads the paper id from a point's payload, falling back to the
// point id's own string form when the payload lacks one.
func payloadID(payload map[string]*qdrant.Value, id *qdrant.PointId) string {
	if v, ok := payload[payloadIDKey]; ok {
		if s := v.GetStringValue(); s != "" {
			return s
		}
	}
	return pointIDString(id)
}

// pointIDString converts a qdrant point id back to its string form.
func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch x := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return x.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", x.Num)
	}
	return ""
}
