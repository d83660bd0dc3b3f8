package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/qdrant/go-client/qdrant"

	"github.com/akishore/ComplyAPI/internal/adapter/utils"
	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control/vectordb"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQuadrantClient(ctx context.Context) vectordb.Index {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: quadrantInstance,
	}
}

func newClient(ctx context.Context) *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	// Probe availability up front so main can fall back to the in-memory
	// index instead of failing every document later
	pingCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if _, err := client.ListCollections(pingCtx); err != nil {
		logger.Error("Qdrant is unreachable", "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Create(ctx context.Context) (vectordb.Handle, error) {
	name := "doc-" + utils.GetNewUUID()

	err := db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return "", fmt.Errorf("qdrant create collection failed: %w", err)
	}
	logger.Debug("Created collection", "name", name)
	return vectordb.Handle(name), nil
}

func (db *ClientHolder) Add(ctx context.Context, h vectordb.Handle, ids []string, vectors [][]float32, documents []string) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) {
		return fmt.Errorf("mismatch: %d ids, %d vectors, %d documents", len(ids), len(vectors), len(documents))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(ids))
	for i := range ids {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(ids[i]),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":  documents[i],
				"chunk_id": ids[i],
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: string(h),
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, h vectordb.Handle, vector []float32, k int) ([]vectordb.Match, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: string(h),
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]vectordb.Match, 0, len(result))
	for _, hit := range result {
		matches = append(matches, vectordb.Match{
			ID:   hit.Payload["chunk_id"].GetStringValue(),
			Text: hit.Payload["content"].GetStringValue(),
			// qdrant reports cosine similarity, invert to a distance so the
			// executor ranks ascending
			Distance: 1 - hit.Score,
		})
	}
	return matches, nil
}

func (db *ClientHolder) Peek(ctx context.Context, h vectordb.Handle, limit int) ([]vectordb.Match, error) {
	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: string(h),
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	matches := make([]vectordb.Match, 0, len(points))
	for _, p := range points {
		matches = append(matches, vectordb.Match{
			ID:   p.Payload["chunk_id"].GetStringValue(),
			Text: p.Payload["content"].GetStringValue(),
		})
	}
	return matches, nil
}

func (db *ClientHolder) Delete(ctx context.Context, h vectordb.Handle) error {
	if h == "" {
		return errors.New("empty collection handle")
	}

	exists, err := db.QObj.CollectionExists(ctx, string(h))
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if err := db.QObj.DeleteCollection(ctx, string(h)); err != nil {
		return fmt.Errorf("qdrant delete collection failed: %w", err)
	}
	logger.Debug("Deleted collection", "name", h)
	return nil
}
