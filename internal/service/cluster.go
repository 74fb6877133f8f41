package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"classpulse/internal/model"
	"classpulse/internal/repository"
)

const (
	minEmbeddingsForClustering = 2
	embeddingFetchLimit        = 1000
	defaultClusterCount        = 5

	kmeansSeed    = 42
	kmeansInits   = 10
	kmeansMaxIter = 100

	fallbackClusterLabel = "unlabeled theme"

	maxLabelExamples   = 5
	maxKeywordTexts    = 10
	maxClusterExamples = 3
	labelConcurrency   = 4
)

// ClusterService groups a subject's responses into themes by k-means over
// their embeddings, then labels each theme via the LLM.
type ClusterService struct {
	embeddings repository.EmbeddingRepo
	llm        LLMProvider
	logger     *zap.Logger
}

func NewClusterService(embeddings repository.EmbeddingRepo, llm LLMProvider, logger *zap.Logger) *ClusterService {
	return &ClusterService{
		embeddings: embeddings,
		llm:        llm,
		logger:     logger,
	}
}

// adjustClusterCount shrinks the requested cluster count for small samples:
// always 2 clusters below 4 points, at least 2 and at most n/2 below the
// requested count, and never more clusters than points.
func adjustClusterCount(requested, n int) int {
	var adjusted int
	switch {
	case n < 4:
		adjusted = 2
	case n < requested:
		adjusted = n / 2
		if adjusted > requested {
			adjusted = requested
		}
		if adjusted < 2 {
			adjusted = 2
		}
	default:
		adjusted = requested
	}
	if adjusted > n {
		adjusted = n
	}
	return adjusted
}

// Cluster partitions all of a subject's response embeddings into themes.
// Fails with InsufficientDataError when fewer than 2 embeddings exist.
func (s *ClusterService) Cluster(ctx context.Context, subjectID string, requestedClusters int) (*model.ClusterResult, error) {
	if requestedClusters <= 0 {
		requestedClusters = defaultClusterCount
	}

	// A nil query vector with a zero threshold is the "fetch everything"
	// idiom; the limit is a hard ceiling on responses considered per run.
	results, err := s.embeddings.FindSimilar(ctx, nil, subjectID, embeddingFetchLimit, 0.0)
	if err != nil {
		return nil, fmt.Errorf("fetching embeddings: %w", err)
	}

	// Vectors written under a different embedding model disagree on
	// dimension and cannot share a metric space; drop them instead of
	// letting the distance loop index out of range.
	if len(results) > 0 {
		dims := len(results[0].Record.Vector)
		kept := make([]model.SimilarEmbedding, 0, len(results))
		for _, r := range results {
			if len(r.Record.Vector) != dims {
				s.logger.Warn("skipping embedding with mismatched dimension",
					zap.String("embeddingId", r.Record.ID),
					zap.Int("expected", dims),
					zap.Int("actual", len(r.Record.Vector)))
				continue
			}
			kept = append(kept, r)
		}
		results = kept
	}

	n := len(results)
	if n < minEmbeddingsForClustering {
		return nil, &model.InsufficientDataError{
			Op:          "response clustering",
			MinRequired: minEmbeddingsForClustering,
			Actual:      n,
		}
	}

	k := adjustClusterCount(requestedClusters, n)
	s.logger.Info("clustering responses",
		zap.String("subjectId", subjectID),
		zap.Int("responses", n),
		zap.Int("requestedClusters", requestedClusters),
		zap.Int("adjustedClusters", k))

	data := make([][]float64, n)
	for i, r := range results {
		data[i] = r.Record.Vector
	}
	assignments := kMeans(standardize(data), k, kmeansSeed, kmeansInits, kmeansMaxIter)

	// Hard partition by assigned cluster, in cluster-index order.
	texts := make([][]string, k)
	responseIDs := make([][]string, k)
	for i, r := range results {
		c := assignments[i]
		texts[c] = append(texts[c], r.Record.Text)
		responseIDs[c] = append(responseIDs[c], r.Record.ResponseID)
	}

	clusters := make([]model.Cluster, 0, k)
	memberTexts := make([][]string, 0, k)
	for c := 0; c < k; c++ {
		if len(texts[c]) == 0 {
			continue
		}
		memberTexts = append(memberTexts, texts[c])
		clusters = append(clusters, model.Cluster{
			ID:    fmt.Sprintf("cluster_%d", c),
			Label: fallbackClusterLabel,
			Count: len(texts[c]),
			// TODO: score cluster sentiment from member texts.
			Sentiment:   0.0,
			Keywords:    []string{},
			Examples:    firstN(texts[c], maxClusterExamples),
			ResponseIDs: responseIDs[c],
		})
	}

	s.labelClusters(ctx, clusters, memberTexts)

	return &model.ClusterResult{
		Clusters:          clusters,
		TotalResponses:    n,
		RequestedClusters: requestedClusters,
		AdjustedClusters:  k,
	}, nil
}

// labelClusters fills in labels and keywords concurrently. A provider
// failure degrades that cluster to the fallback label and empty keywords
// without aborting the run.
func (s *ClusterService) labelClusters(ctx context.Context, clusters []model.Cluster, memberTexts [][]string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(labelConcurrency)

	for i := range clusters {
		i := i
		g.Go(func() error {
			label, err := s.llm.GenerateClusterLabel(gctx, firstN(memberTexts[i], maxLabelExamples))
			if err != nil {
				s.logger.Warn("cluster labeling failed",
					zap.String("clusterId", clusters[i].ID),
					zap.Error(err))
			} else if label != "" {
				clusters[i].Label = label
			}

			keywords, err := s.llm.ExtractKeywords(gctx, firstN(memberTexts[i], maxKeywordTexts))
			if err != nil {
				s.logger.Warn("keyword extraction failed",
					zap.String("clusterId", clusters[i].ID),
					zap.Error(err))
				return nil
			}
			clusters[i].Keywords = keywords
			return nil
		})
	}
	g.Wait()
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
