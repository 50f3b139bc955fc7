package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/fadedpez/tucocasino/internal/logging"
	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/google/uuid"
)

const roundMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"game_type": { "type": "keyword" },
			"game_id": { "type": "keyword" },
			"player_id": { "type": "keyword" },
			"bet": { "type": "scaled_float", "scaling_factor": 100 },
			"payout": { "type": "scaled_float", "scaling_factor": 100 },
			"outcome": { "type": "keyword" },
			"jackpot_win": { "type": "scaled_float", "scaling_factor": 100 },
			"completed_at": { "type": "date" }
		}
	}
}`

// ElasticsearchConfig holds configuration options for the Elasticsearch repository
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
}

// ElasticsearchRepository indexes rounds in monthly Elasticsearch indices on
// top of a base repository. Reads are served from Elasticsearch and fall back
// to the base repository when the cluster cannot answer.
type ElasticsearchRepository struct {
	baseRepo    Repository
	client      *elasticsearch.Client
	indexPrefix string
	logger      *logging.Logger

	mu      sync.Mutex
	indices map[string]bool
}

// NewElasticsearchRepository creates a new Elasticsearch repository
func NewElasticsearchRepository(baseRepo Repository, config ElasticsearchConfig, logger *logging.Logger) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	if config.IndexPrefix == "" {
		config.IndexPrefix = "tucocasino"
	}
	if logger == nil {
		logger = logging.Default
	}

	return &ElasticsearchRepository{
		baseRepo:    baseRepo,
		client:      client,
		indexPrefix: config.IndexPrefix,
		logger:      logger,
		indices:     make(map[string]bool),
	}, nil
}

// IndexName returns the monthly index a round belongs to
func (r *ElasticsearchRepository) IndexName(round *entities.RoundRecord) string {
	return r.indexMonthPrefix() + round.CompletedAt.UTC().Format("2006-01")
}

func (r *ElasticsearchRepository) indexMonthPrefix() string {
	return r.indexPrefix + "_rounds_"
}

func (r *ElasticsearchRepository) searchPattern() string {
	return r.indexMonthPrefix() + "*"
}

// ensureIndex creates the index with the round mapping if it doesn't exist
func (r *ElasticsearchRepository) ensureIndex(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indices[name] {
		return nil
	}

	res, err := r.client.Indices.Exists([]string{name}, r.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error checking if index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		req := esapi.IndicesCreateRequest{
			Index: name,
			Body:  bytes.NewReader([]byte(roundMapping)),
		}

		res, err := req.Do(ctx, r.client)
		if err != nil {
			return fmt.Errorf("error creating index %s: %w", name, err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("error creating index %s: %s", name, res.String())
		}
		r.logger.Info("Created Elasticsearch index %s", name)
	}

	r.indices[name] = true
	return nil
}

// SaveRound saves to the base repository, then indexes the round
func (r *ElasticsearchRepository) SaveRound(ctx context.Context, round *entities.RoundRecord) error {
	if round.ID == "" {
		round.ID = uuid.New().String()
	}

	if err := r.baseRepo.SaveRound(ctx, round); err != nil {
		return fmt.Errorf("error saving round to base repository: %w", err)
	}

	return r.IndexRound(ctx, round)
}

// IndexRound indexes a round in Elasticsearch
func (r *ElasticsearchRepository) IndexRound(ctx context.Context, round *entities.RoundRecord) error {
	index := r.IndexName(round)
	if err := r.ensureIndex(ctx, index); err != nil {
		return err
	}

	jsonData, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("error marshaling round: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: round.ID,
		Body:       bytes.NewReader(jsonData),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error indexing round: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing round: %s", res.String())
	}

	return nil
}

// GetPlayerRounds retrieves a player's rounds from Elasticsearch
func (r *ElasticsearchRepository) GetPlayerRounds(ctx context.Context, playerID string, limit int) ([]*entities.RoundRecord, error) {
	query := map[string]any{
		"term": map[string]any{"player_id": playerID},
	}

	rounds, err := r.search(ctx, query, limit)
	if err != nil {
		r.logger.Warn("Falling back to base repository for player %s rounds: %v", playerID, err)
		return r.baseRepo.GetPlayerRounds(ctx, playerID, limit)
	}
	return rounds, nil
}

// GetRecentRounds retrieves recent rounds from Elasticsearch
func (r *ElasticsearchRepository) GetRecentRounds(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RoundRecord, error) {
	query := map[string]any{"match_all": map[string]any{}}
	if gameType != "" {
		query = map[string]any{
			"term": map[string]any{"game_type": gameType},
		}
	}

	rounds, err := r.search(ctx, query, limit)
	if err != nil {
		r.logger.Warn("Falling back to base repository for recent %s rounds: %v", gameType, err)
		return r.baseRepo.GetRecentRounds(ctx, gameType, limit)
	}
	return rounds, nil
}

func (r *ElasticsearchRepository) search(ctx context.Context, query map[string]any, limit int) ([]*entities.RoundRecord, error) {
	body, err := json.Marshal(map[string]any{
		"query": query,
		"sort": []any{
			map[string]any{"completed_at": map[string]any{"order": "desc"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.searchPattern()),
		r.client.Search.WithBody(bytes.NewReader(body)),
		r.client.Search.WithSize(limit),
		r.client.Search.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return nil, fmt.Errorf("error searching rounds: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching rounds: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source entities.RoundRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing search response: %w", err)
	}

	rounds := make([]*entities.RoundRecord, 0, len(result.Hits.Hits))
	for i := range result.Hits.Hits {
		rounds = append(rounds, &result.Hits.Hits[i].Source)
	}
	return rounds, nil
}

// GetIndices lists the round indices present in the cluster
func (r *ElasticsearchRepository) GetIndices(ctx context.Context) ([]string, error) {
	res, err := r.client.Cat.Indices(
		r.client.Cat.Indices.WithContext(ctx),
		r.client.Cat.Indices.WithIndex(r.searchPattern()),
		r.client.Cat.Indices.WithFormat("json"),
		r.client.Cat.Indices.WithH("index"),
	)
	if err != nil {
		return nil, fmt.Errorf("error listing indices: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error listing indices: %s", res.String())
	}

	var rows []struct {
		Index string `json:"index"`
	}
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("error parsing index list: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Index)
	}
	sort.Strings(names)
	return names, nil
}

// PruneIndices deletes monthly round indices older than retentionMonths
// before now. The base repository keeps every round. It returns the number
// of indices deleted.
func (r *ElasticsearchRepository) PruneIndices(ctx context.Context, retentionMonths int, now time.Time) (int, error) {
	if retentionMonths < 1 {
		return 0, fmt.Errorf("retention must be at least one month, got %d", retentionMonths)
	}

	names, err := r.GetIndices(ctx)
	if err != nil {
		return 0, err
	}

	now = now.UTC()
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -retentionMonths+1, 0)

	deleted := 0
	for _, name := range names {
		month, err := time.Parse("2006-01", strings.TrimPrefix(name, r.indexMonthPrefix()))
		if err != nil {
			r.logger.Warn("Skipping index %s with unexpected name", name)
			continue
		}
		if !month.Before(cutoff) {
			continue
		}

		res, err := r.client.Indices.Delete([]string{name}, r.client.Indices.Delete.WithContext(ctx))
		if err != nil {
			return deleted, fmt.Errorf("error deleting index %s: %w", name, err)
		}
		res.Body.Close()
		if res.IsError() {
			return deleted, fmt.Errorf("error deleting index %s: %s", name, res.String())
		}

		r.mu.Lock()
		delete(r.indices, name)
		r.mu.Unlock()

		r.logger.Info("Deleted Elasticsearch index %s", name)
		deleted++
	}
	return deleted, nil
}

// Close closes the base repository
func (r *ElasticsearchRepository) Close() error {
	return r.baseRepo.Close()
}
