// Package faqstore serves the FAQ question bank from Elasticsearch.
package faqstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	stderrors "vendor-portal-chatbot/internal/common/errors"
	"vendor-portal-chatbot/internal/common/logger"
	"vendor-portal-chatbot/internal/models"
)

// maxBankSize bounds the match_all page; the FAQ bank is a curated list, not
// an open corpus.
const maxBankSize = 1000

type Store struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func New(es *elasticsearch.Client, index string, log logger.Logger) *Store {
	return &Store{
		es:     es,
		index:  index,
		logger: log.With(map[string]interface{}{"store": "faq"}),
	}
}

// AllQuestions returns the whole question bank in a stable order so that
// fuzzy tie-breaking stays deterministic across calls.
func (s *Store) AllQuestions(ctx context.Context) ([]models.FAQRecord, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
		"sort": []interface{}{
			map[string]interface{}{"question.keyword": "asc"},
		},
	}
	body, _ := json.Marshal(queryBody)

	size := maxBankSize
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		s.logger.Error("faq search failed", map[string]interface{}{"error": err.Error()})
		return nil, stderrors.NewFAQStoreError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		err := fmt.Errorf("faq search error: %s", res.Status())
		s.logger.Error("faq search failed", map[string]interface{}{"status": res.Status()})
		return nil, stderrors.NewFAQStoreError(err)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.FAQRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, stderrors.NewFAQStoreError(err)
	}

	records := make([]models.FAQRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, hit.Source)
	}
	return records, nil
}

// Index writes one FAQ entry; used by the seeding tool.
func (s *Store) Index(ctx context.Context, rec models.FAQRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return stderrors.NewFAQStoreError(err)
	}

	res, err := s.es.Index(
		s.index,
		strings.NewReader(string(doc)),
		s.es.Index.WithContext(ctx),
	)
	if err != nil {
		return stderrors.NewFAQStoreError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return stderrors.NewFAQStoreError(fmt.Errorf("index error: %s", res.Status()))
	}
	return nil
}
