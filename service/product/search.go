package product

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"cafe.GO/model/catalog"
)

// Searcher queries and maintains the product index in Elasticsearch. A nil
// or unconfigured Searcher is disabled.
type Searcher struct {
	client *elasticsearch.Client
	index  string
	logger *zap.Logger
}

// NewSearcher connects to host. An empty host yields a disabled Searcher.
func NewSearcher(host, index string, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if index == "" {
		index = "cafe_products"
	}
	s := &Searcher{index: index, logger: logger}
	if host == "" {
		return s
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: strings.Split(host, ","),
	})
	if err != nil {
		logger.Warn("elasticsearch disabled", zap.String("host", host), zap.Error(err))
		return s
	}
	s.client = client
	return s
}

func (s *Searcher) Enabled() bool {
	return s != nil && s.client != nil
}

// Search returns ids of products matching query, best match first.
func (s *Searcher) Search(ctx context.Context, query string, size int) ([]string, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("elasticsearch not configured")
	}
	body := map[string]interface{}{
		"size":    size,
		"_source": []string{"id"},
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^3", "category^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Hits []struct {
				ID     string `json:"_id"`
				Source struct {
					ID string `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		id := hit.Source.ID
		if id == "" {
			id = hit.ID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type indexDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       string   `json:"price"`
	Currency    string   `json:"currency"`
	Featured    bool     `json:"featured"`
	Images      []string `json:"images"`
}

func docFor(p catalog.Product) indexDoc {
	return indexDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.StringFixed(2),
		Currency:    p.Currency,
		Featured:    p.Featured,
		Images:      p.Images,
	}
}

// Index writes one product document.
func (s *Searcher) Index(ctx context.Context, p catalog.Product) error {
	if !s.Enabled() {
		return nil
	}
	body, err := json.Marshal(docFor(p))
	if err != nil {
		return err
	}
	res, err := s.client.Index(s.index, bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(p.ID),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch index error: %s", res.String())
	}
	return nil
}

// IndexAll bulk-writes products.
func (s *Searcher) IndexAll(ctx context.Context, products []catalog.Product) error {
	if !s.Enabled() || len(products) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]interface{}{"index": map[string]string{"_index": s.index, "_id": p.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(docFor(p)); err != nil {
			return err
		}
	}
	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()), s.client.Bulk.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch bulk error: %s", res.String())
	}
	s.logger.Info("products indexed", zap.Int("count", len(products)), zap.String("index", s.index))
	return nil
}
