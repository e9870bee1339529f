package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"

	"learnhub/internal/event"
	"learnhub/internal/model"
)

// ProductIndex mirrors products into Elasticsearch for full text search.
type ProductIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewProductIndex(addresses []string, index string) (*ProductIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &ProductIndex{es: client, index: index}, nil
}

func (i *ProductIndex) Index(ctx context.Context, p model.Product) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	res, err := i.es.Index(i.index, &buf,
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(p.ID),
	)
	if err != nil {
		return fmt.Errorf("index product %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index product %s: %s: %s", p.ID, res.Status(), body)
	}
	return nil
}

func (i *ProductIndex) Search(ctx context.Context, query string, from, size int) (int64, []model.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"parent_title^2", "family", "generation", "texts_div"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search products: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search products: %s: %s", res.Status(), raw)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source model.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	products := make([]model.Product, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		products[n] = hit.Source
	}
	return r.Hits.Total.Value, products, nil
}

// Run keeps the index in step with product writes published on the bus.
func (i *ProductIndex) Run(ctx context.Context, bus event.Bus) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.Type != event.TypeProductCreated && e.Type != event.TypeProductUpdated {
				continue
			}

			product, ok := e.Payload.(model.Product)
			if !ok {
				continue
			}

			if err := i.Index(ctx, product); err != nil {
				slog.Error("search index update failed", "product_id", product.ID, "error", err)
			}
		}
	}
}
