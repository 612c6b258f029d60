package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Index keeps a product index in sync and answers full-text queries.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{ES: es, Name: name}
}

func (i *Index) Put(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("es: marshal product: %w", err)
	}

	res, err := i.ES.Index(i.Name, bytes.NewReader(data),
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("es: index product %d: %w", p.ID, err)
	}
	return checkResponse(res, false)
}

func (i *Index) Remove(ctx context.Context, id uint) error {
	res, err := i.ES.Delete(i.Name, strconv.FormatUint(uint64(id), 10),
		i.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete product %d: %w", id, err)
	}
	return checkResponse(res, true)
}

func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(query, from, size)); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("es: search: %s: %s", res.Status(), body)
	}

	return decodeHits(res.Body)
}

func searchBody(query string, from, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}
}

func decodeHits(r io.Reader) (int64, []models.Product, error) {
	var body struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return 0, nil, fmt.Errorf("es: decode hits: %w", err)
	}

	prods := make([]models.Product, len(body.Hits.Hits))
	for i, hit := range body.Hits.Hits {
		prods[i] = hit.Source
	}
	return body.Hits.Total.Value, prods, nil
}

func checkResponse(res *esapi.Response, allowNotFound bool) error {
	defer res.Body.Close()
	if !res.IsError() {
		return nil
	}
	if allowNotFound && res.StatusCode == 404 {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("es: %s: %s", res.Status(), body)
}
