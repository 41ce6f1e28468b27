// Package elasticsearch implements connector.CommandConnector for
// Elasticsearch sources via elastic/go-elasticsearch/v8. execute_command
// accepts either a JSON query object or a simplified "field:value" syntax.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	elastic "github.com/elastic/go-elasticsearch/v8"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/dsn"
)

// Connector implements connector.CommandConnector for Elasticsearch.
type Connector struct {
	client       *elastic.Client
	indexPattern string
}

// New creates a fresh, unconnected Elasticsearch connector prototype.
func New() connector.Connector {
	return &Connector{}
}

func (c *Connector) Connect(ctx context.Context, cfg connector.ConnectionConfig) error {
	addr, username, password, indexPattern, err := parseDSN(cfg.DSN)
	if err != nil {
		return fmt.Errorf("elasticsearch parse dsn: %w", err)
	}

	client, err := elastic.NewClient(elastic.Config{
		Addresses: []string{addr},
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}

	c.client = client
	c.indexPattern = indexPattern
	if c.indexPattern == "" {
		c.indexPattern = "_all"
	}
	return nil
}

func (c *Connector) Disconnect() error { return nil }

func (c *Connector) Ping(ctx context.Context) error {
	res, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}

func (c *Connector) DriverName() string { return "elasticsearch" }

func (c *Connector) Clone() connector.Connector {
	return &Connector{indexPattern: c.indexPattern}
}

// searchRequest is the JSON command shape: {index?, query?, aggs?, size?}.
type searchRequest struct {
	Index string         `json:"index,omitempty"`
	Query map[string]any `json:"query,omitempty"`
	Aggs  map[string]any `json:"aggs,omitempty"`
	Size  *int           `json:"size,omitempty"`
}

// ExecuteCommand accepts JSON {index?, query?, aggs?, size?} or the
// simplified "field:value field2:value2" syntax and returns
// {hits:{total, documents[]}, aggregations?}.
func (c *Connector) ExecuteCommand(ctx context.Context, text string, opts connector.ExecuteOptions) (*connector.CommandResult, error) {
	req, err := parseCommand(text)
	if err != nil {
		return nil, err
	}

	index := req.Index
	if index == "" {
		index = c.indexPattern
	}
	query := req.Query
	if query == nil {
		query = map[string]any{"match_all": map[string]any{}}
	}
	size := 10
	if req.Size != nil {
		size = *req.Size
	}
	if opts.MaxRows > 0 && size > opts.MaxRows {
		size = opts.MaxRows
	}

	body := map[string]any{"query": query, "size": size}
	if req.Aggs != nil {
		body["aggs"] = req.Aggs
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("elasticsearch encode request: %w", err)
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(index),
		c.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch read response: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search: %s: %s", res.Status(), payload)
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string         `json:"_id"`
				Score  *float64       `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Aggregations map[string]any `json:"aggregations,omitempty"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("elasticsearch decode response: %w", err)
	}

	documents := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := make(map[string]any, len(hit.Source)+2)
		for k, v := range hit.Source {
			doc[k] = v
		}
		doc["_id"] = hit.ID
		doc["_score"] = hit.Score
		documents = append(documents, doc)
	}

	value := map[string]any{
		"hits": map[string]any{
			"total":     parsed.Hits.Total.Value,
			"documents": documents,
		},
	}
	if parsed.Aggregations != nil {
		value["aggregations"] = parsed.Aggregations
	}

	return &connector.CommandResult{Value: value}, nil
}

// parseCommand accepts either a JSON object or the simplified
// "field:value field2:value2" syntax, translated to a bool/must/term query.
func parseCommand(text string) (searchRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return searchRequest{}, nil
	}
	if strings.HasPrefix(text, "{") {
		var req searchRequest
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return searchRequest{}, fmt.Errorf("elasticsearch command: invalid json: %w", err)
		}
		return req, nil
	}

	terms := make([]map[string]any, 0)
	var index string
	for _, field := range strings.Fields(text) {
		k, v, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		if k == "index" {
			index = v
			continue
		}
		terms = append(terms, map[string]any{"term": map[string]any{k: v}})
	}
	if len(terms) == 0 {
		return searchRequest{Index: index}, nil
	}
	return searchRequest{
		Index: index,
		Query: map[string]any{"bool": map[string]any{"must": terms}},
	}, nil
}

// parseDSN extracts the HTTP address, credentials, and index_pattern query
// parameter from an "elasticsearch://[user:pass@]host:port?index_pattern=…"
// DSN, translating it to the http(s) address the client library expects.
// It goes through the gateway's tolerant parser so a password carrying URL
// delimiter characters is taken whole.
func parseDSN(raw string) (addr, username, password, indexPattern string, err error) {
	parsed, err := dsn.Parse("elasticsearch", raw)
	if err != nil {
		return "", "", "", "", err
	}

	scheme := "http"
	if ssl := parsed.Query.Get("sslmode"); ssl != "" && ssl != "disable" {
		scheme = "https"
	}
	if parsed.Scheme == "elasticsearchs" {
		scheme = "https"
	}

	port := parsed.Port
	if port == 0 {
		port = 9200
	}

	addr = fmt.Sprintf("%s://%s:%d", scheme, parsed.Host, port)
	return addr, parsed.User, parsed.Password, parsed.Query.Get("index_pattern"), nil
}
