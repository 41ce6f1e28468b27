// Package tool implements the tool registry, dispatcher, and custom tool
// engine: it registers one execute_sql/search_objects pair per SQL source,
// one redis_command per Redis source, one elasticsearch_search per
// Elasticsearch source, and any user-defined SQL tools, all as
// github.com/mark3labs/mcp-go tools bound by closure to a source id. Every
// dispatch resolves the source via the Source Manager, applies the
// per-source readonly/max_rows policy, and records the invocation in the
// Request Store.
package tool

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dbgateway/gateway/internal/source"
	"github.com/dbgateway/gateway/internal/store"
)

// sqlDialects is the set of source types whose connector implements
// connector.SQLConnector — these get execute_sql and search_objects.
var sqlDialects = map[string]bool{
	"postgres":   true,
	"postgresql": true,
	"mysql":      true,
	"mariadb":    true,
	"sqlserver":  true,
	"sqlite":     true,
	"oracle":     true,
	"dameng":     true,
	"dm":         true,
}

// Registry owns every tool registered against the Source Manager's
// sources, plus any custom SQL tools loaded by the Custom Tool Engine.
type Registry struct {
	manager *source.Manager
	store   *store.Store
	logger  *slog.Logger
	custom  []*registeredCustomTool
	names   map[string][]string // source id -> tool names bound to it
}

// NewRegistry returns a Registry ready to register tools for every source
// the manager owns. Custom tool definitions are validated and attached
// via LoadCustomTools before RegisterAll is called.
func NewRegistry(mgr *source.Manager, st *store.Store, logger *slog.Logger) *Registry {
	return &Registry{manager: mgr, store: st, logger: logger}
}

// RegisterAll registers every built-in and custom tool onto srv. It must
// run after LoadCustomTools, since it registers only the custom tools that
// call has already validated and attached.
func (r *Registry) RegisterAll(srv *server.MCPServer) {
	r.names = make(map[string][]string)

	defaultID := r.manager.DefaultSourceID()
	for _, id := range r.manager.SourceIDs() {
		suffix := ""
		if id != defaultID {
			suffix = "_" + id
		}

		cfg, ok := r.manager.Config(id)
		if !ok {
			continue
		}

		switch {
		case sqlDialects[cfg.Type]:
			r.registerExecuteSQL(srv, id, suffix)
			r.registerSearchObjects(srv, id, suffix)
			r.track(id, "execute_sql"+suffix, "search_objects"+suffix)
		case cfg.Type == "redis" || cfg.Type == "rediss":
			r.registerRedisCommand(srv, id, suffix)
			r.track(id, "redis_command"+suffix)
		case cfg.Type == "elasticsearch" || cfg.Type == "elasticsearchs":
			r.registerElasticsearchSearch(srv, id, suffix)
			r.track(id, "elasticsearch_search"+suffix)
		}
	}

	for _, ct := range r.custom {
		r.registerCustomTool(srv, ct)
		r.track(ct.def.Source, ct.def.Name)
	}
}

func (r *Registry) track(sourceID string, names ...string) {
	r.names[sourceID] = append(r.names[sourceID], names...)
}

// ToolNames returns the names of every tool bound to sourceID, in
// registration order. Used by the introspection HTTP API to
// populate DataSource.tools.
func (r *Registry) ToolNames(sourceID string) []string {
	return r.names[sourceID]
}

// newRequestID generates a Request Record id. uuid.NewString uses
// crypto/rand under the hood via google/uuid's v4 generator.
func newRequestID() string {
	return uuid.NewString()
}

func (r *Registry) record(rec store.Record) {
	if r.store != nil {
		r.store.Add(rec)
	}
}
