package router

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/vyrodovalexey/avembed/internal/observability"
	"github.com/vyrodovalexey/avembed/internal/util"
)

// Handler is the uniform handler contract stored in the route table:
// raw request body string in, response body string out.
type Handler func(ctx context.Context, params *Params, body string) (string, error)

// Params carries the path and query parameter values extracted for one
// resolved request. A fresh Params is allocated per resolution and is
// never shared across requests.
type Params struct {
	Path  map[string]string
	Query map[string]string
}

// PathValue returns the named path parameter, or "" if absent.
func (p *Params) PathValue(name string) string {
	if p == nil {
		return ""
	}
	return p.Path[name]
}

// QueryValue returns the named query parameter, or "" if absent.
func (p *Params) QueryValue(name string) string {
	if p == nil {
		return ""
	}
	return p.Query[name]
}

// Supported HTTP methods.
var supportedMethods = []string{"GET", "POST", "PUT", "DELETE"}

// CanonicalMethod normalizes a request method (case, surrounding
// whitespace) and reports whether it is one of the supported verbs.
func CanonicalMethod(method string) (string, bool) {
	m := strings.ToUpper(strings.TrimSpace(method))
	for _, known := range supportedMethods {
		if m == known {
			return m, true
		}
	}
	return m, false
}

// Route is a compiled template plus up to one handler per supported
// verb. Routes are immutable after registration.
type Route struct {
	template *CompiledTemplate
	handlers map[string]Handler
}

// Template returns the route's normalized template string.
func (r *Route) Template() string {
	return r.template.Template()
}

// Handler returns the handler registered for a canonical method.
func (r *Route) Handler(method string) (Handler, bool) {
	h, ok := r.handlers[method]
	return h, ok && h != nil
}

// AllowedMethods returns the verbs with registered handlers, in
// canonical order.
func (r *Route) AllowedMethods() []string {
	allowed := make([]string, 0, len(r.handlers))
	for _, m := range supportedMethods {
		if h, ok := r.handlers[m]; ok && h != nil {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// Outcome tags the result of resolving a request against the table.
type Outcome int

const (
	// OutcomeMatched means a route matched and has a handler for the
	// request method.
	OutcomeMatched Outcome = iota

	// OutcomeNotFound means no registered template matched the path.
	OutcomeNotFound

	// OutcomeMethodNotAllowed means a route matched the path but has no
	// handler for the request method.
	OutcomeMethodNotAllowed
)

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "unknown"
	}
}

// Resolution is the tagged result of Table.Resolve.
type Resolution struct {
	Outcome Outcome

	// Route and Handler are set when Outcome is OutcomeMatched. Route is
	// also set for OutcomeMethodNotAllowed.
	Route   *Route
	Handler Handler

	// Params is set for OutcomeMatched: fresh path and query parameter
	// values for this request.
	Params *Params

	// Allowed lists the route's registered verbs when Outcome is
	// OutcomeMethodNotAllowed.
	Allowed []string
}

// Table is an ordered collection of registered routes. Registration
// order governs match precedence. The table is intended to be fully
// populated before the dispatch loop starts; the internal lock guards
// against misuse, not as a license to register concurrently with
// resolution.
type Table struct {
	routes   []*Route
	routeMap map[string]*Route
	logger   observability.Logger
	mu       sync.RWMutex
}

// NewTable creates an empty route table.
func NewTable(logger observability.Logger) *Table {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Table{
		routes:   make([]*Route, 0),
		routeMap: make(map[string]*Route),
		logger:   logger,
	}
}

// AddRoute compiles a template and registers its per-method handlers.
// A malformed template or an unsupported method key rejects the
// registration. A duplicate template is rejected non-fatally: the table
// keeps the first registration, logs a warning, and returns
// DuplicateRouteError for callers that want to inspect it.
func (t *Table) AddRoute(template string, handlers map[string]Handler) error {
	compiled, err := CompileTemplate(template)
	if err != nil {
		t.logger.Error("rejecting invalid route template",
			observability.String("template", template),
			observability.Error(err),
		)
		return err
	}

	canonical := make(map[string]Handler, len(handlers))
	for method, h := range handlers {
		m, ok := CanonicalMethod(method)
		if !ok {
			return util.NewTemplateError(template, "unsupported method "+method)
		}
		if h != nil {
			canonical[m] = h
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := compiled.Template()
	if _, exists := t.routeMap[key]; exists {
		err := util.NewDuplicateRouteError(key)
		t.logger.Warn("duplicate route registration skipped",
			observability.String("template", key),
		)
		return err
	}

	route := &Route{template: compiled, handlers: canonical}
	t.routes = append(t.routes, route)
	t.routeMap[key] = route

	getTableMetrics().registeredRoutes.Set(float64(len(t.routes)))

	t.logger.Debug("route registered",
		observability.String("template", key),
		observability.Any("methods", route.AllowedMethods()),
	)

	return nil
}

// Resolve finds the handler for a request. Routes are evaluated in
// registration order and the first route whose template matches the
// path decides the outcome: matched if it has a handler for the method,
// method-not-allowed otherwise. Later routes are never evaluated once a
// template matches. Query parameters are always captured into the
// returned Params, whether or not the template declares placeholders.
func (t *Table) Resolve(method, path string, query url.Values) *Resolution {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m, _ := CanonicalMethod(method)

	for _, route := range t.routes {
		pathParams, ok := route.template.Match(path)
		if !ok {
			continue
		}

		handler, hasHandler := route.Handler(m)
		if !hasHandler {
			getTableMetrics().recordResolution(OutcomeMethodNotAllowed)
			return &Resolution{
				Outcome: OutcomeMethodNotAllowed,
				Route:   route,
				Allowed: route.AllowedMethods(),
			}
		}

		getTableMetrics().recordResolution(OutcomeMatched)
		return &Resolution{
			Outcome: OutcomeMatched,
			Route:   route,
			Handler: handler,
			Params: &Params{
				Path:  pathParams,
				Query: flattenQuery(query),
			},
		}
	}

	getTableMetrics().recordResolution(OutcomeNotFound)
	return &Resolution{Outcome: OutcomeNotFound}
}

// Routes returns the registered routes in registration order.
func (t *Table) Routes() []*Route {
	t.mu.RLock()
	defer t.mu.RUnlock()

	routes := make([]*Route, len(t.routes))
	copy(routes, t.routes)
	return routes
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

// flattenQuery reduces url.Values to the first value per key.
func flattenQuery(query url.Values) map[string]string {
	flat := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}
	return flat
}
