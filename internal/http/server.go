package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"smartexpense/internal/core"
	"smartexpense/internal/middleware/ratelimit"
	"smartexpense/internal/middleware/security"
	"smartexpense/internal/middleware/trace"
)

// ExpenseService is the ledger as seen by the handlers.
type ExpenseService interface {
	Create(ctx context.Context, owner string, in core.NewExpense) (core.Expense, error)
	Get(ctx context.Context, owner, id string) (core.Expense, error)
	Update(ctx context.Context, owner, id string, patch core.ExpensePatch) (core.Expense, error)
	Delete(ctx context.Context, owner, id string) error
	List(ctx context.Context, owner string, filter core.ExpenseFilter) ([]core.Expense, error)
}

// BudgetService reads and writes an owner's monthly limit.
type BudgetService interface {
	Get(ctx context.Context, owner string) (core.Budget, error)
	Set(ctx context.Context, owner string, limit core.Money) (core.Budget, error)
}

// SummaryService computes monthly summaries.
type SummaryService interface {
	Summarize(ctx context.Context, owner string, month, year int) (core.MonthlySummary, error)
}

// Pinger reports whether a dependency can serve requests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the server. Zero values select defaults.
type Options struct {
	// Location defines calendar months for the summary default and the
	// budget status block.
	Location           *time.Location
	RateLimitPerMinute int
	BlockSuspicious    bool
	// TopCategories is the number of categories listed in the status block.
	TopCategories int
	Now           func() time.Time
}

type Server struct {
	http.Server
	expenses ExpenseService
	budgets  BudgetService
	summary  SummaryService
	ready    map[string]Pinger

	loc     *time.Location
	now     func() time.Time
	top     int
	started time.Time

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector
}

// NewServer builds the JSON API on a gorilla/mux router. ready lists the
// dependencies probed by /readyz.
func NewServer(addr string, expenses ExpenseService, budgets BudgetService, summary SummaryService, ready map[string]Pinger, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TopCategories <= 0 {
		opts.TopCategories = 3
	}

	detector := security.NewDetector()
	s := &Server{
		expenses: expenses,
		budgets:  budgets,
		summary:  summary,
		ready:    ready,
		loc:      opts.Location,
		now:      opts.Now,
		top:      opts.TopCategories,
		started:  opts.Now(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		detector: detector,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no route for " + r.URL.Path).Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError().Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)

	limit := s.limiter.Middleware(s.rateLimitKey, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Header("Retry-After", w.Header().Get("Retry-After")).Write(w)
	})
	scoped := func(h http.HandlerFunc) http.Handler {
		return requireOwner(limit(h))
	}
	r.Handle("/expenses", scoped(s.handleCreateExpense)).Methods(http.MethodPost)
	r.Handle("/expenses", scoped(s.handleListExpenses)).Methods(http.MethodGet)
	r.Handle("/expenses/{id}", scoped(s.handleGetExpense)).Methods(http.MethodGet)
	r.Handle("/expenses/{id}", scoped(s.handleUpdateExpense)).Methods(http.MethodPut, http.MethodPatch)
	r.Handle("/expenses/{id}", scoped(s.handleDeleteExpense)).Methods(http.MethodDelete)
	r.Handle("/budget", scoped(s.handleGetBudget)).Methods(http.MethodGet)
	r.Handle("/budget", scoped(s.handleSetBudget)).Methods(http.MethodPut)
	r.Handle("/analytics/summary", scoped(s.handleSummary)).Methods(http.MethodGet)

	var handler http.Handler = r
	handler = detector.Middleware(opts.BlockSuspicious)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// rateLimitKey keys by owner when known, else by client IP.
func (s *Server) rateLimitKey(r *http.Request) string {
	if owner := ownerFrom(r.Context()); owner != "" {
		return "owner:" + owner
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
