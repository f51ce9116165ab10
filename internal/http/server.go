package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	appweb "expensetracker/web"
)

type (
	BudgetService interface {
		CreateBudget(ctx context.Context, b core.Budget) (int64, error)
		ListProgress(ctx context.Context) ([]core.BudgetProgress, error)
	}

	AccountService interface {
		ListAccounts(ctx context.Context) ([]core.Account, error)
		GetAccounts(ctx context.Context, ids []int64) ([]core.Account, error)
		CreateAccount(ctx context.Context, a core.Account) (int64, error)
	}

	RecordService interface {
		CreateRecord(ctx context.Context, r core.Record) (int64, error)
		LatestRecords(ctx context.Context, limit int) ([]core.Record, error)
		AccountRecords(ctx context.Context, id int64) ([]core.Record, error)
	}

	GoalService interface {
		CreateGoal(ctx context.Context, g core.Goal, choice, custom string) (int64, error)
		ListGoals(ctx context.Context) ([]core.Goal, error)
	}

	// Pinger is a dependency checked by /readyz.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Deps are the collaborators of the server. Checks and CacheStats are optional.
type Deps struct {
	Budgets        BudgetService
	Accounts       AccountService
	Records        RecordService
	Goals          GoalService
	Checks         map[string]Pinger
	CacheStats     func() cache.Stats
	Logger         *applog.Logger
	TrustedProxies []string
	RateLimit      ratelimit.Config
}

type Server struct {
	http.Server
	templates *templateSet

	budgets    BudgetService
	accounts   AccountService
	records    RecordService
	goals      GoalService
	checks     map[string]Pinger
	cacheStats func() cache.Stats

	logger *applog.Logger
	events *applog.StructuredLogger

	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	budgetsCreated     atomic.Int64
	accountsCreated    atomic.Int64
	recordsCreated     atomic.Int64
	goalsCreated       atomic.Int64
	validationFailures atomic.Int64
	uptime             time.Time
}

// NewServer configures routes, middleware and templates.
func NewServer(addr string, deps Deps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	detector, err := security.NewDetector(deps.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("security detector: %w", err)
	}

	s := &Server{
		budgets:          deps.Budgets,
		accounts:         deps.Accounts,
		records:          deps.Records,
		goals:            deps.Goals,
		checks:           deps.Checks,
		cacheStats:       deps.CacheStats,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		events:           applog.NewStructuredLogger(logger),
		securityDetector: detector,
		rateLimiter:      ratelimit.NewLimiter(deps.RateLimit),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(detector.ExtractClientIP, logger)

	t, err := loadTemplates(appweb.TemplatesFS)
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/budgets", s.handleBudgets)
	mux.HandleFunc("/budgets/new", s.handleBudgetForm)
	mux.HandleFunc("/accounts", s.handleAccounts)
	mux.HandleFunc("/accounts/new", s.handleAccountForm)
	mux.HandleFunc("/accounts/{id}", s.handleAccountDetail)
	mux.HandleFunc("/records", s.handleRecords)
	mux.HandleFunc("/records/new", s.handleRecordForm)
	mux.HandleFunc("/goals", s.handleGoals)
	mux.HandleFunc("/goals/new", s.handleGoalForm)

	mux.HandleFunc("/ui/budget/accounts", s.handleBudgetAccounts)
	mux.HandleFunc("/ui/budget/categories", s.handleCategoryBadge)
	mux.HandleFunc("/ui/account/field", s.handleAccountField)
	mux.HandleFunc("/ui/account/balance", s.handleAccountBalance)
	mux.HandleFunc("/ui/record/fields", s.handleRecordFields)
	mux.HandleFunc("/ui/theme", s.handleTheme)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, s.onRateLimit, http.MethodPost)(handler)
	handler = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = applog.Middleware(logger)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = detector.Middleware(logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Shutdown stops the rate limiter and drains the HTTP server. Only the first
// call does anything.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again in a minute.").Write(w)
}

// templateSet holds one template tree per page plus the shared partials.
type templateSet struct {
	partials *template.Template
	pages    map[string]*template.Template
}

var hundredPercent = decimal.NewFromInt(100)

var templateFuncs = template.FuncMap{
	"money": formatMoney,
	"cents": core.FormatCents,
	"barWidth": barWidth,
}

// barWidth clamps a percentage to [0, 100] for a progress bar style.
func barWidth(percent decimal.Decimal) string {
	if percent.IsNegative() {
		return "0"
	}
	if percent.GreaterThan(hundredPercent) {
		return "100"
	}
	return percent.StringFixed(0)
}

func loadTemplates(fsys fs.FS) (*templateSet, error) {
	base, err := template.New("base").Funcs(templateFuncs).ParseFS(fsys, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	set := &templateSet{partials: base, pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(fsys, p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(p[strings.LastIndex(p, "/")+1:], ".html")
		set.pages[name] = clone
	}
	return set, nil
}

// renderPage executes the layout around the named page. Output is buffered so
// a template error still yields a clean 500.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page string, status int, data any) {
	if s.templates == nil {
		s.templateUnavailable(w, r, page)
		return
	}
	t, ok := s.templates.pages[page]
	if !ok {
		s.templateUnavailable(w, r, page)
		return
	}
	s.execute(w, r, t, "layout", status, data)
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.templateUnavailable(w, r, name)
		return
	}
	s.execute(w, r, s.templates.partials, name, http.StatusOK, data)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, t *template.Template, name string, status int, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", "", ""))
		InternalServerError("Rendering failed").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) templateUnavailable(w http.ResponseWriter, r *http.Request, name string) {
	s.logger.ErrorContext(r.Context(), "Template not loaded",
		applog.FieldPath, r.URL.Path,
		"template", name)
	http.Error(w, "templates not loaded", http.StatusInternalServerError)
}

// serverError logs err and answers with a generic error block.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, component string) {
	s.events.LogError(r.Context(), msg, err, component, applog.OpCreate, nil)
	InternalServerError(msg).Write(w)
}

// validationFailed renders the field errors of err and reports whether err
// carried any.
func (s *Server) validationFailed(w http.ResponseWriter, r *http.Request, err error, component string) bool {
	verrs, ok := core.AsValidationErrors(err)
	if !ok {
		return false
	}
	s.appMetrics.validationFailures.Add(1)
	applog.FromContext(r.Context()).WithComponent(component).InfoContext(r.Context(), "Form rejected",
		applog.FieldOperation, applog.OpValidate,
		applog.FieldError, verrs.Error())
	ValidationError(verrs).Write(w)
	return true
}
