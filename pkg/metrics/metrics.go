package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP request metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trivia_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route and method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// QuestionsChanged counts created and deleted questions
var QuestionsChanged = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trivia_questions_changed_total",
		Help: "Number of questions created or deleted",
	},
	[]string{"op"},
)

// QuizRounds counts quiz rounds by outcome (served, exhausted)
var QuizRounds = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trivia_quiz_rounds_total",
		Help: "Number of quiz rounds played by outcome",
	},
	[]string{"outcome"},
)

// CategoryCacheLookups counts category cache hits and misses
var CategoryCacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trivia_category_cache_lookups_total",
		Help: "Category cache lookups by result",
	},
	[]string{"result"},
)

// Database connection pool metrics
var (
	DBOpenConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trivia_db_open_connections",
			Help: "Number of open connections in the DB pool",
		},
		[]string{"db"},
	)

	DBIdleConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trivia_db_idle_connections",
			Help: "Number of idle connections in the DB pool",
		},
		[]string{"db"},
	)

	DBInUseConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trivia_db_in_use_connections",
			Help: "Number of in-use connections in the DB pool",
		},
		[]string{"db"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration)
	prometheus.MustRegister(QuestionsChanged, QuizRounds, CategoryCacheLookups)
	prometheus.MustRegister(DBOpenConns, DBIdleConns, DBInUseConns)
}
