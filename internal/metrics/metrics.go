package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/jacinta25/social-media-API/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple servers in one
// process never collide on the default registerer. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LikesCreated        prometheus.Counter
	LikesDuplicate      prometheus.Counter
	Notifications       *prometheus.CounterVec
	Follows             *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		LikesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "likes_created_total",
			Help: "Likes that inserted a new row",
		}),
		LikesDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "likes_duplicate_total",
			Help: "Like requests that found an existing like",
		}),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_appended_total",
				Help: "Notifications appended to the ledger",
			},
			[]string{"verb"},
		),
		Follows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "follows_total",
				Help: "Follow graph mutations",
			},
			[]string{"action"},
		),
	}
	m.Registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LikesCreated,
		m.LikesDuplicate,
		m.Notifications,
		m.Follows,
	)
	return m
}

// Middleware records request counts and durations labelled by route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		// Label values outlive the request, so the method must not alias
		// the reused fasthttp buffer.
		method := utils.CopyString(c.Method())
		path := utils.CopyString(c.Route().Path)
		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusOf(c, err))).Inc()
		m.HTTPRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		return err
	}
}

// statusOf predicts the status the error handler will write, since it runs
// after the middleware chain has returned.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return apperror.StatusOf(apperror.KindOf(err))
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) LikeCreated() {
	if m != nil {
		m.LikesCreated.Inc()
	}
}

func (m *Metrics) LikeDuplicate() {
	if m != nil {
		m.LikesDuplicate.Inc()
	}
}

func (m *Metrics) NotificationAppended(verb string) {
	if m != nil {
		m.Notifications.WithLabelValues(verb).Inc()
	}
}

func (m *Metrics) Follow(action string) {
	if m != nil {
		m.Follows.WithLabelValues(action).Inc()
	}
}
