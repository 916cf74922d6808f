package metrics

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	m "github.com/cschleiden/go-resume/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000}

type collectors struct {
	sync.Mutex

	reg       prometheus.Registerer
	namespace string

	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

type prometheusClient struct {
	c    *collectors
	tags m.Tags
}

var _ m.Client = (*prometheusClient)(nil)

// NewPrometheusClient returns a metrics client that registers collectors lazily with reg. Metric names
// have dots replaced by underscores and are prefixed with namespace.
func NewPrometheusClient(reg prometheus.Registerer, namespace string) *prometheusClient {
	return &prometheusClient{
		c: &collectors{
			reg:        reg,
			namespace:  namespace,
			counters:   make(map[string]*prometheus.CounterVec),
			gauges:     make(map[string]*prometheus.GaugeVec),
			histograms: make(map[string]*prometheus.HistogramVec),
		},
		tags: m.Tags{},
	}
}

func (pc *prometheusClient) Counter(name string, tags m.Tags, value int64) {
	labels := pc.merge(tags)
	key, names := metricKey(name, labels)

	pc.c.Lock()
	defer pc.c.Unlock()

	cv, ok := pc.c.counters[key]
	if !ok {
		cv = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: pc.c.namespace,
			Name:      metricName(name),
		}, names)
		cv = register(pc.c.reg, cv)
		if cv == nil {
			return
		}

		pc.c.counters[key] = cv
	}

	cv.With(labels).Add(float64(value))
}

func (pc *prometheusClient) Distribution(name string, tags m.Tags, value float64) {
	labels := pc.merge(tags)
	key, names := metricKey(name, labels)

	pc.c.Lock()
	defer pc.c.Unlock()

	hv, ok := pc.c.histograms[key]
	if !ok {
		hv = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: pc.c.namespace,
			Name:      metricName(name),
			Buckets:   durationBuckets,
		}, names)
		hv = register(pc.c.reg, hv)
		if hv == nil {
			return
		}

		pc.c.histograms[key] = hv
	}

	hv.With(labels).Observe(value)
}

func (pc *prometheusClient) Gauge(name string, tags m.Tags, value int64) {
	labels := pc.merge(tags)
	key, names := metricKey(name, labels)

	pc.c.Lock()
	defer pc.c.Unlock()

	gv, ok := pc.c.gauges[key]
	if !ok {
		gv = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: pc.c.namespace,
			Name:      metricName(name),
		}, names)
		gv = register(pc.c.reg, gv)
		if gv == nil {
			return
		}

		pc.c.gauges[key] = gv
	}

	gv.With(labels).Set(float64(value))
}

func (pc *prometheusClient) Timing(name string, tags m.Tags, duration time.Duration) {
	pc.Distribution(name, tags, float64(duration/time.Millisecond))
}

func (pc *prometheusClient) WithTags(tags m.Tags) m.Client {
	return &prometheusClient{
		c:    pc.c,
		tags: m.Tags(pc.merge(tags)),
	}
}

func (pc *prometheusClient) merge(tags m.Tags) prometheus.Labels {
	labels := prometheus.Labels{}
	for k, v := range pc.tags {
		labels[labelName(k)] = v
	}

	for k, v := range tags {
		labels[labelName(k)] = v
	}

	return labels
}

// register registers c, returning the already registered collector if an identical one exists. nil is
// returned if the collector conflicts with an existing one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	var zero C

	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}

		return zero
	}

	return c
}

func metricKey(name string, labels prometheus.Labels) (string, []string) {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)

	return name + "|" + strings.Join(names, ","), names
}

func metricName(name string) string {
	return labelName(name)
}

func labelName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}
