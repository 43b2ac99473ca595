package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"callinsights/internal/db"
)

var (
	conversationsDesc = prometheus.NewDesc(
		"callinsights_conversations_total",
		"Total conversation rows by agent",
		[]string{"agent_id", "agent_name"},
		nil,
	)

	classificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callinsights_classifications_total",
			Help: "Conversations classified, by assigned category",
		},
		[]string{"category"},
	)
)

// ConversationCollector is a custom Prometheus collector that reads per-agent
// conversation counts from the database on each scrape.
type ConversationCollector struct {
	db  *db.DB
	log *logrus.Entry
}

// Describe sends the metric descriptor to the channel.
func (c *ConversationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- conversationsDesc
}

// Collect queries the database for per-agent counts and emits them as gauges.
func (c *ConversationCollector) Collect(ch chan<- prometheus.Metric) {
	agents, err := c.db.AgentCounts(context.Background())
	if err != nil {
		c.log.WithError(err).Error("failed to collect conversation metrics")
		return
	}
	for _, a := range agents {
		ch <- prometheus.MustNewConstMetric(
			conversationsDesc,
			prometheus.GaugeValue,
			float64(a.TotalConversations),
			a.AgentID,
			a.AgentName,
		)
	}
}

var initOnce sync.Once

// Init registers the collectors. Must be called once at startup.
func Init(database *db.DB, log *logrus.Entry) {
	initOnce.Do(func() {
		prometheus.MustRegister(&ConversationCollector{db: database, log: log})
		prometheus.MustRegister(classificationsTotal)
	})
}

// RecordClassifications adds per-category classification counts from one
// aggregation pass.
func RecordClassifications(counts map[string]int) {
	for category, n := range counts {
		classificationsTotal.WithLabelValues(category).Add(float64(n))
	}
}
