package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goPassword "github.com/MrEthical07/goPassword"
	internalmetrics "github.com/MrEthical07/goPassword/internal/metrics"
	"github.com/MrEthical07/goPassword/metrics/export/internaldefs"
)

// MetricsSource is the read-only engine surface the exporter needs.
// *goPassword.Engine satisfies it.
type MetricsSource interface {
	MetricsSnapshot() goPassword.MetricsSnapshot
	AuditDropped() uint64
	PendingCount() int
	QueuedCount() int
}

var _ MetricsSource = (*goPassword.Engine)(nil)

// PrometheusExporter renders engine metrics on demand. It holds no state of
// its own.
type PrometheusExporter struct {
	source MetricsSource
}

func NewPrometheusExporter(engine *goPassword.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

func NewPrometheusExporterFromSource(source MetricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves Render with the Prometheus text content type.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics. Counters and histograms are omitted
// while the engine has metrics disabled; the scheduler gauges are always
// written.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()

	var b strings.Builder
	b.Grow(4096)

	if len(snapshot.Counters) > 0 {
		for _, def := range internaldefs.CounterDefs {
			writeSample(&b, def.Name, def.Help, "counter", snapshot.Counters[def.ID])
		}
	}
	for _, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		writeHistogram(&b, def.Name, def.Help, internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw)))
	}

	writeSample(&b, "gopassword_audit_dropped_total", "Audit events the dispatcher could not deliver.", "counter", p.source.AuditDropped())
	writeSample(&b, internaldefs.PendingGauge.Name, internaldefs.PendingGauge.Help, "gauge", uint64(p.source.PendingCount()))
	writeSample(&b, internaldefs.QueuedGauge.Name, internaldefs.QueuedGauge.Help, "gauge", uint64(p.source.QueuedCount()))

	return b.String()
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteString("\n# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')
}

func writeSample(b *strings.Builder, name, help, kind string, value uint64) {
	writeHeader(b, name, help, kind)
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func writeHistogram(b *strings.Builder, name, help string, cumulative [internalmetrics.HistBucketCount]uint64) {
	writeHeader(b, name, help, "histogram")

	for i, le := range internaldefs.HistogramBounds {
		b.WriteString(name)
		b.WriteString("_bucket{le=\"")
		b.WriteString(le)
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(cumulative[i], 10))
		b.WriteByte('\n')
	}

	b.WriteString(name)
	b.WriteString("_count ")
	b.WriteString(strconv.FormatUint(cumulative[len(cumulative)-1], 10))
	b.WriteByte('\n')

	// Buckets do not record sums.
	b.WriteString(name)
	b.WriteString("_sum 0\n")
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
