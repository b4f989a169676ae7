package httpapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/John-Robertt/lircd2toml-go/internal/convert"
	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

// metricsStore is intentionally tiny: a few counters are enough for basic
// observability without complex labeling.
type metricsStore struct {
	mu sync.Mutex

	httpRequestsTotal uint64
	httpByPattern     map[reqKey]uint64

	appErrors map[errKey]uint64

	remotesConverted map[model.Protocol]uint64
	remotesFailed    map[string]uint64
	remoteWarnings   map[string]uint64
}

type reqKey struct {
	Pattern string
	Status  int
}

type errKey struct {
	Stage string
	Code  string
}

func newMetricsStore() *metricsStore {
	return &metricsStore{
		httpByPattern:    make(map[reqKey]uint64),
		appErrors:        make(map[errKey]uint64),
		remotesConverted: make(map[model.Protocol]uint64),
		remotesFailed:    make(map[string]uint64),
		remoteWarnings:   make(map[string]uint64),
	}
}

var metrics = newMetricsStore()

func metricsIncRequest(pattern string, status int) {
	if status == 0 {
		status = http.StatusOK
	}
	if pattern == "" {
		pattern = "(unknown)"
	}

	metrics.mu.Lock()
	metrics.httpRequestsTotal++
	metrics.httpByPattern[reqKey{Pattern: pattern, Status: status}]++
	metrics.mu.Unlock()
}

func metricsIncAppError(stage, code string) {
	stage = strings.TrimSpace(stage)
	code = strings.TrimSpace(code)
	if stage == "" {
		stage = "(unknown)"
	}
	if code == "" {
		code = "(unknown)"
	}

	metrics.mu.Lock()
	metrics.appErrors[errKey{Stage: stage, Code: code}]++
	metrics.mu.Unlock()
}

// metricsObserveResult counts per-remote outcomes of a successful request.
func metricsObserveResult(res *convert.Result) {
	if res == nil {
		return
	}
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	for _, r := range res.Records {
		metrics.remotesConverted[r.Protocol]++
	}
	for _, f := range res.Failures {
		metrics.remotesFailed[f.AppError.Code]++
	}
	for _, w := range res.Warnings {
		metrics.remoteWarnings[w.Code]++
	}
}

type reqMetric struct {
	reqKey
	N uint64
}

type errMetric struct {
	errKey
	N uint64
}

type labelMetric struct {
	Label string
	N     uint64
}

type metricsView struct {
	httpTotal uint64
	reqs      []reqMetric
	errs      []errMetric
	converted []labelMetric
	failed    []labelMetric
	warnings  []labelMetric
}

func sortedLabels[K ~string](m map[K]uint64) []labelMetric {
	out := make([]labelMetric, 0, len(m))
	for k, n := range m {
		out = append(out, labelMetric{Label: string(k), N: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func metricsSnapshot() metricsView {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()

	v := metricsView{httpTotal: metrics.httpRequestsTotal}

	v.reqs = make([]reqMetric, 0, len(metrics.httpByPattern))
	for k, n := range metrics.httpByPattern {
		v.reqs = append(v.reqs, reqMetric{reqKey: k, N: n})
	}
	v.errs = make([]errMetric, 0, len(metrics.appErrors))
	for k, n := range metrics.appErrors {
		v.errs = append(v.errs, errMetric{errKey: k, N: n})
	}

	sort.Slice(v.reqs, func(i, j int) bool {
		if v.reqs[i].Pattern != v.reqs[j].Pattern {
			return v.reqs[i].Pattern < v.reqs[j].Pattern
		}
		return v.reqs[i].Status < v.reqs[j].Status
	})
	sort.Slice(v.errs, func(i, j int) bool {
		if v.errs[i].Stage != v.errs[j].Stage {
			return v.errs[i].Stage < v.errs[j].Stage
		}
		return v.errs[i].Code < v.errs[j].Code
	})

	v.converted = sortedLabels(metrics.remotesConverted)
	v.failed = sortedLabels(metrics.remotesFailed)
	v.warnings = sortedLabels(metrics.remoteWarnings)
	return v
}

func writeLabelCounter(b *strings.Builder, name, help, label string, ms []labelMetric) {
	b.WriteString("# HELP " + name + " " + help + "\n")
	b.WriteString("# TYPE " + name + " counter\n")
	for _, m := range ms {
		b.WriteString(name)
		b.WriteString("{" + label + "=\"")
		b.WriteString(promLabelEscape(m.Label))
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(m.N, 10))
		b.WriteByte('\n')
	}
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	// Plain text (Prometheus-ish).
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	v := metricsSnapshot()

	var b strings.Builder

	b.WriteString("# HELP lircd2toml_http_requests_total Total HTTP requests.\n")
	b.WriteString("# TYPE lircd2toml_http_requests_total counter\n")
	b.WriteString("lircd2toml_http_requests_total ")
	b.WriteString(strconv.FormatUint(v.httpTotal, 10))
	b.WriteByte('\n')

	b.WriteString("# HELP lircd2toml_http_requests_by_pattern_total HTTP requests by ServeMux pattern and status.\n")
	b.WriteString("# TYPE lircd2toml_http_requests_by_pattern_total counter\n")
	for _, m := range v.reqs {
		b.WriteString("lircd2toml_http_requests_by_pattern_total{pattern=\"")
		b.WriteString(promLabelEscape(m.Pattern))
		b.WriteString("\",status=\"")
		b.WriteString(strconv.Itoa(m.Status))
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(m.N, 10))
		b.WriteByte('\n')
	}

	b.WriteString("# HELP lircd2toml_app_errors_total Application errors returned to clients.\n")
	b.WriteString("# TYPE lircd2toml_app_errors_total counter\n")
	for _, m := range v.errs {
		b.WriteString("lircd2toml_app_errors_total{stage=\"")
		b.WriteString(promLabelEscape(m.Stage))
		b.WriteString("\",code=\"")
		b.WriteString(promLabelEscape(m.Code))
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(m.N, 10))
		b.WriteByte('\n')
	}

	writeLabelCounter(&b, "lircd2toml_remotes_converted_total", "Remotes converted, by output protocol.", "protocol", v.converted)
	writeLabelCounter(&b, "lircd2toml_remotes_failed_total", "Remotes that could not be converted, by error code.", "code", v.failed)
	writeLabelCounter(&b, "lircd2toml_remote_warnings_total", "Conversion warnings, by code.", "code", v.warnings)

	_, _ = fmt.Fprint(w, b.String())
}

func promLabelEscape(s string) string {
	// Prometheus label value escaping: backslash and double quote.
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
