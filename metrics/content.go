package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CorpusServedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sitesearch",
			Name:      "corpus_served_total",
			Help:      "Number of times the search corpus was served",
		},
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sitesearch",
			Name:      "corpus_documents",
			Help:      "Number of documents in the last corpus served",
		},
	)

	ImportedFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitesearch",
			Name:      "imported_files_total",
			Help:      "Content files processed by imports",
		},
		[]string{"result"}, // "imported" / "failed"
	)
)

func init() {
	prometheus.MustRegister(CorpusServedTotal)
	prometheus.MustRegister(CorpusDocuments)
	prometheus.MustRegister(ImportedFilesTotal)
}

// ObserveCorpus records one corpus response of the given size.
func ObserveCorpus(documents int) {
	CorpusServedTotal.Inc()
	CorpusDocuments.Set(float64(documents))
}

func ObserveImport(imported, failed int) {
	ImportedFilesTotal.WithLabelValues("imported").Add(float64(imported))
	ImportedFilesTotal.WithLabelValues("failed").Add(float64(failed))
}
