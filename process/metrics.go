package process

import "github.com/prometheus/client_golang/prometheus"

const processLabel = "process_name"

// label returns the prometheus labels for the process
func label(name string) prometheus.Labels {
	return prometheus.Labels{processLabel: name}
}

// processErrors is the number of errors from processing events
var processErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "timerhost_process_error_count",
	Help: "Number of errors from running a process",
}, []string{processLabel})

func init() {
	prometheus.MustRegister(
		processErrors,
	)
}
