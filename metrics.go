package host

import "github.com/prometheus/client_golang/prometheus"

var hostUp = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "timerhost_up",
	Help: "A boolean metric to signal that the application used the host package to start running",
})

func init() {
	prometheus.MustRegister(hostUp)
}
