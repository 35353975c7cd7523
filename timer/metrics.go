package timer

import "github.com/prometheus/client_golang/prometheus"

const timerLabel = "timer_name"

func label(name string) prometheus.Labels {
	return prometheus.Labels{timerLabel: name}
}

// timerFires is the number of occurrences a TimerListener has dispatched to
// its Executor, regardless of outcome.
var timerFires = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "timerhost_timer_fire_count",
	Help: "Number of timer occurrences dispatched to the executor",
}, []string{timerLabel})

// timerExecutorErrors is the number of Executor.Execute calls that returned
// an error or panicked.
var timerExecutorErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "timerhost_timer_executor_error_count",
	Help: "Number of timer executor invocations that returned an error or panicked",
}, []string{timerLabel})

// timerMonitorErrors is the number of transient ScheduleMonitor storage
// failures encountered while arming or recording an occurrence.
var timerMonitorErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "timerhost_timer_monitor_error_count",
	Help: "Number of schedule monitor storage errors",
}, []string{timerLabel})

// timerPastDueSeconds is the most recently observed past-due duration for a
// fired occurrence, in seconds. Zero means the occurrence fired on time.
var timerPastDueSeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "timerhost_timer_past_due_seconds",
	Help: "Seconds the most recent occurrence fired past its scheduled time",
}, []string{timerLabel})

// timerCarriedArms is the number of times a listener re-armed immediately
// because the remaining wait exceeded MaxTimerInterval.
var timerCarriedArms = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "timerhost_timer_carried_arm_count",
	Help: "Number of times a timer wait was split across multiple arm cycles",
}, []string{timerLabel})

func init() {
	prometheus.MustRegister(
		timerFires,
		timerExecutorErrors,
		timerMonitorErrors,
		timerPastDueSeconds,
		timerCarriedArms,
	)
}
