package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	markedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classattend_attendance_marked_total",
		Help: "Attendance records successfully created.",
	})
	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classattend_attendance_rejected_total",
		Help: "Attendance requests rejected, by failure kind.",
	}, []string{"reason"})
)
