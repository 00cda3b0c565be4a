package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func labelValue(f *dto.MetricFamily, name string) (string, bool) {
	for _, l := range f.GetMetric()[0].GetLabel() {
		if l.GetName() == name {
			return l.GetValue(), true
		}
	}
	return "", false
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager for a named instance", func() {
			m := NewManager(WithInstance(" replica-a "), WithPrometheusRegistry(registry))
			m.signups.WithLabelValues("Chess Club", "ok").Inc()

			Convey("Then its collectors carry the trimmed instance label", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				f := findFamily(families, "mergington_signup_signups_total")
				So(f, ShouldNotBeNil)
				v, ok := labelValue(f, "instance")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "replica-a")
			})
		})

		Convey("When creating a manager with a blank instance", func() {
			m := NewManager(WithInstance("  "), WithPrometheusRegistry(registry))
			m.signups.WithLabelValues("Chess Club", "ok").Inc()

			Convey("Then no instance label is attached", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				f := findFamily(families, "mergington_signup_signups_total")
				So(f, ShouldNotBeNil)
				_, ok := labelValue(f, "instance")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When creating two managers on the same registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the process-wide metrics configured for an instance", t, func() {
		before := GetRegistry()
		reg := Configure(WithInstance("node-1"))
		defer Configure()

		RecordSignup("Chess Club", "ok")

		Convey("Then recorders write to the new registry with the instance label", func() {
			So(reg, ShouldNotPointTo, before)
			So(GetRegistry(), ShouldPointTo, reg)

			families, err := Gatherer().Gather()
			So(err, ShouldBeNil)
			f := findFamily(families, "mergington_signup_signups_total")
			So(f, ShouldNotBeNil)
			v, ok := labelValue(f, "instance")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "node-1")
		})

		Convey("And configuring twice does not panic on duplicate registration", func() {
			So(func() { Configure(WithInstance("node-2")) }, ShouldNotPanic)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording signup metrics", func() {
			RecordSignup("Chess Club", "ok")
			RecordSignup("unknown", "not_found")
			RecordUnregister("Chess Club", "ok")
			UpdateRosterSize("Chess Club", 3)
			UpdateRosterCapacity("Chess Club", 12)
			UpdateActivityCount(9)

			Convey("Then they are exposed on the registry", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(findFamily(families, "mergington_signup_signups_total"), ShouldNotBeNil)
				So(findFamily(families, "mergington_signup_unregistrations_total"), ShouldNotBeNil)

				size := findFamily(families, "mergington_signup_roster_size")
				So(size, ShouldNotBeNil)
				var found bool
				for _, metric := range size.GetMetric() {
					for _, l := range metric.GetLabel() {
						if l.GetName() == "activity" && l.GetValue() == "Chess Club" {
							found = true
							So(metric.GetGauge().GetValue(), ShouldEqual, 3)
						}
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When recording the remaining metric kinds", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordHTTPRequest("activities", "GET", "200")
					RecordHTTPRequestDuration("activities", "GET", "200", 1.5)
					RecordRepositoryUpdateLatency(0.1)
					RecordRepositoryQueryLatency(0.1)
					UpdateQueueCapacity(100)
					UpdateQueueSize(1)
					UpdateQueueUtilization(0.01)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordChangeDropped()
					UpdateWorkerCount(2)
					RecordWorkerProcessed()
					RecordWorkerError()
					RecordWorkerProcessingLatency(0.2)
					UpdateJournalSize(5)
					RecordErrorByComponent("repository", "not_found")
					RecordErrorByType("not_found", "medium")
					RecordErrorByEndpoint("signup", "POST", "not_found")
					RecordErrorLatency("http", "not_found", 0.3)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(10)
					RecordSystemGCPauseTime(0.5)
				}, ShouldNotPanic)
			})
		})
	})
}
