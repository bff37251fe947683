package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			registryOpt := WithRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRegistry(registry),
			)

			Convey("Then the defaults still apply and creation succeeds", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "arena")
				So(manager.subsystem, ShouldEqual, "settlement")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording wagering activity", func() {
			Convey("Then it should record submitted predictions", func() {
				So(func() {
					RecordPredictionSubmitted()
					RecordPredictionSubmitted()
				}, ShouldNotPanic)
			})

			Convey("And it should record resolved predictions by outcome", func() {
				So(func() {
					RecordPredictionResolved(true)
					RecordPredictionResolved(false)
				}, ShouldNotPanic)
			})

			Convey("And it should record bets proposed and settled", func() {
				So(func() {
					RecordBetProposed()
					RecordBetSettled("proposer")
					RecordBetSettled("target")
					RecordBetSettled("voided")
				}, ShouldNotPanic)
			})

			Convey("And it should record points moved", func() {
				So(func() {
					RecordPointsAwarded(100)
					RecordPointsTransferred(25)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording settlement engine metrics", func() {
			Convey("Then it should record settlement runs by result", func() {
				So(func() {
					RecordSettlementRun("completed")
					RecordSettlementRun("incomplete")
					RecordSettlementRun("error")
				}, ShouldNotPanic)
			})

			Convey("And it should record settlement duration", func() {
				So(func() {
					RecordSettlementDuration(100.0)
					RecordSettlementDuration(250.0)
				}, ShouldNotPanic)
			})

			Convey("And it should track challenges by status", func() {
				So(func() {
					UpdateChallengesByStatus("open", 12)
					UpdateChallengesByStatus("assessing", 2)
					UpdateChallengesByStatus("completed", 30)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording assessor metrics", func() {
			Convey("Then it should record calls, errors and latency", func() {
				So(func() {
					RecordAssessorCall("assess")
					RecordAssessorCall("generate")
					RecordAssessorError("assess")
					RecordAssessorLatency(500.0)
					RecordTestCasesGenerated(3)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording operational metrics", func() {
			Convey("Then it should update queue size and worker count", func() {
				So(func() {
					UpdateQueueSize(100)
					UpdateQueueSize(0)
					UpdateWorkerCount(4)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record requests and durations", func() {
				So(func() {
					RecordHTTPRequest("/challenges", "POST", "201")
					RecordHTTPRequest("/bets", "POST", "422")
					RecordHTTPRequestDuration("/challenges", "POST", "201", 5.0)
					RecordHTTPRequestDuration("/bets", "POST", "422", 2.0)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordPredictionSubmitted()
						UpdateQueueSize(j)
						RecordSettlementDuration(float64(j))
						RecordHTTPRequest("/challenges", "GET", "200")
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the metrics HTTP handler", t, func() {
		Convey("When requesting it", func() {
			h := Handler()

			Convey("Then it should not be nil", func() {
				So(h, ShouldNotBeNil)
			})
		})
	})
}
