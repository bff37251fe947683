package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/passbet/arena/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad_Defaults(t *testing.T) {
	Convey("Given no file or env overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.AllowNegativeScore, ShouldBeTrue)
			So(cfg.SweepInterval, ShouldEqual, time.Minute)
			So(cfg.Assessor.RequestTimeout, ShouldEqual, 30*time.Second)
		})
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	Convey("Given env overrides", t, func() {
		t.Setenv("ARENA_ADDR", ":7070")
		t.Setenv("ARENA_WORKER_COUNT", "3")
		t.Setenv("ARENA_ALLOW_NEGATIVE_SCORE", "false")
		t.Setenv("ARENA_ASSESSOR__MODEL", "gpt-4o")

		cfg, err := config.Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.WorkerCount, ShouldEqual, 3)
			So(cfg.AllowNegativeScore, ShouldBeFalse)
			So(cfg.Assessor.Model, ShouldEqual, "gpt-4o")
		})
	})
}

func TestLoad_Validation(t *testing.T) {
	Convey("Given an empty listen address", t, func() {
		t.Setenv("ARENA_ADDR", "")

		Convey("Then Load rejects the config", func() {
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a non-positive worker count", t, func() {
		t.Setenv("ARENA_WORKER_COUNT", "0")

		Convey("Then Load rejects the config", func() {
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}
