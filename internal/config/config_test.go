package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/vectordraw/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.ShardCount, convey.ShouldEqual, 16)
			convey.So(cfg.SuccessMessage, convey.ShouldEqual, "Test passed")
			convey.So(cfg.ExercisesDir, convey.ShouldEqual, "exercises")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad setting", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":            func(c *config.Config) { c.Addr = "" },
			"success_message must not be empty": func(c *config.Config) { c.SuccessMessage = "" },
			`unknown log_format "xml"`:          func(c *config.Config) { c.LogFormat = "xml" },
			"shard_count must not be negative":  func(c *config.Config) { c.ShardCount = -1 },
		}
		for want, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}
	})
}
