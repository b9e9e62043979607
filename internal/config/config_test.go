package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/horary/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.CacheSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.HouseSystem, convey.ShouldEqual, "regiomontanus")
			convey.So(cfg.EphemerisMinYear, convey.ShouldEqual, 1800)
			convey.So(cfg.EphemerisMaxYear, convey.ShouldEqual, 2199)
			convey.So(cfg.FallbackLocationName, convey.ShouldEqual, "Greenwich")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given configs that break a constraint", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":          func(c *config.Config) { c.Addr = "" },
			"zero workers":        func(c *config.Config) { c.WorkerCount = 0 },
			"unknown driver":      func(c *config.Config) { c.StoreDriver = "postgres" },
			"sqlite without path": func(c *config.Config) { c.StoreDriver, c.StorePath = config.StoreSQLite, "" },
			"unknown houses":      func(c *config.Config) { c.HouseSystem = "placidus" },
			"inverted years":      func(c *config.Config) { c.EphemerisMinYear = 2200 },
			"bad fallback":        func(c *config.Config) { c.FallbackLatitude = 120 },
			"negative cache":      func(c *config.Config) { c.CacheSize = -1 },
		}
		for name, mutate := range cases {
			convey.Convey("When validating with "+name, func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
