package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/dormscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		// Point .env loading at a file that does not exist unless a case sets it.
		_ = os.Setenv("DORM_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 20)
				convey.So(cfg.PostgresDSN, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DORM_ADDR", ":8080")
			_ = os.Setenv("DORM_SEMESTER", "2026-2")
			_ = os.Setenv("DORM_REDIS_ADDR", "localhost:6379")
			_ = os.Setenv("DORM_REDIS_DB", "3")
			_ = os.Setenv("DORM_RATE_LIMIT_RPS", "2.5")
			_ = os.Setenv("DORM_REVALIDATION_SECRET", "s3cret")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Semester, convey.ShouldEqual, "2026-2")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.RedisDB, convey.ShouldEqual, 3)
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.RevalidationSecret, convey.ShouldEqual, "s3cret")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
log_format: json
notice_limit_max: 20
completion_date: "2027-09-01"
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DORM_CONFIG", tmpFile)
			_ = os.Setenv("DORM_ADDR", ":8081")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.NoticeLimitMax, convey.ShouldEqual, 20)
				convey.So(cfg.CompletionDate, convey.ShouldEqual, "2027-09-01")
			})
		})

		convey.Convey("When a .env file is present", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "test.env")
			convey.So(os.WriteFile(path, []byte("DORM_POSTGRES_DSN=postgres://dorm@localhost/dorm\nDORM_ADDR=:7000\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("DORM_ENV_FILE", path)
			_ = os.Setenv("DORM_ADDR", ":6000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills unset variables without overriding real ones", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.PostgresDSN, convey.ShouldEqual, "postgres://dorm@localhost/dorm")
				convey.So(cfg.Addr, convey.ShouldEqual, ":6000")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile("addr: [unterminated")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("DORM_CONFIG", tmpFile)

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("DORM_CONFIG", "/non/existent/dorm.yaml")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("DORM_REDIS_DB", "not-a-number")

			_, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the loaded values fail validation", func() {
			_ = os.Setenv("DORM_COMPLETION_DATE", "2027/06/30")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "DORM_") {
			_ = os.Unsetenv(name)
		}
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "dorm-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
