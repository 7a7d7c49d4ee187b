package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	convey.Convey("Given the global logger", t, func() {
		convey.So(Init(), convey.ShouldBeNil)
		defer func() { _ = Sync() }()

		convey.So(Get(), convey.ShouldNotBeNil)
		convey.So(Named("test"), convey.ShouldNotBeNil)
	})
}

func TestLoggerJSON(t *testing.T) {
	convey.Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		convey.So(Init(WithFormat(FormatJSON), WithWriter(&buf)), convey.ShouldBeNil)

		convey.Convey("When logging with a request ID in context", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			Named("api").Info(ctx, "scored", Int("total", 90), String("mode", "general"))

			var line map[string]any
			convey.So(json.Unmarshal(buf.Bytes(), &line), convey.ShouldBeNil)

			convey.Convey("Then the fields, component and request ID are present", func() {
				convey.So(line["msg"], convey.ShouldEqual, "scored")
				convey.So(line["total"], convey.ShouldEqual, 90)
				convey.So(line["component"], convey.ShouldEqual, "api")
				convey.So(line["request_id"], convey.ShouldEqual, "req-1")
				convey.So(line["source"], convey.ShouldContainSubstring, "logger_test.go")
			})
		})

		convey.Convey("When the level filters a message", func() {
			convey.So(SetLevelString("warn"), convey.ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Warn(context.Background(), "shown")

			convey.So(strings.Contains(buf.String(), "hidden"), convey.ShouldBeFalse)
			convey.So(buf.String(), convey.ShouldContainSubstring, "shown")
		})
	})
}

func TestSetLevelString(t *testing.T) {
	convey.Convey("Given level strings", t, func() {
		for _, l := range []string{"debug", "INFO", "", "warning", "error"} {
			convey.So(SetLevelString(l), convey.ShouldBeNil)
		}
		convey.So(SetLevelString("verbose"), convey.ShouldNotBeNil)
	})
}

func TestRequestID(t *testing.T) {
	convey.Convey("Given contexts with and without a request ID", t, func() {
		convey.So(RequestID(context.Background()), convey.ShouldEqual, "")
		convey.So(RequestID(WithRequestID(context.Background(), "abc")), convey.ShouldEqual, "abc")
	})
}
