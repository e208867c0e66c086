package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-initialising replaces the global logger.
	err = Init(WithJSON(true))
	if err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}

	logger = Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerNamed(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	namedLogger.Info(context.Background(), "test message")
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf)), ShouldBeNil)

		Convey("When logging with fields and a request id", func() {
			ctx := WithRequestID(context.Background(), "req-42")
			Get().Info(ctx, "ratios computed", String("period", "Jahr 1"), Int("rows", 2))

			Convey("Then the record carries message, fields, source and request id", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "ratios computed")
				So(out, ShouldContainSubstring, "period=\"Jahr 1\"")
				So(out, ShouldContainSubstring, "rows=2")
				So(out, ShouldContainSubstring, "request_id=req-42")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Warn(context.Background(), "shown")

			Convey("Then info records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "shown")
			})
			_ = SetLevelString("info")
		})

		Convey("When an unknown level is set", func() {
			err := SetLevelString("loud")

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerFile(t *testing.T) {
	Convey("Given a logger with a rotating file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "logs", "bilanz.log")
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithFile(path, 1, 1, 1)), ShouldBeNil)

		Get().Error(context.Background(), "export failed", String("format", "pdf"))
		So(Sync(), ShouldBeNil)

		Convey("Then the record is mirrored into the file", func() {
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "export failed")
			So(buf.String(), ShouldContainSubstring, "export failed")
		})
	})
}
