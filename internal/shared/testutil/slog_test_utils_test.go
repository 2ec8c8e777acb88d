package testutil

import (
	"log/slog"
	"testing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("Source table loaded", slog.String("file", "categories.csv"))
		logger.Error("Duplicated database name", slog.Int("collisions", 2))

		if handler.Count() != 2 {
			t.Errorf("Expected 2 records, got %d", handler.Count())
		}
		if !handler.ContainsMessage("Source table") {
			t.Error("Expected to find 'Source table'")
		}
		if !handler.ContainsAttr("file", "categories.csv") {
			t.Error("Expected to find attribute file=categories.csv")
		}
		if len(handler.GetRecordsByLevel(slog.LevelError)) != 1 {
			t.Error("Expected 1 error record")
		}
	})

	t.Run("derived loggers share the store", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		component := logger.With(slog.String("component", "taxonomy"))
		component.WithGroup("scale").Info("Weights scaled", slog.Int("digits", 3))
		logger.Info("plain")

		records := handler.GetRecords()
		if len(records) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(records))
		}
		if records[0].Attrs["component"] != "taxonomy" {
			t.Errorf("Expected component attribute, got %v", records[0].Attrs)
		}
		if records[0].Attrs["scale.digits"] != int64(3) {
			t.Errorf("Expected grouped attribute, got %v", records[0].Attrs)
		}
		if _, ok := records[1].Attrs["component"]; ok {
			t.Error("Parent logger must not inherit derived attributes")
		}
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		handler.Clear()

		if handler.Count() != 0 {
			t.Errorf("Expected 0 records after clear, got %d", handler.Count())
		}
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("Pipeline finished", slog.String("component", "app"))
		logger.Warn("Shared database name", slog.String("database_name", "food"))

		AssertLogContains(t, handler, slog.LevelInfo, "finished")
		AssertLogAttr(t, handler, "database_name", "food")
		AssertNoErrors(t, handler)
	})
}
