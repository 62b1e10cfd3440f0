package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// TestLoggerInterface tests the TestLogger implementation of Logger
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", UnknownCountKey, 3)
	testLogger.Error("error message", fmt.Errorf("test error"), ErrorCodeKey, ErrorNotFitted)

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}

	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) {
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrAttrKey, "test error") {
		t.Error("Expected leading error to be stored under the error key")
	}
	if !testLogger.ContainsField(ErrorCodeKey, ErrorNotFitted) {
		t.Error("Expected error code field after the leading error")
	}
}

// TestLoggerWith tests the With method for context-aware logging
func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "ColumnTransformer",
		ComponentKey, "compose",
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	if !testLogger.ContainsField(ModelNameKey, "ColumnTransformer") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(ComponentKey, "compose") {
		t.Error("Component context not found")
	}
	if !testLogger.ContainsField(OperationKey, OperationFit) {
		t.Error("Operation field not found")
	}
}

// TestLoggerEnabled tests the Enabled method
func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	if !testLogger.Enabled(ctx, LevelInfo) {
		t.Error("Logger should be enabled for Info level")
	}
	if !testLogger.Enabled(ctx, LevelError) {
		t.Error("Logger should be enabled for Error level")
	}
	if testLogger.Enabled(ctx, LevelDebug) {
		t.Error("Logger should not be enabled for Debug level")
	}

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	if testLogger.ContainsMessage("this should not appear") {
		t.Error("Debug message should not appear when level is Info")
	}
	if !testLogger.ContainsMessage("this should appear") {
		t.Error("Info message should appear when level is Info")
	}
}

func TestLoggerProviderIntegration(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelInfo)

	provider.GetLogger().Info("provider test message")
	provider.GetLoggerWithName("compose").Info("named logger message")
	provider.SetLevel(LevelError)
	provider.GetLogger().Info("suppressed message")

	out := buffer.String()
	if !strings.Contains(out, "provider test message") {
		t.Error("Provider test message not found")
	}
	if !strings.Contains(out, "named logger message") {
		t.Error("Named logger message not found")
	}
	if !strings.Contains(out, "compose") {
		t.Error("Component name not found in named logger output")
	}
	if strings.Contains(out, "suppressed message") {
		t.Error("SetLevel should suppress info messages")
	}
}

func TestZerologProvider(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelDebug)

	logger := provider.GetLoggerWithName("SimpleImputer")
	logger.Debug("Fitted imputer", ColumnKey, "Age", MissingCountKey, 2)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse %q: %v", buf.String(), err)
	}
	if entry["message"] != "Fitted imputer" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry[ComponentKey] != "SimpleImputer" {
		t.Errorf("component = %v", entry[ComponentKey])
	}
	if entry[ColumnKey] != "Age" {
		t.Errorf("column = %v", entry[ColumnKey])
	}
	if entry[MissingCountKey] != 2.0 {
		t.Errorf("missing count = %v", entry[MissingCountKey])
	}
}

func TestZerologProviderLevels(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelWarn)
	logger := provider.GetLogger()

	if logger.Enabled(context.Background(), LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	logger.Error("failed", errors.NewNotFittedError("Pipeline", "Transform"), OperationKey, OperationTransform)
	out := buf.String()
	if !strings.Contains(out, "NotFittedError") {
		t.Errorf("expected structured error detail, got %q", out)
	}
	if !strings.Contains(out, OperationTransform) {
		t.Errorf("expected operation field, got %q", out)
	}
}

func TestZerologProviderInstallWarnings(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelInfo)
	provider.InstallWarnings()
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewUnknownCategoryWarning("HomePlanet", 2))

	if !strings.Contains(buf.String(), "UnknownCategoryWarning") {
		t.Errorf("expected warning in zerolog output, got %q", buf.String())
	}
}

func TestZerologProviderWrappedErrorDetail(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelInfo)
	provider.InstallWarnings()
	defer errors.SetZerologWarnFunc(nil)

	err := errors.Wrapf(errors.NewSchemaError("ColumnTransformer.Transform", "VIP", "column not found"), "column %s", "VIP")
	provider.GetLogger().Error("transform failed", err)
	if !strings.Contains(buf.String(), `"detail":{`) || !strings.Contains(buf.String(), "SchemaError") {
		t.Errorf("expected schema error detail through wrap layers, got %q", buf.String())
	}

	buf.Reset()
	errors.Warn(errors.Wrap(errors.NewUnknownCategoryWarning("Destination", 1), "validation"))
	if !strings.Contains(buf.String(), `"column":"Destination"`) {
		t.Errorf("expected embedded warning fields, got %q", buf.String())
	}
}

func TestGlobalProvider(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)
	SetProvider(provider)
	defer SetProvider(nil)

	GetLoggerWithName("Pipeline").Info("through global provider")
	if !strings.Contains(buffer.String(), "through global provider") {
		t.Error("global logger did not write to the installed provider")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"", LevelInfo, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupLoggerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, "info")
	defer SetProvider(nil)

	GetLogger().Error("fit failed", errors.NewEmptyColumnError("SimpleImputer.Fit", "Age"))

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to parse %q: %v", buf.String(), err)
	}
	if entry["severity"] != "ERROR" {
		t.Errorf("severity = %v", entry["severity"])
	}
	if _, ok := entry[StacktraceAttrKey]; !ok {
		t.Error("expected stacktrace attribute")
	}
	if entry[ColumnKey] != "Age" {
		t.Errorf("%s = %v, want Age", ColumnKey, entry[ColumnKey])
	}
	if entry[ErrorTypeKey] != "*errors.EmptyColumnError" {
		t.Errorf("%s = %v", ErrorTypeKey, entry[ErrorTypeKey])
	}
}

func TestSetupLoggerColumnThroughWrap(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, "info")
	defer SetProvider(nil)

	err := errors.Wrapf(errors.NewSchemaError("ColumnTransformer.Transform", "VIP", "role changed"), "column %s", "VIP")
	GetLogger().Error("transform failed", err)
	GetLogger().Info("no error here")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %q", buf.String())
	}
	var first, second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if first[ColumnKey] != "VIP" || first[ErrorTypeKey] != "*errors.SchemaError" {
		t.Errorf("unexpected error attributes: %v", first)
	}
	if _, ok := second[ColumnKey]; ok {
		t.Errorf("records without an error must not get %s: %v", ColumnKey, second)
	}
}
