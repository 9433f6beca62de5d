package logger_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/innerai/pkg/logger"
)

// jsonLines decodes every line of data as a JSON record.
func jsonLines(data []byte) []map[string]any {
	var records []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record map[string]any
		Expect(json.Unmarshal([]byte(line), &record)).To(Succeed(), line)
		records = append(records, record)
	}
	return records
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

var _ = Describe("New", func() {
	It("writes text records at info level by default", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf))
		l.Debug("hidden")
		l.Info("gateway listening", "addr", ":8080")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("gateway listening"))
		Expect(buf.String()).To(ContainSubstring("addr=:8080"))
	})

	It("writes debug records when enabled", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
		l.Debug("sending generateContent request", "turn_count", 2)

		Expect(buf.String()).To(ContainSubstring("sending generateContent request"))
	})

	It("encodes JSON records with nested groups", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON))
		l.WithGroup("exchange").Info("operation completed", "operation", "reframe", "duration_ms", 12)

		records := jsonLines(buf.Bytes())
		Expect(records).To(HaveLen(1))
		Expect(records[0]["msg"]).To(Equal("operation completed"))
		Expect(records[0]["exchange"]).To(HaveKeyWithValue("operation", "reframe"))
		Expect(records[0]["exchange"]).To(HaveKeyWithValue("duration_ms", BeNumerically("==", 12)))
	})

	It("renders pretty records for terminals", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatPretty))
		l.Warn("operation rejected", "status", 400)

		Expect(buf.String()).To(ContainSubstring("operation rejected"))
		Expect(json.Valid(bytes.TrimSpace(buf.Bytes()))).To(BeFalse())
	})
})

var _ = Describe("NewService", func() {
	var (
		console bytes.Buffer
		logFile string
	)

	BeforeEach(func() {
		console.Reset()
		logFile = filepath.Join(GinkgoT().TempDir(), "innerai.log")
	})

	It("logs JSON to the console when no file is configured", func() {
		svc, err := logger.NewService(logger.ServiceConfig{Console: &console})
		Expect(err).NotTo(HaveOccurred())

		svc.Info("gateway listening", "addr", ":8080")

		records := jsonLines(console.Bytes())
		Expect(records).To(HaveLen(1))
		Expect(records[0]).To(HaveKeyWithValue("addr", ":8080"))
		Expect(svc.Close()).To(Succeed())
	})

	It("writes every record to both the console and the log file", func() {
		svc, err := logger.NewService(logger.ServiceConfig{Console: &console, Pretty: true, LogFile: logFile})
		Expect(err).NotTo(HaveOccurred())

		svc.With("request_id", "req-1").Error("operation failed", "operation", "story", "status", 429)
		Expect(svc.Close()).To(Succeed())

		Expect(console.String()).To(ContainSubstring("operation failed"))

		data, err := os.ReadFile(logFile)
		Expect(err).NotTo(HaveOccurred())
		records := jsonLines(data)
		Expect(records).To(HaveLen(1))
		Expect(records[0]).To(HaveKeyWithValue("msg", "operation failed"))
		Expect(records[0]).To(HaveKeyWithValue("level", "ERROR"))
		Expect(records[0]).To(HaveKeyWithValue("request_id", "req-1"))
		Expect(records[0]).To(HaveKeyWithValue("operation", "story"))
	})

	It("appends to an existing log file across restarts", func() {
		for _, msg := range []string{"first run", "second run"} {
			svc, err := logger.NewService(logger.ServiceConfig{Console: &console, LogFile: logFile})
			Expect(err).NotTo(HaveOccurred())
			svc.Info(msg)
			Expect(svc.Close()).To(Succeed())
		}

		data, err := os.ReadFile(logFile)
		Expect(err).NotTo(HaveOccurred())
		records := jsonLines(data)
		Expect(records).To(HaveLen(2))
		Expect(records[0]["msg"]).To(Equal("first run"))
		Expect(records[1]["msg"]).To(Equal("second run"))
	})

	It("applies the debug level to the file sink", func() {
		svc, err := logger.NewService(logger.ServiceConfig{Console: &console, LogFile: logFile, Debug: true})
		Expect(err).NotTo(HaveOccurred())
		svc.Debug("received generateContent response", "has_text", true)
		Expect(svc.Close()).To(Succeed())

		data, err := os.ReadFile(logFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(jsonLines(data)).To(ConsistOf(HaveKeyWithValue("has_text", true)))
	})

	It("keeps debug records out of the file by default", func() {
		svc, err := logger.NewService(logger.ServiceConfig{Console: &console, LogFile: logFile})
		Expect(err).NotTo(HaveOccurred())
		svc.Debug("hidden")
		Expect(svc.Close()).To(Succeed())

		data, err := os.ReadFile(logFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(BeEmpty())
	})

	It("fails when the log file cannot be opened", func() {
		_, err := logger.NewService(logger.ServiceConfig{
			Console: &console,
			LogFile: filepath.Join(GinkgoT().TempDir(), "missing", "innerai.log"),
		})
		Expect(err).To(MatchError(ContainSubstring("opening log file")))
	})

	It("creates the log file owner-readable only", func() {
		svc, err := logger.NewService(logger.ServiceConfig{Console: &console, LogFile: logFile})
		Expect(err).NotTo(HaveOccurred())
		Expect(svc.Close()).To(Succeed())

		info, err := os.Stat(logFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
	})
})

var _ = Describe("Multi", func() {
	It("keeps writing to healthy sinks when one fails", func() {
		var healthy bytes.Buffer
		broken := logger.New(logger.WithWriter(failingWriter{}), logger.WithFormat(logger.FormatJSON))
		good := logger.New(logger.WithWriter(&healthy), logger.WithFormat(logger.FormatJSON))

		l := logger.Multi(broken, good)
		err := l.Handler().Handle(context.Background(), slog.NewRecord(
			time.Now(), slog.LevelInfo, "journal write failed", 0,
		))

		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(jsonLines(healthy.Bytes())).To(ConsistOf(HaveKeyWithValue("msg", "journal write failed")))
	})

	It("honors each sink's own level", func() {
		var info, debug bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&info)),
			logger.New(logger.WithWriter(&debug), logger.WithDebug(true)),
		)
		l.Debug("turn_count")

		Expect(info.String()).To(BeEmpty())
		Expect(debug.String()).To(ContainSubstring("turn_count"))
	})

	It("carries attributes and groups to every sink", func() {
		var a, b bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&a), logger.WithFormat(logger.FormatJSON)),
			logger.New(logger.WithWriter(&b), logger.WithFormat(logger.FormatJSON)),
		)
		l.With("service", "gateway").WithGroup("upstream").Info("provider call failed", "status", 503)

		for _, buf := range []*bytes.Buffer{&a, &b} {
			records := jsonLines(buf.Bytes())
			Expect(records).To(HaveLen(1))
			Expect(records[0]).To(HaveKeyWithValue("service", "gateway"))
			Expect(records[0]["upstream"]).To(HaveKeyWithValue("status", BeNumerically("==", 503)))
		}
	})

	It("skips nil loggers", func() {
		var buf bytes.Buffer
		l := logger.Multi(nil, logger.New(logger.WithWriter(&buf)))
		Expect(func() { l.Info("started") }).NotTo(Panic())
		Expect(buf.String()).To(ContainSubstring("started"))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		l := logger.Nop()
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			Expect(l.Enabled(context.Background(), level)).To(BeFalse())
		}
		Expect(func() { l.With("key", "value").WithGroup("g").Error("msg") }).NotTo(Panic())
	})
})
