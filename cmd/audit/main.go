// Command audit subscribes to the planner event subjects and appends
// every event to a JSON-lines audit log.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/PlanwiseAI/planwise-mvp/engine/events"
	"github.com/PlanwiseAI/planwise-mvp/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

func main() {
	natsURL := flag.String("nats", nats.DefaultURL, "NATS URL")
	outPath := flag.String("out", "data/audit_log.jsonl", "audit log path")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*natsURL, *outPath, logger); err != nil {
		logger.Error("audit consumer failed", "err", err)
		os.Exit(1)
	}
}

// auditWriter serializes appends to the log file.
type auditWriter struct {
	mu   sync.Mutex
	file *os.File
}

type auditRecord struct {
	Subject    string    `json:"subject"`
	ReceivedAt time.Time `json:"receivedAt"`
	Event      any       `json:"event"`
}

func (w *auditWriter) append(subject string, event any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec := auditRecord{Subject: subject, ReceivedAt: time.Now().UTC(), Event: event}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = w.file.Write(append(data, '\n'))
	return err
}

func run(natsURL, outPath string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	file, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := &auditWriter{file: file}

	nc, err := nats.Connect(natsURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	planSub, err := natsutil.Subscribe(nc, events.PlanCreatedSubject, func(_ context.Context, ev events.PlanCreated) {
		if err := writer.append(events.PlanCreatedSubject, ev); err != nil {
			logger.Error("append plan event", "err", err)
		}
	})
	if err != nil {
		return err
	}
	defer planSub.Unsubscribe()

	profileSub, err := natsutil.Subscribe(nc, events.ProfileLoggedSubject, func(_ context.Context, ev events.ProfileLogged) {
		if err := writer.append(events.ProfileLoggedSubject, ev); err != nil {
			logger.Error("append profile event", "err", err)
		}
	})
	if err != nil {
		return err
	}
	defer profileSub.Unsubscribe()

	logger.Info("audit consumer running", "out", outPath)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}
