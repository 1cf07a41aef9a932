package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"classattend/internal/config"
	"classattend/internal/logging"
	"classattend/internal/queue"
	"classattend/internal/store"
)

// markedEvent mirrors the payload published by the API on a successful mark.
type markedEvent struct {
	RecordID  string `json:"record_id"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Day       string `json:"day"`
}

// Worker consumes marked-attendance events and keeps per-course daily
// tallies in Redis for dashboards.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.Env)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "classattend:marked")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}

	log.Info("worker started, waiting for messages")
	for msg := range messages {
		if msg.Type != "attendance.marked" {
			continue
		}

		var evt markedEvent
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Warn("malformed event", zap.Error(err))
			continue
		}

		key := "classattend:tally:" + evt.CourseID + ":" + evt.Day
		if err := redisClient.Client.Incr(ctx, key).Err(); err != nil {
			log.Warn("tally incr failed", zap.String("key", key), zap.Error(err))
			continue
		}
		// Tallies only matter for the day itself plus a grace period.
		_ = redisClient.Client.Expire(ctx, key, 48*time.Hour).Err()

		log.Info("tally updated",
			zap.String("course_id", evt.CourseID),
			zap.String("day", evt.Day),
			zap.String("record_id", evt.RecordID))
	}

	log.Info("worker stopped")
}
