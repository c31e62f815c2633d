package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tagexplorer/backend/internal/aiclient"
	"github.com/tagexplorer/backend/internal/db"
	"github.com/tagexplorer/backend/internal/queue"
	"github.com/tagexplorer/backend/internal/storage"
	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/leaselock"
	"github.com/tagexplorer/backend/pkg/logger"
	"github.com/tagexplorer/backend/pkg/logger/console"
	pgxstore "github.com/tagexplorer/backend/pkg/store/pgx"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		JSON:   util.GetEnvBool("LOG_JSON", false),
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	// s3
	blobs, err := storage.NewBlobsFromEnv(ctx)
	if err != nil {
		logger.Fatal("Could not create S3 client", "err", err)
	}

	// ai
	aiClient, err := aiclient.New(aiclient.ConfigFromEnv())
	if err != nil {
		logger.Fatal("Could not create AI client", "err", err)
	}

	// database
	databaseURL := util.GetEnv("DATABASE_URL")
	if err := db.Migrate(databaseURL, util.GetEnv("MIGRATIONS_PATH")); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}
	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pool.Close()

	st, err := pgxstore.NewDBStorageWithConnection(ctx, pool)
	if err != nil {
		logger.Fatal("Unable to create store", "err", err)
	}

	hostname, _ := os.Hostname()
	jobs := &queue.Jobs{
		Locks: leaselock.New(pool),
		Trash: st,
		Blobs: blobs,
		Tags:  st,
		Owner: hostname,
	}
	if aiClient != nil {
		jobs.Embedder = aiClient
	}

	// rabbitmq
	conn, err := queue.Init()
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// A single consumer channel with prefetch=1 delivers one message at a
	// time across all queues.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}
	messageChan := make(chan queuedMessage)

	for _, queueName := range queue.Queues {
		msgs, err := consumerCh.Consume(
			queueName,
			fmt.Sprintf("%s_consumer_%s", queueName, hostname),
			false, // autoAck
			false, // exclusive
			false, // noLocal
			false, // noWait
			nil,   // args
		)
		if err != nil {
			logger.Fatal("Failed to start consuming", "queue", queueName, "err", err)
		}

		go func(qName string, msgs <-chan amqp.Delivery) {
			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", qName)
						stop()
						return
					}
					select {
					case messageChan <- queuedMessage{msg: msg, queueName: qName}:
					case <-ctx.Done():
						_ = msg.Nack(false, true)
						return
					}
				}
			}
		}(queueName, msgs)
	}

	logger.Info("Listening for messages", "queues", queue.Queues)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case qm := <-messageChan:
			startTime := time.Now()
			logger.Info("Received message", "queue", qm.queueName)

			if aiClient != nil {
				aiClient.ResetMetrics()
			}

			if err := jobs.Process(ctx, qm.queueName, qm.msg.Body); err != nil {
				logger.Error("Error processing message", "queue", qm.queueName, "err", err)
				queue.HandleProcessingError(consumerCh, qm.msg, qm.queueName)
			} else {
				if err := qm.msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
				logger.Info("Message processed successfully", "queue", qm.queueName)
			}

			if aiClient != nil {
				metrics := aiClient.GetMetrics()
				logger.Debug(
					"AI Metrics",
					"input_tokens", metrics.InputTokens,
					"total_tokens", metrics.TotalTokens,
					"duration_ms", metrics.DurationMs,
				)
			}
			logger.Info("Processing time", "duration", time.Since(startTime).Round(time.Millisecond).String())
		}
	}
}
