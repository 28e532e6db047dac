// The notifier consumes buy-in request events from Kafka and pushes operator
// notifications. The current sink is structured logs; a chat or push
// integration plugs in at notify().
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/homegame/chipledger/internal/domain"
	"github.com/homegame/chipledger/internal/infra"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("notifier failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.KafkaEnabled {
		return fmt.Errorf("notifier requires KAFKA_ENABLED=true")
	}

	topic := "chipledger." + string(domain.AggregateGame) + "." + string(domain.EventBuyInRequested)
	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, topic, "chipledger-notifier", true, logger)
	defer consumer.Close()
	logger.Info("notifier consuming", "topic", topic)

	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("notifier shutting down")
				return nil
			}
			logger.Error("read message", "error", err)
			continue
		}

		var envelope struct {
			Payload struct {
				GameID     string `json:"game_id"`
				UserID     string `json:"user_id"`
				PlayerName string `json:"player_name"`
				Amount     int64  `json:"amount"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			logger.Error("decode event", "error", err, "offset", msg.Offset)
			continue
		}

		notify(logger, envelope.Payload.GameID, envelope.Payload.PlayerName, envelope.Payload.Amount)
	}
}

func notify(logger *slog.Logger, gameID, playerName string, amount int64) {
	logger.Info("buy-in approval needed",
		"game_id", gameID, "player", playerName, "chips", amount)
}
