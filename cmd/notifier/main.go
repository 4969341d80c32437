package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"alertaUtec/internal/config"
	"alertaUtec/internal/modules/notifications/application/handler"
	"alertaUtec/internal/modules/notifications/application/port"
	"alertaUtec/internal/modules/notifications/application/usecase"
	"alertaUtec/internal/modules/notifications/infrastructure"
	"alertaUtec/internal/platform/broker"
	"alertaUtec/internal/shared/logging"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.LoadNotifier()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, _, err := logging.Setup(cfg.Logging.Directory, logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	var mailer port.Mailer = infrastructure.LogMailer{}
	if cfg.Mail.SMTPAddr != "" {
		m, err := infrastructure.NewSMTPMailer(cfg.Mail.SMTPAddr, cfg.Mail.SMTPUsername, cfg.Mail.SMTPPassword)
		if err != nil {
			slog.Error("smtp mailer", slog.Any("error", err))
			logFile.Close()
			os.Exit(1)
		}
		mailer = m
	} else {
		slog.Warn("SMTP_ADDR not set, e-mails will only be logged")
	}

	notifyUC := usecase.NewNotifyIncidentUseCase(mailer, usecase.NotifyOptions{
		From:          cfg.Mail.FromEmail,
		SecurityEmail: cfg.Mail.SecurityEmail,
	})

	// Registrar handlers de tópicos
	registry := infrastructure.NewHandlerRegistry()
	registry.Register(handler.NewIncidentCreatedHandler(cfg.Kafka.IncidentsTopic, notifyUC))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("notifier starting", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID), slog.Any("topics", registry.Topics()))
	wg := broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-notifier", registry.Topics())

	<-ctx.Done()
	slog.Info("shutting down")
	wg.Wait()
}
