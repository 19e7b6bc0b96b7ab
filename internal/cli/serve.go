package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/streadway/amqp"

	"meetmatch/internal/app"
	"meetmatch/internal/config"
	"meetmatch/internal/database"
	"meetmatch/internal/repositories"
	"meetmatch/internal/services"
	applog "meetmatch/pkg/log"
	"meetmatch/pkg/rabbitmq"
)

// ServeOptions holds flags of the serve command.
type ServeOptions struct {
	Migrate         bool
	ConsumeActivity bool
	ShutdownTimeout time.Duration
}

// NewServeCommand creates the command that runs the HTTP API.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			return runServe(cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", true, "apply the schema before serving")
	cmd.Flags().BoolVar(&opts.ConsumeActivity, "consume-activity", false, "log activity events read back from RabbitMQ")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests")

	return cmd
}

func runServe(cfg *config.Config, opts *ServeOptions) error {
	logger := applog.WithComponent("server")

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if opts.Migrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}
	store := repositories.NewStore(db, database.TxOptions(cfg.DatabaseDriver))

	// --- Activity publishing (optional) ---
	var publisher services.ActivityPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient

		if opts.ConsumeActivity {
			if err := mqClient.ConsumeActivity(logActivity); err != nil {
				return err
			}
		}
	} else {
		logger.Info().Msg("RABBITMQ_URL not set, activity publishing disabled")
	}

	application := app.New(cfg, store, publisher, app.Options{})

	// Graceful shutdown handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.AppPort).Msg("Starting server")
		serveErr <- application.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server...")
	if err := application.ShutdownWithTimeout(opts.ShutdownTimeout); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
	}
	logger.Info().Msg("Server gracefully stopped")
	return nil
}

// logActivity writes consumed activity events to the log.
func logActivity(msg amqp.Delivery) error {
	activity, err := decodeActivity(msg)
	if err != nil {
		return err
	}
	logger := applog.WithComponent("activity")
	logger.Info().
		Str("type", activity.Type).
		Time("occurred_at", activity.OccurredAt).
		Interface("data", activity.Data).
		Msg("Activity received")
	return nil
}

func decodeActivity(msg amqp.Delivery) (services.Activity, error) {
	var activity services.Activity
	if err := json.Unmarshal(msg.Body, &activity); err != nil {
		return activity, fmt.Errorf("decode activity: %w", err)
	}
	if activity.Type == "" {
		activity.Type = msg.Type
	}
	return activity, nil
}
