package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aixcyberchallenge/data-form/cmd/dataform/cmds"
	"github.com/aixcyberchallenge/data-form/internal/cmderrors"
	"github.com/aixcyberchallenge/data-form/internal/logger"
	"github.com/aixcyberchallenge/data-form/internal/otel"
)

// only exported when DATAFORM_LOGGING_USE_OTLP is set, the stdout exporters would mix with command output
func setupOTel(ctx context.Context) func() {
	if os.Getenv("DATAFORM_LOGGING_USE_OTLP") != "true" {
		return func() {}
	}

	shutdown, err := otel.SetupOTelSDK(ctx, "dataform", true)
	if err != nil {
		logger.Logger.Warn("failed to set up otel", "error", err)
		return func() {}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Logger.Warn("failed to shut down otel", "error", err)
		}
	}
}

func runApp(ctx context.Context) int {
	logger.InitSlog()

	shutdown := setupOTel(ctx)
	defer shutdown()

	ctx = otel.ExtractFromEnv(ctx)

	err := cmds.Execute(ctx)
	if err != nil {
		var ee cmderrors.ExitError
		if errors.As(err, &ee) {
			if ee.Code == cmderrors.CodeConfig {
				fmt.Fprintln(os.Stderr, "Error: "+err.Error())
			}
			return ee.Code
		}

		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		return cmderrors.Code(err)
	}

	return cmderrors.CodeOK
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	code := runApp(ctx)
	cancel()
	os.Exit(code)
}
