package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aixcyberchallenge/data-form/internal/config"
	"github.com/aixcyberchallenge/data-form/internal/dataapi"
	"github.com/aixcyberchallenge/data-form/internal/logger"
	"github.com/aixcyberchallenge/data-form/internal/types"
)

//go:generate mockgen -destination ./mock/mock.go -package mock . DataAPI

// Remote endpoint the form talks to
type DataAPI interface {
	Save(ctx context.Context, submission types.Submission) (json.RawMessage, error)
	Fetch(ctx context.Context) (json.RawMessage, error)
}

// Everything a form needs, built once at startup
type App struct {
	API         DataAPI
	Logger      *slog.Logger
	Host        string
	Environment config.Environment
}

// New resolves the environment for `host` and wires a data API client against it.
// The environment's base URL is the only API location the form uses.
func New(cfg *config.Config, host string) *App {
	env := config.Resolve(cfg.Environments(), host)
	l := logger.Component("form").With("environment", env.Name)

	l.Info("resolved environment", "host", host, "api_url", env.APIURL, "timeout", env.Timeout)

	return &App{
		API:         dataapi.NewClient(env.APIURL, NewHTTPClient(env)),
		Logger:      l,
		Host:        host,
		Environment: env,
	}
}

// NewHTTPClient builds the traced client used for data API calls, bounded by the environment timeout
func NewHTTPClient(env config.Environment) *http.Client {
	return &http.Client{
		Timeout:   env.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// HostName picks the environment signal: an explicit override, then the configured host,
// then the machine's host name.
func HostName(cfg *config.Config, override string) string {
	if override != "" {
		return override
	}
	if cfg.Form.Host != "" {
		return cfg.Form.Host
	}

	host, err := os.Hostname()
	if err != nil {
		logger.Logger.Warn("could not read host name, assuming production", "error", err)
		return ""
	}
	return host
}
