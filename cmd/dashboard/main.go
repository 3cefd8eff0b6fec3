// cmd/dashboard/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/balaguruva/admin-backend/internal/dashboard"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	baseURL := flag.String("api", envOr("DASHBOARD_API_URL", "http://localhost:5000"), "admin API base URL")
	token := flag.String("token", os.Getenv("DASHBOARD_TOKEN"), "bearer token for protected admin routes")
	retries := flag.Int("retries", dashboard.DefaultMaxRetries, "retries per resource")
	delay := flag.Duration("retry-delay", dashboard.DefaultRetryDelay, "fixed delay between retries")
	timeout := flag.Duration("timeout", time.Minute, "overall deadline")
	requestTimeout := flag.Duration("request-timeout", 15*time.Second, "deadline for a single request")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := dashboard.NewClient(*baseURL,
		dashboard.WithToken(*token),
		dashboard.WithRetry(*retries, *delay),
		dashboard.WithHTTPClient(&http.Client{Timeout: *requestTimeout}),
	)

	snap := client.Load(ctx)
	for resource, err := range snap.Errors {
		logrus.WithError(err).WithField("resource", resource).Error("Failed to load dashboard resource")
	}

	summary := dashboard.Summarize(snap.Data, time.Now())
	if err := dashboard.Render(os.Stdout, snap, summary); err != nil {
		logrus.WithError(err).Fatal("Failed to render dashboard")
	}

	if len(snap.Errors) == len(dashboard.Resources) {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
