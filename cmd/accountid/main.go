// Command accountid resolves the Instagram business account ID linked to a
// Facebook page, and can inspect the access token via /debug_token. It is a
// one-off setup helper: the resolved ID is what INSTAGRAM_ACCOUNT_ID should
// be set to for the service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/instapulse/internal/adapters/graph"
	"github.com/okian/instapulse/pkg/logger"
)

const resolveTimeout = 30 * time.Second

func main() {
	pageID := flag.String("page", "", "Facebook page ID linked to the Instagram account (required)")
	token := flag.String("token", os.Getenv("ACCESS_LONG_LIVED_TOKEN"), "long-lived access token (default: ACCESS_LONG_LIVED_TOKEN)")
	baseURL := flag.String("base-url", graph.DefaultBaseURL, "Graph API base URL")
	debug := flag.Bool("debug-token", false, "also inspect the token via /debug_token (needs APP_ID and APP_SECRET)")
	flag.Parse()

	if *pageID == "" || *token == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	client := graph.NewClient(*token, "", graph.WithBaseURL(*baseURL))

	accountID, err := client.BusinessAccountID(ctx, *pageID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to resolve account ID:", err)
		os.Exit(1)
	}
	fmt.Println("Instagram Account ID:", accountID)

	if *debug {
		appID := os.Getenv("APP_ID")
		appSecret := os.Getenv("APP_SECRET")
		if appID == "" || appSecret == "" {
			fmt.Fprintln(os.Stderr, "-debug-token requires APP_ID and APP_SECRET")
			os.Exit(2)
		}
		info, err := client.DebugToken(ctx, *token, appID, appSecret)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to inspect token:", err)
			os.Exit(1)
		}
		fmt.Printf("Token: app_id=%s valid=%t expires_at=%d scopes=%v\n",
			info.AppID, info.IsValid, info.ExpiresAt, info.Scopes)
	}
}
