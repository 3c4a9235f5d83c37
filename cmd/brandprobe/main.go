package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/darisadam/cardbrand/internal/cardnumber"
	"github.com/darisadam/cardbrand/internal/client"
	"github.com/darisadam/cardbrand/internal/domain/brand"
	"github.com/darisadam/cardbrand/internal/matcher"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/presenter"
	"github.com/darisadam/cardbrand/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// brandprobe reads card number prefixes from stdin, one per line, and prints
// which brand indicators a payment form would show for each. Lookups go to
// the remote service when CARDBRAND_CLIENT_KEY is set.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	supported := brand.All()
	if len(os.Args) > 1 {
		supported = brand.ParseList(strings.Split(os.Args[1], ","))
	}

	var opts []matcher.Option
	cfg := client.LoadConfigFromDotEnv()
	if cfg.ClientKey != "" {
		api, err := client.NewClient(cfg)
		if err != nil {
			logger.Fatal("Invalid client configuration", zap.Error(err))
		}
		sess := session.New(uuid.New().String(), "")
		apiWithSession := session.NewAPIClient(api, sess)
		defer apiWithSession.Close()

		opts = append(opts, matcher.WithRemote(client.NewBinLookupService(apiWithSession)))
		logger.Info("Remote lookups enabled", zap.String("base_url", cfg.DefaultBaseURL()))
	}

	renderer := presenter.RendererFunc(func(indicators []presenter.Indicator) {
		var shown []string
		for _, ind := range indicators {
			if ind.Visible {
				shown = append(shown, string(ind.Brand))
			}
		}
		fmt.Printf("  [%s]\n", strings.Join(shown, " "))
	})

	item := cardnumber.NewItem(supported, matcher.New(supported, opts...), renderer)
	ctx := context.Background()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fmt.Printf("> %s\n", scanner.Text())
		item.SetValue(ctx, scanner.Text())
		fmt.Printf("  %s\n", item.FormattedValue())
		if len(opts) > 0 {
			// Give the remote tier a moment so its refinement prints under this input.
			time.Sleep(300 * time.Millisecond)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Failed to read input", zap.Error(err))
	}
}
