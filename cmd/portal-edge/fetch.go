package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/portal-edge/pkg/cache"
	"github.com/Sternrassler/portal-edge/pkg/client"
)

func newFetchCmd(opts *cliOptions) *cobra.Command {
	var (
		apiURL string
		token  string
		repeat int
	)

	cmd := &cobra.Command{
		Use:   "fetch <path>",
		Short: "GET an API path through the caching client",
		Long: `GET an API path through the caching client and print the JSON payload.

With --repeat the request is sent again; later attempts revalidate with
If-None-Match and are answered from the cache on 304 Not Modified.`,
		Example: `  portal-edge fetch /startups --token "$ACCESS_TOKEN"
  portal-edge fetch /organizations/membership --repeat 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL := apiURL
			if baseURL == "" && opts.cfg != nil {
				baseURL = opts.cfg.API.BaseURL
			}

			cfg := client.DefaultConfig(baseURL)
			if opts.cfg != nil {
				cfg.TTL = opts.cfg.API.CacheTTL
				cfg.Store = cache.NewMemoryStore(cache.WithCapacity(opts.cfg.API.CacheCapacity))
			}
			c := client.New(cfg)

			if repeat < 1 {
				repeat = 1
			}

			var payload json.RawMessage
			for i := 0; i < repeat; i++ {
				var err error
				payload, err = c.Do(cmd.Context(), client.Request{
					Path:         args[0],
					AccessToken:  token,
					ThrowOnError: true,
				})
				if err != nil {
					return fmt.Errorf("fetch %s: %w", args[0], err)
				}
			}

			if payload == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "null")
				return nil
			}
			out, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "API origin (default: API_URL)")
	cmd.Flags().StringVar(&token, "token", "", "Access token sent as a bearer token")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "Number of times to send the request")
	return cmd
}
