package app

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	clierr "github.com/nvalverde/bridgescout/internal/errors"
	"github.com/nvalverde/bridgescout/internal/id"
	"github.com/nvalverde/bridgescout/internal/model"
	"github.com/nvalverde/bridgescout/internal/routes"
	"github.com/nvalverde/bridgescout/internal/schema"
	"github.com/nvalverde/bridgescout/internal/version"
)

// Cache TTLs per data class. Route pricing goes stale in seconds; token
// identities and the bridge directory are stable for hours.
const (
	ttlRoutes  = 30 * time.Second
	ttlQuote   = 30 * time.Second
	ttlToken   = time.Hour
	ttlRisk    = 10 * time.Minute
	ttlBridges = time.Hour
)

func (s *runtimeState) newRoutesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Compare and quote cross-chain transfer routes",
	}

	var compareReq routes.CompareRequest
	compare := &cobra.Command{
		Use:   "compare",
		Short: "Compare the top candidate routes with fees and risk verdicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := id.NormalizeAmount(compareReq.AmountBaseUnits, "", 0); err != nil {
				return err
			}
			path := trimRootPath(cmd.CommandPath())
			key := cacheKey(path, compareReq)
			return s.runCachedCommand(path, key, ttlRoutes, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				started := time.Now()
				comparison, err := s.aggregator.Compare(ctx, compareReq)
				status := []model.ProviderStatus{{
					Name:      "lifi",
					Status:    statusFromErr(err),
					LatencyMS: time.Since(started).Milliseconds(),
				}}
				if err != nil {
					return nil, status, nil, false, err
				}

				// A route with missing security data degrades the response to
				// partial instead of failing the whole comparison.
				warnings := []string{}
				partial := false
				for _, option := range comparison.Routes {
					if option.RiskError != "" {
						partial = true
						warnings = append(warnings, "risk data unavailable for bridge "+option.BridgeKey)
					}
				}
				return comparison, status, warnings, partial, nil
			})
		},
	}
	compare.Flags().StringVar(&compareReq.FromChain, "from-chain", "", "Source chain (alias or chain ID)")
	compare.Flags().StringVar(&compareReq.ToChain, "to-chain", "", "Destination chain (alias or chain ID)")
	compare.Flags().StringVar(&compareReq.FromToken, "from-token", "", "Source token symbol or address")
	compare.Flags().StringVar(&compareReq.ToToken, "to-token", "", "Destination token symbol or address")
	compare.Flags().StringVar(&compareReq.AmountBaseUnits, "amount", "", "Transfer amount in base units (wei-style)")
	_ = compare.MarkFlagRequired("from-token")
	_ = compare.MarkFlagRequired("to-token")
	_ = compare.MarkFlagRequired("amount")

	var quoteReq routes.CompareRequest
	quote := &cobra.Command{
		Use:   "quote",
		Short: "Fetch the single best route for a transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := id.NormalizeAmount(quoteReq.AmountBaseUnits, "", 0); err != nil {
				return err
			}
			path := trimRootPath(cmd.CommandPath())
			key := cacheKey(path, quoteReq)
			return s.runCachedCommand(path, key, ttlQuote, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				started := time.Now()
				result, err := s.aggregator.Quote(ctx, quoteReq)
				status := []model.ProviderStatus{{
					Name:      "lifi",
					Status:    statusFromErr(err),
					LatencyMS: time.Since(started).Milliseconds(),
				}}
				if err != nil {
					return nil, status, nil, false, err
				}
				return result, status, nil, false, nil
			})
		},
	}
	quote.Flags().StringVar(&quoteReq.FromChain, "from-chain", "", "Source chain (alias or chain ID)")
	quote.Flags().StringVar(&quoteReq.ToChain, "to-chain", "", "Destination chain (alias or chain ID)")
	quote.Flags().StringVar(&quoteReq.FromToken, "from-token", "", "Source token symbol or address")
	quote.Flags().StringVar(&quoteReq.ToToken, "to-token", "", "Destination token symbol or address")
	quote.Flags().StringVar(&quoteReq.AmountBaseUnits, "amount", "", "Transfer amount in base units (wei-style)")
	_ = quote.MarkFlagRequired("from-token")
	_ = quote.MarkFlagRequired("to-token")
	_ = quote.MarkFlagRequired("amount")

	cmd.AddCommand(compare)
	cmd.AddCommand(quote)
	return cmd
}

func (s *runtimeState) newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token identity operations",
	}

	var chain string
	resolve := &cobra.Command{
		Use:   "resolve <symbol-or-address>",
		Short: "Resolve a token symbol or address to its on-chain identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := trimRootPath(cmd.CommandPath())
			chainID := id.NormalizeChain(chain)
			key := cacheKey(path, map[string]string{"chain": chainID, "token": args[0]})
			return s.runCachedCommand(path, key, ttlToken, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				started := time.Now()
				resolved, err := s.tokens.Resolve(ctx, chainID, args[0])
				status := []model.ProviderStatus{{
					Name:      "lifi",
					Status:    statusFromErr(err),
					LatencyMS: time.Since(started).Milliseconds(),
				}}
				if err != nil {
					return nil, status, nil, false, err
				}
				warnings := []string{}
				if resolved.Source == "fallback" {
					warnings = append(warnings, "token resolved from the static fallback table; price data unavailable")
				}
				return resolved, status, warnings, false, nil
			})
		},
	}
	resolve.Flags().StringVar(&chain, "chain", "", "Chain (alias or chain ID, default ethereum)")
	cmd.AddCommand(resolve)
	return cmd
}

func (s *runtimeState) newRiskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Bridge protocol security assessment",
	}

	assess := &cobra.Command{
		Use:   "assess <bridge-key>",
		Short: "Score a bridge protocol from its TVL and incident history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := trimRootPath(cmd.CommandPath())
			key := cacheKey(path, strings.ToLower(strings.TrimSpace(args[0])))
			return s.runCachedCommand(path, key, ttlRisk, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				started := time.Now()
				report := s.riskEngine.Report(ctx, args[0])
				providerStatus := "ok"
				if report.Stats.Unavailable {
					providerStatus = "unavailable"
				}
				status := []model.ProviderStatus{{
					Name:      "defillama",
					Status:    providerStatus,
					LatencyMS: time.Since(started).Milliseconds(),
				}}
				if report.Stats.Unavailable {
					return nil, status, nil, false, clierr.New(clierr.CodeUnavailable, "security data unavailable for "+report.Stats.ProtocolSlug)
				}
				warnings := []string{}
				if report.Stats.TVLUSD == nil {
					warnings = append(warnings, "TVL unknown for "+report.Stats.ProtocolSlug+"; score penalized")
				}
				return report, status, warnings, false, nil
			})
		},
	}
	cmd.AddCommand(assess)
	return cmd
}

func (s *runtimeState) newBridgesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridges",
		Short: "Bridge tool directory operations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the bridges the route provider can use",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := trimRootPath(cmd.CommandPath())
			key := cacheKey(path, nil)
			return s.runCachedCommand(path, key, ttlBridges, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				started := time.Now()
				tools, err := s.lifi.Tools(ctx)
				status := []model.ProviderStatus{{
					Name:      "lifi",
					Status:    statusFromErr(err),
					LatencyMS: time.Since(started).Milliseconds(),
				}}
				if err != nil {
					return nil, status, nil, false, err
				}
				return tools, status, nil, false, nil
			})
		},
	}
	cmd.AddCommand(list)
	return cmd
}

func (s *runtimeState) newChainsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List known chain aliases and their canonical IDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := trimRootPath(cmd.CommandPath())
			aliases := id.KnownChains()
			chains := make([]model.ChainInfo, 0, len(aliases))
			for _, a := range aliases {
				chains = append(chains, model.ChainInfo{Alias: a.Alias, ChainID: a.ChainID})
			}
			s.resetCommandDiagnostics()
			return s.emitSuccess(path, chains, []string{}, cacheMetaBypass(), nil, false)
		},
	}
}

func (s *runtimeState) newProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured data providers and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := trimRootPath(cmd.CommandPath())
			info := []model.ProviderInfo{s.lifi.Info(), s.llama.Info()}
			s.resetCommandDiagnostics()
			return s.emitSuccess(path, info, []string{}, cacheMetaBypass(), nil, false)
		},
	}
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Describe commands and flags as machine-readable JSON",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := trimRootPath(cmd.CommandPath())
			built, err := schema.Build(s.root, strings.Join(args, " "))
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "build schema", err)
			}
			s.resetCommandDiagnostics()
			return s.emitSuccess(path, built, []string{}, cacheMetaBypass(), nil, false)
		},
	}
}

func (s *runtimeState) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := trimRootPath(cmd.CommandPath())
			data := map[string]string{
				"name":       version.CLIName,
				"version":    version.CLIVersion,
				"commit":     version.Commit,
				"build_date": version.BuildDate,
			}
			s.resetCommandDiagnostics()
			return s.emitSuccess(path, data, []string{}, cacheMetaBypass(), nil, false)
		},
	}
}
