package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autoledger/autoledger/internal/cli"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the pattern cache",
	}

	warm := &cobra.Command{
		Use:   "warm",
		Short: "Populate the cache from the store for one or more tenants",
		RunE:  runCacheWarm,
	}
	warm.Flags().StringSliceP("tenant", "t", nil, "tenant(s) to warm (required)")
	_ = warm.MarkFlagRequired("tenant")

	invalidate := &cobra.Command{
		Use:   "invalidate",
		Short: "Clear the memory and snapshot tiers for a tenant",
		RunE:  runCacheInvalidate,
	}
	invalidate.Flags().StringP("tenant", "t", "", "tenant to invalidate (required)")
	_ = invalidate.MarkFlagRequired("tenant")

	cmd.AddCommand(warm)
	cmd.AddCommand(invalidate)
	return cmd
}

func runCacheWarm(cmd *cobra.Command, _ []string) error {
	tenants, _ := cmd.Flags().GetStringSlice("tenant")

	ctx := cmd.Context()
	deps, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close() }()

	if err := deps.cache.Warm(ctx, tenants); err != nil {
		return fmt.Errorf("failed to warm cache: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Warmed pattern cache for %d tenant(s)", len(tenants))))
	return nil
}

func runCacheInvalidate(cmd *cobra.Command, _ []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")

	ctx := cmd.Context()
	deps, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close() }()

	if err := deps.cache.Invalidate(ctx, tenant); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Invalidated pattern cache for %s", tenant)))
	return nil
}
