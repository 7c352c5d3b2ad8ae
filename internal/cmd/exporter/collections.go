package exporter

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal/config"
	"github.com/turbolytics/scribe/internal/mongo"
)

func newCollectionsCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Lists the source database's collections and their document counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("scribe.exporter.collections")

			c, err := config.NewScribeFromFile(configPath)
			if err != nil {
				return err
			}

			source, err := mongo.NewSource(
				ctx,
				c.Exporter.Source.URI,
				c.Exporter.Source.Database,
				mongo.WithLogger(l),
			)
			if err != nil {
				return err
			}
			defer source.Close(ctx)

			collections, err := source.Collections(ctx)
			if err != nil {
				return err
			}

			for _, collection := range collections {
				count, err := source.Count(ctx, collection)
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%d\n", collection, count)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")

	return cmd
}
