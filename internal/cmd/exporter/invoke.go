package exporter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal/config"
)

func newInvokeCommand() *cobra.Command {
	var configPath string
	var collections []string
	var limit int64

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Invokes an export. Collections are read from the source, flattened and preserved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("scribe.exporter.invoke")
			l.Info("starting exporter!")

			rid := uuid.Must(uuid.NewUUID())

			c, err := config.NewScribeFromFile(configPath)
			if err != nil {
				return err
			}

			if v := viper.GetString("source_uri"); v != "" {
				c.Exporter.Source.URI = v
			}
			if v := viper.GetString("source_database"); v != "" {
				c.Exporter.Source.Database = v
			}
			if v := viper.GetString("source_collections"); v != "" {
				c.Exporter.Source.Collections = strings.Split(v, ",")
			}
			if len(collections) > 0 {
				c.Exporter.Source.Collections = collections
			}
			if limit > 0 {
				c.Exporter.Source.Limit = limit
			}

			e, err := config.InitializeExporter(ctx, c, l)
			if err != nil {
				return err
			}
			defer e.Close(ctx)

			cat, err := e.Export(ctx, rid)
			if err != nil {
				return err
			}

			if cat.Failed > 0 {
				return fmt.Errorf("export completed with %d failed collections", cat.Failed)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")
	cmd.Flags().StringSliceVar(&collections, "collections", nil, "Collections to export. Defaults to every collection in the database")
	cmd.Flags().Int64Var(&limit, "limit", 0, "Max documents to export per collection. 0 exports everything")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SCRIBE")

	return cmd
}
