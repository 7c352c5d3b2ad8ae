package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal/loader"
)

func newLoadCommand() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "load [files...]",
		Short: "Loads CSV files into the document store, one collection per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("scribe.loader")
			l.Info("starting loader!",
				zap.String("database", viper.GetString("database")),
				zap.Int("files", len(args)),
			)

			ld, err := loader.New(ctx,
				viper.GetString("uri"),
				viper.GetString("database"),
				loader.WithLogger(l),
				loader.WithBatchSize(batchSize),
			)
			if err != nil {
				return err
			}
			defer ld.Close(ctx)

			succeeded := 0
			for _, file := range args {
				collection := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

				result, err := ld.Load(ctx, file, collection)
				if err != nil {
					l.Error("failed to load file",
						zap.String("file", file),
						zap.String("collection", collection),
						zap.Error(err),
					)
					continue
				}

				succeeded++
				fmt.Printf("Inserted %d documents into %s\n", result.Documents, result.Collection)
			}

			fmt.Printf("Load completed: %d/%d files imported successfully\n", succeeded, len(args))
			if succeeded != len(args) {
				return fmt.Errorf("failed to load %d files", len(args)-succeeded)
			}
			return nil
		},
	}

	cmd.Flags().StringP("uri", "u", "mongodb://localhost:27017", "Document store connection URI")
	cmd.Flags().StringP("database", "d", "brazilian-ecommerce", "Database to load into")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 1000, "Documents per insert batch")
	viper.BindPFlag("uri", cmd.Flags().Lookup("uri"))
	viper.BindPFlag("database", cmd.Flags().Lookup("database"))
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SCRIBE")

	return cmd
}
