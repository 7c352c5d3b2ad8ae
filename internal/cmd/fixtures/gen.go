package fixtures

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newGenerateCommand() *cobra.Command {
	var records int
	var collection string
	var uri string
	var database string

	var cmd = &cobra.Command{
		Use:   "generate",
		Short: "Generates fixtures for testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch collection {
			case "customers", "orders", "products":
			default:
				return fmt.Errorf("unsupported collection: %s", collection)
			}

			client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
			if err != nil {
				log.Fatalf("Unable to connect to document store: %v\n", err)
			}
			defer client.Disconnect(context.Background())

			coll := client.Database(database).Collection(collection)

			batchSize := 1000
			docs := make([]interface{}, 0, batchSize)

			for i := 0; i < records; i++ {
				var doc bson.M
				switch collection {
				case "customers":
					doc = bson.M{
						"customer_id": gofakeit.UUID(),
						"name":        gofakeit.Name(),
						"email":       gofakeit.Email(),
						"address": bson.M{
							"street": gofakeit.Street(),
							"city":   gofakeit.City(),
							"state":  gofakeit.State(),
							"zip":    gofakeit.Zip(),
						},
					}
				case "orders":
					doc = bson.M{
						"order_id":    gofakeit.UUID(),
						"customer_id": gofakeit.UUID(),
						"approved":    gofakeit.Bool(),
						"created_at":  gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()),
						"payment": bson.M{
							"type":         gofakeit.RandomString([]string{"credit_card", "boleto", "voucher", "debit_card"}),
							"installments": gofakeit.IntRange(1, 12),
							"value":        gofakeit.Price(10, 1000),
						},
						"items": bson.A{
							bson.M{
								"product_id": gofakeit.UUID(),
								"seller_id":  gofakeit.UUID(),
								"price":      gofakeit.Price(5, 500),
							},
						},
					}
				case "products":
					doc = bson.M{
						"product_id":  gofakeit.UUID(),
						"category":    gofakeit.RandomString([]string{"electronics", "furniture", "toys", "beauty", "sports"}),
						"description": gofakeit.LoremIpsumSentence(8),
						"price":       gofakeit.Price(5, 2000),
						"weight_g":    gofakeit.IntRange(50, 30000),
						"dimensions": bson.M{
							"length_cm": gofakeit.IntRange(5, 100),
							"height_cm": gofakeit.IntRange(2, 80),
							"width_cm":  gofakeit.IntRange(2, 60),
						},
					}
				}
				docs = append(docs, doc)

				if len(docs) == batchSize {
					if _, err := coll.InsertMany(context.Background(), docs); err != nil {
						log.Fatalf("Failed to insert documents: %v\n", err)
					}
					docs = docs[:0]
				}
			}

			if len(docs) > 0 {
				if _, err := coll.InsertMany(context.Background(), docs); err != nil {
					log.Fatalf("Failed to insert documents: %v\n", err)
				}
			}

			fmt.Printf("Inserted %d documents into %s collection\n", records, collection)
			return nil
		},
	}

	cmd.Flags().IntVarP(&records, "records", "r", 10, "Number of documents to generate")
	cmd.Flags().StringVarP(&collection, "collection", "t", "customers", "Collection to insert documents into (customers, orders or products)")
	cmd.Flags().StringVarP(&uri, "uri", "u", "mongodb://localhost:27017", "Document store connection URI")
	cmd.Flags().StringVarP(&database, "database", "d", "brazilian-ecommerce", "Database to insert documents into")
	return cmd
}
