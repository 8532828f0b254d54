package models

import "time"

// StockReport is the periodic stock snapshot archived to MongoDB.
type StockReport struct {
	Date             time.Time      `bson:"date" json:"date"`
	BusinessName     string         `bson:"business_name" json:"business_name"`
	TransactionCount int            `bson:"transaction_count" json:"transaction_count"`
	Items            []StockSummary `bson:"items" json:"items"`
	NegativeItems    []StockSummary `bson:"negative_items" json:"negative_items"`
	CreatedAt        time.Time      `bson:"created_at" json:"created_at"`
}
