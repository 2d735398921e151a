package main

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"fashion-shop/internal/discount"
	"fashion-shop/internal/model"

	"github.com/shopspring/decimal"
)

// Writes sample discount definition files in the import format: gzipped
// JSON lines, one model.DiscountCodeRequest per line. WELCOME10 appears in
// both files with different limits to show that the last file wins.
func main() {
	dataDir := flag.String("dir", "data/discount-codes", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 3, 0)
	ceiling := decimal.NewFromInt(100000)

	files := map[string][]model.DiscountCodeRequest{
		"campaign-autumn.jsonl.gz": {
			{Code: "AUTUMN50K", Type: model.DiscountTypeMoney, Discount: decimal.NewFromInt(50000), StartDate: start, EndDate: end, IsUsageLimit: true, UsageLimit: 200},
			{Code: "WELCOME10", Type: model.DiscountTypePercent, Discount: decimal.NewFromInt(10), MaximumDiscount: &ceiling, StartDate: start, EndDate: end, IsUsageLimit: true, UsageLimit: 500},
		},
		"campaign-members.jsonl.gz": {
			{Code: "WELCOME10", Type: model.DiscountTypePercent, Discount: decimal.NewFromInt(10), MaximumDiscount: &ceiling, StartDate: start, EndDate: end, IsUsageLimit: true, UsageLimit: 1000},
			{Code: "MEMBER15", Type: model.DiscountTypePercent, Discount: decimal.NewFromInt(15), StartDate: start, EndDate: end},
		},
	}

	for filename, defs := range files {
		filePath := filepath.Join(*dataDir, filename)

		if err := writeDefinitions(filePath, defs); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d codes\n", filePath, len(defs))
	}

	fmt.Println("\nSet DISCOUNT_IMPORT_FILES to a comma separated list of these files to import them at startup.")
}

func writeDefinitions(filePath string, defs []model.DiscountCodeRequest) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for i := range defs {
		if err := discount.ValidateDefinition(&defs[i]); err != nil {
			return fmt.Errorf("invalid definition %s: %w", defs[i].Code, err)
		}
		if err := enc.Encode(defs[i]); err != nil {
			return fmt.Errorf("failed to write definition: %w", err)
		}
	}

	return nil
}
