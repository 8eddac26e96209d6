package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"caradvisor/internal/model"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultImportBatch = 500

var importCmd = &cobra.Command{
	Use:   "import <listings.csv>",
	Short: "Load a CSV dataset of car listings into the listing store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		return importListings(cmd.Context(), args[0], batchSize)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Int("batch-size", defaultImportBatch, "rows per transaction")
}

func importListings(ctx context.Context, path string, batchSize int) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	if batchSize <= 0 {
		batchSize = defaultImportBatch
	}

	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	listings, skipped, err := decodeListings(f)
	if err != nil {
		return eris.Wrapf(err, "decode %s", path)
	}
	rt.logger.Info("decoded listings",
		zap.String("file", path),
		zap.Int("valid", len(listings)),
		zap.Int("skipped", skipped),
	)

	repo, err := rt.openStore(ctx)
	if err != nil {
		return eris.Wrap(err, "open listing store")
	}
	defer repo.Close()

	bar := progressbar.NewOptions(len(listings),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing listings...[reset]"),
	)

	imported := 0
	for start := 0; start < len(listings); start += batchSize {
		end := min(start+batchSize, len(listings))
		n, err := repo.UpsertListings(ctx, listings[start:end])
		if err != nil {
			return eris.Wrapf(err, "import rows %d-%d", start+1, end)
		}
		imported += n
		_ = bar.Add(end - start)
	}
	_ = bar.Finish()

	rt.logger.Info("import finished", zap.Int("imported", imported), zap.Int("skipped", skipped))
	return nil
}

// decodeListings reads every CSV row into a Listing. Rows that cannot serve
// as a recommendation are counted and dropped.
func decodeListings(r io.Reader) ([]model.Listing, int, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, 0, eris.Wrap(err, "read header")
	}

	var (
		listings []model.Listing
		skipped  int
	)
	for row := 2; ; row++ {
		var l model.Listing
		if err := dec.Decode(&l); err == io.EOF {
			break
		} else if err != nil {
			return nil, 0, eris.Wrapf(err, "line %d", row)
		}

		l.Category = strings.ToLower(strings.TrimSpace(l.Category))
		if l.BodyType != nil {
			body := strings.ToLower(strings.TrimSpace(*l.BodyType))
			l.BodyType = &body
		}
		if !validListing(&l) {
			skipped++
			continue
		}
		listings = append(listings, l)
	}
	return listings, skipped, nil
}

func validListing(l *model.Listing) bool {
	if l.ListingID <= 0 || strings.TrimSpace(l.Make) == "" || l.PriceSGD <= 0 {
		return false
	}
	if l.Category != string(model.ConditionNew) && l.Category != string(model.ConditionUsed) {
		return false
	}
	return l.MileageKM >= 0 && l.COELeftYears >= 0
}
