// Package dataprocessing turns raw bike-share trip exports into summary
// tables. Each stage takes the full output of the previous one and returns
// a new slice; nothing is modified in place.
//
// # Stages
//
//  1. Loader: finds trip files by name and parses them against the trip schema
//  2. Cleaner: projects rows onto the report fields, drops duplicates, then
//     drops rows missing a required field
//  3. Enricher: parses timestamps and derives date, month, weekday, hour and
//     ride_length (minutes, half-up to 2 decimals)
//  4. FilterByDuration: keeps rides with 0 < ride_length < cap
//  5. Aggregator: builds the ride-length, weekday, month, hour, date and
//     top-station tables
//
// # Usage
//
//	raw, _, err := dataprocessing.NewLoader(logger, pattern).Load(ctx, dir)
//	trips, _ := dataprocessing.NewCleaner(logger).Clean(ctx, raw)
//	enriched, _ := dataprocessing.NewEnricher(logger, loc).Enrich(ctx, trips)
//	kept, _ := dataprocessing.FilterByDuration(enriched, 1440)
//	report, err := dataprocessing.NewAggregator(logger, cfg).Aggregate(ctx, kept)
//
// Loader failures are *errors.IngestError and are fatal. Malformed
// timestamps only drop the affected trip.
package dataprocessing
