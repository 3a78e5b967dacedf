// Package files provides file system operations and discovery utilities
// for tripreport.
//
// Discovery: finds CSV files in a directory and narrows them to those
// matching the trip export naming convention.
//
// Manager: directory helpers plus Batch, which stages a set of output
// files and moves them into place together so an aborted run leaves the
// output directory untouched.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	trips, err := discovery.FindTripFiles("data/trips", `^\d{6}-divvy-tripdata\.csv$`)
//
//	batch, err := files.NewManager(logger).NewBatch("data/reports")
//	f, err := batch.Create("rides_by_hour.csv")
//	// ... write f ...
//	err = batch.Commit()
package files
