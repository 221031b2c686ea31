// Package shared holds helpers used by more than one BikePulse package.
//
// The testutil subpackage provides:
//
//	- BufferedSlogHandler and NewTestLogger, which capture slog records so
//	  tests can assert on what a component logged
//	- dataset fixtures (SampleHourlyCSV, SampleDailyCSV) and helpers that
//	  write them to disk or load them into a dataprocessing.Table
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    table := testutil.HourlyTable(t)
//	    svc := services.NewDashboardService(table, nil, logger)
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// Nothing here is imported by production code.
package shared
