package domain

import "errors"

var (
	// ErrDatasetLoad reports that one of the input files could not be fetched
	// or is unusable as a whole. Initialization stops; nothing is built.
	ErrDatasetLoad = errors.New("dataset load failure")

	// ErrRegionNotFound reports a selection naming a region absent from the
	// relevant dataset (data and geometry disagree).
	ErrRegionNotFound = errors.New("region not found")

	// ErrMalformedRow reports a source row without a name or with a shape that
	// does not match the header. The row is skipped.
	ErrMalformedRow = errors.New("malformed row")

	// ErrInvalidRange reports a date range whose start is after its end, or
	// whose dates could not be parsed.
	ErrInvalidRange = errors.New("invalid range")

	// ErrNoRegionSelected reports a chart operation that needs a county or city
	// selection when none has been made yet.
	ErrNoRegionSelected = errors.New("no region selected")

	// ErrFireNotFound reports a fire identifier with no matching perimeter.
	ErrFireNotFound = errors.New("fire not found")
)
