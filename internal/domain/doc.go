// Package domain models California home-value time series and wildfire
// perimeters, and derives the chart domains the dashboard draws from them.
//
// # Data Sources
//
// Home values come from Zillow Home Value Index (ZHVI) exports, one CSV per
// granularity. Each row is a region; each date-keyed column is a monthly
// sample taken on the last day of the month.
//
// County CSV:
//
//	RegionName,...,X2000.01.31,X2000.02.29,...
//	"Los Angeles County",...,213845.12,215004.88,...
//
// The R export prefixes date columns with "X" and uses dots as separators.
// County names carry a " County" suffix that the boundary GeoJSON does not,
// so it is stripped when the index is built.
//
// City CSV:
//
//	RegionID,SizeRank,RegionName,RegionType,StateName,State,Metro,CountyName,2000-01-31,...
//
// City names are taken verbatim.
//
// Missing values:
//
//	"NA" is the export's sentinel for a month with no estimate. Empty and
//	unparsable cells are treated the same way. A [MissingPolicy] decides
//	whether such samples are dropped (default) or recorded as zero.
//
// Fire perimeters:
//
//	CAL FIRE FRAP perimeters, pre-filtered to California fires since 2000
//	larger than 1000 acres. Properties used: IRWINID, FIRE_NAME, YEAR_,
//	ALARM_DATE, CONT_DATE, GIS_ACRES. The alarm and containment dates bound
//	a fire's active window (see [Fire.ActiveRange]).
//
// # Chart Domains
//
// A [ChartDomain] is derived, never stored: the x-domain of full mode spans
// the dataset's whole date range so switching regions never moves the
// horizontal axis; year and range modes clip the y-extent to the visible
// window. See [ComputeFullDomain], [ComputeYearDomain], [ComputeRangeDomain].
package domain
