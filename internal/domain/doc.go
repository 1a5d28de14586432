// Package domain models USGS earthquake event data and the grid-based risk
// assessment derived from it.
//
// # Data Source
//
// Earthquake records originate from the USGS Earthquake Hazards Program
// fdsnws event feed, https://earthquake.usgs.gov/fdsnws/event/1/, queried as
// GeoJSON. The feed assigns each event a globally unique identifier (the
// usgs_id), a [longitude, latitude, depth] coordinate triple, an optional
// magnitude, a free-text "place" label, and a millisecond epoch timestamp.
//
// Feed conventions worth knowing:
//
//	Magnitude may be null for very recent or unreviewed events; such events
//	still carry coordinates and a timestamp and are stored with a nil
//	magnitude rather than dropped.
//
//	Depth is the third coordinate component in kilometers. Older records
//	sometimes omit it; ingestion defaults missing depth to 0.
//
//	The "place" label is relative prose ("10km SSW of Ridgecrest, CA") and
//	is treated as an opaque region name.
//
// # Risk Model
//
// Events from the trailing lookback window are bucketed into a fixed-size
// latitude/longitude grid by floor division ([CellFor]). Each cell with at
// least [MinCellEvents] events is scored in [0,1] as a weighted sum of four
// independently normalized factors ([ScoreCell]):
//
//	frequency  events per month, normalized against 10/month   weight 0.30
//	magnitude  mean magnitude mapped from [2,8] onto [0,1],
//	           boosted 1.5x when the cell's max is >= 6.0       weight 0.40
//	recency    fraction of events within the last 90 days       weight 0.20
//	depth      shallowness, (70 - mean depth km)/70             weight 0.10
//
// Cells scoring above [SignificanceThreshold] become [RiskZone] records
// centered on the cell midpoint. The zone set is a disposable snapshot:
// every assessment run replaces it wholesale.
//
// A separate point estimator ([EstimateProbability]) answers "how likely is
// an earthquake near this point" from raw historical frequency plus a boost
// for activity in the last 30 days. It is intentionally naive; none of this
// is seismology, only a coarse activity summary.
package domain
