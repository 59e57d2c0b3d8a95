// Package ops registers the console's local operations as tools: ICAO
// airport lookup and AFTN→AMHS address conversion.
//
// Tools:
//   - lookup_airport: resolve a 4-letter ICAO location indicator
//   - bridge_aftn_to_amhs: convert an 8-letter AFTN address to O/R form
package ops
