// Package research provides the tools that reach beyond the local tables.
//
// Tools:
//   - web_search: DuckDuckGo search for definitions and unknown codes
//   - query_knowledge: retrieve procedure excerpts from ingested manuals
package research
