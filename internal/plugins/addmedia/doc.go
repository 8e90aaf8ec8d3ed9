// Package addmedia implements the AddMedia bag plugin.
//
// For a node it reads the Islandora media list, keeps records whose media use
// terms pass the configured allowlist, resolves each record's file URL
// (directly from the source field or through the file entity), streams the
// file into the staging directory, and adds it to the bag under
// media_file_directories + filename. Only the first media use term of a
// record downloads; later terms are logged and skipped. When
// include_media_use_list is set, every eligible term also contributes a
// "filename<TAB>external URI" line to media_use_summary.tsv at the bag root.
//
// Fetch, decode, and staging failures abort the run. Missing source fields
// and duplicate terms are informational.
package addmedia
