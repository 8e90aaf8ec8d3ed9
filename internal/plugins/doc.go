// Package plugins holds the registry of bag plugins.
//
// A plugin receives the bag under construction, a staging directory, the
// node ID and JSON, and the caller's token, and returns the bag it modified.
// The bag.plugins setting lists which plugins run and in what order.
package plugins
