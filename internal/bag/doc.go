// Package bag creates, reads, and validates BagIt 1.0 directories.
//
// A bag is created empty, filled with AddFile, and sealed with Finalize,
// which writes the payload manifests, bag-info.txt (including Payload-Oxum
// and a human-readable Bag-Size), and the tag manifests. Open and Validate
// work on bags produced elsewhere as long as they follow the same layout.
// Serialize packs a finished bag into a tar or gzip-compressed tar archive.
package bag
