// Package fileutil is the filesystem boundary of the search engine.
//
// DirectoryLister lists the immediate entries of one directory and stats
// single paths. OSLister implements it with the os package and reports
// symbolic links explicitly so callers can refuse to follow linked
// directories. ThrottledLister wraps any lister with a rate limit on
// directory listings.
//
// Listing failures are returned as plain errors; deciding whether they are
// fatal is left to the caller.
package fileutil
