// Package favourites parses the user-maintained channel favourites file.
//
// The file is UTF-8 text with one Name=Number entry per line; # comments
// and blank lines are ignored and malformed lines are skipped without
// aborting the load. File order is preserved because it determines the
// order inputs appear in the automation hub's UI.
package favourites
