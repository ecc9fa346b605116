// Package gzheader normalizes gzip member headers for reproducible datasets.
// Compressors routinely embed the original file name and modification time
// in the header, which leaks acquisition dates and makes byte-identical
// re-exports impossible. Scrubbing zeroes MTIME and drops the FNAME field
// (and FHCRC, which would no longer match); FEXTRA and FCOMMENT are kept
// verbatim, as are the XFL and OS bytes. The compressed payload is streamed
// through untouched and the file is swapped atomically via a temp sibling.
package gzheader
