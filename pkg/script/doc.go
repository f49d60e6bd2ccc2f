// Package script reads knitting scripts into operations grouped by line.
//
// The format is a line-oriented superset of knitout:
//
//	;!knitout-2
//	;;Carriers: 1 2 3
//	x-start f0 3 f2 * f4      ; initial loop chain: needle [slack] needle ...
//	x-max-racking 2
//	first: xfer f0 b0, xfer b1 f1
//	f2 b2 , b3 f3             ; bare needle pairs are transfers
//	rack 1
//	in 3
//	knit + f1 3
//
// Every line holding operations becomes one [Line]. An optional "label:"
// prefix names it and commas join several operations into one line. Text
// after a ';' is a comment, except for the ";!" version line and ";;Name:"
// headers. "drop N" reads as "knit + N" and "amiss N" as "tuck + N", the same
// aliases knitout defines.
//
// Errors are [*SyntaxError] values carrying the 1-based line number. They
// match [ErrSyntax] with errors.Is and, for malformed needles, also
// knit.ErrBadNeedle.
package script
