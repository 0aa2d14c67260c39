package main

import (
	"fmt"
	"io"
	"strconv"
)

const (
	BuildNumber = 110000
	BuildDate   = 20241115
	CurrentDate = "2024-11-15"
)

const base24Chars = "0123456789CDFHJKMNRUVWXY"

// DecimalToBase24 записывает число символами, которые трудно спутать друг с другом.
func DecimalToBase24(num int) string {
	if num <= 0 {
		return "C"
	}
	var out []byte
	for num > 0 {
		out = append([]byte{base24Chars[num%24]}, out...)
		num /= 24
	}
	return string(out)
}

func buildCode() string {
	major := BuildNumber / 100000
	return strconv.Itoa(major) + DecimalToBase24(BuildNumber-major*100000)
}

func versionString() string {
	s := fmt.Sprintf("%d.%d", BuildNumber/100000, BuildNumber/10000%10)
	if rev := BuildNumber / 1000 % 10; rev != 0 {
		s += "." + strconv.Itoa(rev)
	}
	return s
}

const usageHint = "repix: try 'repix -help' for more information\n"

const detailedHelp = `Usage: repix <input-file> [-o <output-file>] [-b <size>] [-x <scale>] [-p <levels>]
             [-a <act-file>] [-l] [-n <threshold>] [-u] [-s <sample-size>]
             [-w <width>] [-h <height>] [-m <margin>] [-k <colors>]
             [--palette-method <kmeans|dominantcolor|frequency>]

Options:
    -o  <output-file>        Specify the filename for repixilated image.
    -b  <size>               Specify the block size.
    -x  <scale>              Specify the scale factor for output image.
    -p  <levels>             Posterize (2 or more levels).
    -a  <act-file>           Map colors to an Adobe Color Table (.act).
    -l                       Add a black outline around opaque regions.
    -n  <threshold>          Merge colors closer than the threshold.
    -u                       Auto-adjust the block size to fit the image width.
    -s  <sample-size>        Side of the averaging window for each block.
    -w  <width>              Restore to the given width (overrides -b).
    -h  <height>             Restore to the given height (overrides -b).
    -m  <margin>             Add a transparent margin around the image.
    -k  <colors>             Derive a palette of that many colors when no -a is given.
    --palette-method <name>  kmeans (default, randomly seeded), dominantcolor
                             or frequency (deterministic).
    --show                   Show the source and the result in a window.
    --verbose                Log every stage.

Additional Commands:
  repix {-version | -help}
    -version                 Display the version information.
    -help                    Show this help message.
`

func printInfo(w io.Writer) {
	fmt.Fprintln(w, "Copyright (c) 2024 Insoft. All rights reserved.")
	fmt.Fprintf(w, "rePix version, %s (BUILD %s-%s)\n\n", versionString(), buildCode(), DecimalToBase24(BuildDate))
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Copyright (C) 2024 Insoft. All rights reserved.")
	fmt.Fprintf(w, "Insoft rePix version, %s (BUILD %s-%s)\n\n", versionString(), buildCode(), DecimalToBase24(BuildDate))
	fmt.Fprint(w, detailedHelp)
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, "Copyright (C) 2024 Insoft. All rights reserved.")
	fmt.Fprintf(w, "Insoft rePix version, %d.%d.%d (BUILD %s)\n", BuildNumber/100000, BuildNumber/10000%10, BuildNumber/1000%10, buildCode())
	fmt.Fprintf(w, "Built on: %s\n", CurrentDate)
	fmt.Fprint(w, "Licence: MIT License\n\n")
	fmt.Fprintln(w, "For more information, visit: http://www.insoft.uk")
}
