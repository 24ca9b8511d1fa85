/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
)

var (
	IsDevelopment bool
	ServiceName   string
	ByPassAuth    bool
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", APIServer, "service name used for logging and tracing")
	flag.BoolVar(&ByPassAuth, "no_auth", false, "set to true to skip session validation, for local development only")
}

// ParseFlags reads the command line into the registered flags. Must be called
// from main before any flag value is acted on; everything runs on the
// registered defaults until then. Test binaries never call this, the testing
// framework owns their command line.
func ParseFlags() {
	flag.Parse()
}
