package common

// PackageName is used as the metrics namespace and the default log service tag.
const PackageName = "keepldr"

// Version is set at build time via -ldflags.
var Version = "dev"
