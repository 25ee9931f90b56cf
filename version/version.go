package version

// Version is overridden at build time with -ldflags "-X spdxify/version.Version=...".
var Version = "dev"
